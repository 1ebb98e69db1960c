package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/opengrants/distiller/dbopen"
)

// Finding row, with the agencies it affects.
type Finding struct {
	ID             string
	Name           string
	Number         string
	Type           string
	Condition      string
	Cause          string
	Criteria       string
	Effect         string
	Recommendation string
	Status         string
	GranteeID      string
	AgencyIDs      []string
	CreatedAt      int64
	UpdatedAt      int64
}

const findingColumns = `id, name, number, finding_type, condition, cause,
	criteria, effect, recommendation, status, grantee_id, created_at, updated_at`

// statusOrder lists new first and resolved last.
const statusOrder = `CASE status
	WHEN 'new' THEN 0
	WHEN 'in_progress' THEN 1
	ELSE 2 END`

// InsertFinding adds a finding and its affected-agency links in one
// transaction; a failed link write leaves no finding row behind.
func (s *Store) InsertFinding(ctx context.Context, f *Finding) error {
	now := time.Now().Unix()
	if f.CreatedAt == 0 {
		f.CreatedAt = now
	}
	if f.UpdatedAt == 0 {
		f.UpdatedAt = now
	}
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO findings (`+findingColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.Name, f.Number, f.Type, f.Condition, f.Cause,
			f.Criteria, f.Effect, f.Recommendation, f.Status,
			nullable(f.GranteeID), f.CreatedAt, f.UpdatedAt); err != nil {
			return err
		}
		return replaceFindingAgencies(ctx, tx, f.ID, f.AgencyIDs)
	})
}

// GetFinding retrieves a finding with its agency links.
func (s *Store) GetFinding(ctx context.Context, id string) (*Finding, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+findingColumns+` FROM findings WHERE id = ?`, id)
	f, err := scanFinding(row)
	if err != nil {
		return nil, mapNoRows(err)
	}
	f.AgencyIDs, err = s.linkedIDs(ctx,
		`SELECT agency_id FROM finding_agencies WHERE finding_id = ? ORDER BY agency_id`, id)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ListFindings returns all findings, new first and resolved last, newest
// first within each status.
func (s *Store) ListFindings(ctx context.Context) ([]*Finding, error) {
	return s.queryFindings(ctx,
		`SELECT `+findingColumns+` FROM findings
		ORDER BY `+statusOrder+`, created_at DESC`)
}

// ListNewFindings returns only findings still in the new status.
func (s *Store) ListNewFindings(ctx context.Context) ([]*Finding, error) {
	return s.queryFindings(ctx,
		`SELECT `+findingColumns+` FROM findings
		WHERE status = 'new' ORDER BY created_at DESC`)
}

// ListFindingsByGrantee returns a grantee's findings.
func (s *Store) ListFindingsByGrantee(ctx context.Context, granteeID string) ([]*Finding, error) {
	return s.queryFindings(ctx,
		`SELECT `+findingColumns+` FROM findings
		WHERE grantee_id = ? ORDER BY `+statusOrder+`, created_at DESC`, granteeID)
}

// UpdateFinding updates all mutable fields and replaces the agency links
// in one transaction, so a failed replacement rolls the field update back.
func (s *Store) UpdateFinding(ctx context.Context, f *Finding) error {
	f.UpdatedAt = time.Now().Unix()
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE findings SET name=?, number=?, finding_type=?, condition=?,
			cause=?, criteria=?, effect=?, recommendation=?, status=?,
			grantee_id=?, updated_at=?
			WHERE id=?`,
			f.Name, f.Number, f.Type, f.Condition,
			f.Cause, f.Criteria, f.Effect, f.Recommendation, f.Status,
			nullable(f.GranteeID), f.UpdatedAt, f.ID)
		if err != nil {
			return err
		}
		if err := requireRow(res); err != nil {
			return err
		}
		return replaceFindingAgencies(ctx, tx, f.ID, f.AgencyIDs)
	})
}

// DeleteFinding removes a finding; comments and links cascade.
func (s *Store) DeleteFinding(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM findings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) queryFindings(ctx context.Context, query string, args ...any) ([]*Finding, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Finding
	for rows.Next() {
		f, err := scanFinding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func replaceFindingAgencies(ctx context.Context, tx execer, findingID string, agencyIDs []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM finding_agencies WHERE finding_id = ?`, findingID); err != nil {
		return err
	}
	for _, aid := range agencyIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO finding_agencies (finding_id, agency_id) VALUES (?, ?)`,
			findingID, aid); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFinding(r rowScanner) (*Finding, error) {
	var f Finding
	var grantee sql.NullString
	err := r.Scan(&f.ID, &f.Name, &f.Number, &f.Type, &f.Condition, &f.Cause,
		&f.Criteria, &f.Effect, &f.Recommendation, &f.Status,
		&grantee, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.GranteeID = grantee.String
	return &f, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
