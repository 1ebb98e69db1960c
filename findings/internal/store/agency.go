package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/opengrants/distiller/dbopen"
)

// Agency row, with its linked grantee IDs.
type Agency struct {
	ID         string
	Name       string
	GranteeIDs []string
	CreatedAt  int64
}

// InsertAgency adds an agency and its grantee links in one transaction; a
// failed link write leaves no agency row behind.
func (s *Store) InsertAgency(ctx context.Context, a *Agency) error {
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO agencies (id, name, created_at) VALUES (?, ?, ?)`,
			a.ID, a.Name, a.CreatedAt); err != nil {
			return err
		}
		return replaceAgencyGrantees(ctx, tx, a.ID, a.GranteeIDs)
	})
}

// GetAgency retrieves an agency with its grantee links.
func (s *Store) GetAgency(ctx context.Context, id string) (*Agency, error) {
	var a Agency
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM agencies WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	a.GranteeIDs, err = s.linkedIDs(ctx,
		`SELECT grantee_id FROM agency_grantees WHERE agency_id = ? ORDER BY grantee_id`, id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAgencies returns all agencies ordered by name, grantee links
// included so list rows carry the same shape Get returns.
func (s *Store) ListAgencies(ctx context.Context) ([]*Agency, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, created_at FROM agencies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Agency
	byID := map[string]*Agency{}
	for rows.Next() {
		var a Agency
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
		byID[a.ID] = &a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := s.DB.QueryContext(ctx,
		`SELECT agency_id, grantee_id FROM agency_grantees ORDER BY grantee_id`)
	if err != nil {
		return nil, err
	}
	defer links.Close()
	for links.Next() {
		var aid, gid string
		if err := links.Scan(&aid, &gid); err != nil {
			return nil, err
		}
		if a := byID[aid]; a != nil {
			a.GranteeIDs = append(a.GranteeIDs, gid)
		}
	}
	return out, links.Err()
}

// UpdateAgency updates the name and replaces the grantee links in one
// transaction, so a failed replacement rolls the rename back too.
func (s *Store) UpdateAgency(ctx context.Context, a *Agency) error {
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE agencies SET name = ? WHERE id = ?`, a.Name, a.ID)
		if err != nil {
			return err
		}
		if err := requireRow(res); err != nil {
			return err
		}
		return replaceAgencyGrantees(ctx, tx, a.ID, a.GranteeIDs)
	})
}

// DeleteAgency removes an agency; link rows cascade.
func (s *Store) DeleteAgency(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM agencies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func replaceAgencyGrantees(ctx context.Context, tx execer, agencyID string, granteeIDs []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM agency_grantees WHERE agency_id = ?`, agencyID); err != nil {
		return err
	}
	for _, gid := range granteeIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO agency_grantees (agency_id, grantee_id) VALUES (?, ?)`,
			agencyID, gid); err != nil {
			return err
		}
	}
	return nil
}

// linkedIDs runs a single-column query and collects the values.
func (s *Store) linkedIDs(ctx context.Context, query string, arg any) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
