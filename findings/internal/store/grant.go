package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/opengrants/distiller/dbopen"
)

// Grant row, with its recipient grantee IDs.
type Grant struct {
	ID           string
	Name         string
	CFDA         int
	RecipientIDs []string
	CreatedAt    int64
}

// InsertGrant adds a grant and its recipient links in one transaction; a
// failed link write leaves no grant row behind.
func (s *Store) InsertGrant(ctx context.Context, g *Grant) error {
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO grants (id, name, cfda, created_at) VALUES (?, ?, ?, ?)`,
			g.ID, g.Name, g.CFDA, g.CreatedAt); err != nil {
			return err
		}
		return replaceGrantRecipients(ctx, tx, g.ID, g.RecipientIDs)
	})
}

// GetGrant retrieves a grant with its recipients.
func (s *Store) GetGrant(ctx context.Context, id string) (*Grant, error) {
	var g Grant
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, cfda, created_at FROM grants WHERE id = ?`, id).
		Scan(&g.ID, &g.Name, &g.CFDA, &g.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	g.RecipientIDs, err = s.linkedIDs(ctx,
		`SELECT grantee_id FROM grant_recipients WHERE grant_id = ? ORDER BY grantee_id`, id)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGrants returns all grants ordered by CFDA number, recipient links
// included so list rows carry the same shape Get returns.
func (s *Store) ListGrants(ctx context.Context) ([]*Grant, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, cfda, created_at FROM grants ORDER BY cfda`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Grant
	byID := map[string]*Grant{}
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.ID, &g.Name, &g.CFDA, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &g)
		byID[g.ID] = &g
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := s.DB.QueryContext(ctx,
		`SELECT grant_id, grantee_id FROM grant_recipients ORDER BY grantee_id`)
	if err != nil {
		return nil, err
	}
	defer links.Close()
	for links.Next() {
		var gid, rid string
		if err := links.Scan(&gid, &rid); err != nil {
			return nil, err
		}
		if g := byID[gid]; g != nil {
			g.RecipientIDs = append(g.RecipientIDs, rid)
		}
	}
	return out, links.Err()
}

// UpdateGrant updates mutable fields and replaces the recipient links in
// one transaction.
func (s *Store) UpdateGrant(ctx context.Context, g *Grant) error {
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE grants SET name = ?, cfda = ? WHERE id = ?`, g.Name, g.CFDA, g.ID)
		if err != nil {
			return err
		}
		if err := requireRow(res); err != nil {
			return err
		}
		return replaceGrantRecipients(ctx, tx, g.ID, g.RecipientIDs)
	})
}

// DeleteGrant removes a grant; link rows cascade.
func (s *Store) DeleteGrant(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM grants WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func replaceGrantRecipients(ctx context.Context, tx execer, grantID string, granteeIDs []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM grant_recipients WHERE grant_id = ?`, grantID); err != nil {
		return err
	}
	for _, gid := range granteeIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO grant_recipients (grant_id, grantee_id) VALUES (?, ?)`,
			grantID, gid); err != nil {
			return err
		}
	}
	return nil
}
