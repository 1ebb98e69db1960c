package store

import (
	"context"
	"time"
)

// Grantee row.
type Grantee struct {
	ID        string
	Name      string
	CreatedAt int64
}

// InsertGrantee adds a grantee.
func (s *Store) InsertGrantee(ctx context.Context, g *Grantee) error {
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO grantees (id, name, created_at) VALUES (?, ?, ?)`,
		g.ID, g.Name, g.CreatedAt)
	return err
}

// GetGrantee retrieves a grantee by ID.
func (s *Store) GetGrantee(ctx context.Context, id string) (*Grantee, error) {
	var g Grantee
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM grantees WHERE id = ?`, id).
		Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &g, nil
}

// ListGrantees returns all grantees ordered by name.
func (s *Store) ListGrantees(ctx context.Context) ([]*Grantee, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, created_at FROM grantees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Grantee
	for rows.Next() {
		var g Grantee
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

// UpdateGrantee updates a grantee's name.
func (s *Store) UpdateGrantee(ctx context.Context, g *Grantee) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE grantees SET name = ? WHERE id = ?`, g.Name, g.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteGrantee removes a grantee; findings and link rows cascade.
func (s *Store) DeleteGrantee(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM grantees WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
