package store

import (
	"context"
	"time"
)

// Comment row.
type Comment struct {
	ID        string
	FindingID string
	Author    string
	Body      string
	Published bool
	CreatedAt int64
	UpdatedAt int64
}

// InsertComment adds a comment to a finding.
func (s *Store) InsertComment(ctx context.Context, c *Comment) error {
	now := time.Now().Unix()
	if c.CreatedAt == 0 {
		c.CreatedAt = now
	}
	if c.UpdatedAt == 0 {
		c.UpdatedAt = now
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO comments (id, finding_id, author, body, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FindingID, c.Author, c.Body, c.Published, c.CreatedAt, c.UpdatedAt)
	return err
}

// GetComment retrieves a comment by ID.
func (s *Store) GetComment(ctx context.Context, id string) (*Comment, error) {
	var c Comment
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, finding_id, author, body, is_published, created_at, updated_at
		FROM comments WHERE id = ?`, id).
		Scan(&c.ID, &c.FindingID, &c.Author, &c.Body, &c.Published, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &c, nil
}

// ListComments returns a finding's comments oldest first. publishedOnly
// restricts to published ones.
func (s *Store) ListComments(ctx context.Context, findingID string, publishedOnly bool) ([]*Comment, error) {
	q := `SELECT id, finding_id, author, body, is_published, created_at, updated_at
		FROM comments WHERE finding_id = ?`
	if publishedOnly {
		q += ` AND is_published = 1`
	}
	q += ` ORDER BY created_at`

	rows, err := s.DB.QueryContext(ctx, q, findingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.FindingID, &c.Author, &c.Body,
			&c.Published, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// UpdateComment updates the body and published flag.
func (s *Store) UpdateComment(ctx context.Context, c *Comment) error {
	c.UpdatedAt = time.Now().Unix()
	res, err := s.DB.ExecContext(ctx,
		`UPDATE comments SET body = ?, is_published = ?, updated_at = ? WHERE id = ?`,
		c.Body, c.Published, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
