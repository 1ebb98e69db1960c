package findings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/opengrants/distiller/findings/internal/store"
)

// Schema is the SQL applied to the findings database at open.
const Schema = store.Schema

// Service is the findings-review CRUD layer: validation, ID assignment,
// and persistence.
type Service struct {
	store *store.Store
}

// NewService creates a Service over an open findings database.
func NewService(db *sql.DB) *Service {
	return &Service{store: store.NewStore(db)}
}

func wrapStore(err error) error {
	if errors.Is(err, store.ErrNoRow) {
		return ErrNotFound
	}
	return err
}

// --- Grantees ---

// CreateGrantee validates and persists a grantee, assigning its ID.
func (s *Service) CreateGrantee(ctx context.Context, g *Grantee) error {
	if err := validateName(g.Name); err != nil {
		return err
	}
	g.ID = uuid.NewString()
	row := store.Grantee{ID: g.ID, Name: g.Name}
	if err := s.store.InsertGrantee(ctx, &row); err != nil {
		return err
	}
	g.CreatedAt = row.CreatedAt
	return nil
}

// GetGrantee retrieves a grantee.
func (s *Service) GetGrantee(ctx context.Context, id string) (*Grantee, error) {
	row, err := s.store.GetGrantee(ctx, id)
	if err != nil {
		return nil, wrapStore(err)
	}
	return &Grantee{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}, nil
}

// ListGrantees returns all grantees ordered by name.
func (s *Service) ListGrantees(ctx context.Context) ([]*Grantee, error) {
	rows, err := s.store.ListGrantees(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Grantee, 0, len(rows))
	for _, r := range rows {
		out = append(out, &Grantee{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

// UpdateGrantee renames a grantee.
func (s *Service) UpdateGrantee(ctx context.Context, g *Grantee) error {
	if err := validateName(g.Name); err != nil {
		return err
	}
	return wrapStore(s.store.UpdateGrantee(ctx, &store.Grantee{ID: g.ID, Name: g.Name}))
}

// DeleteGrantee removes a grantee and, by cascade, its findings.
func (s *Service) DeleteGrantee(ctx context.Context, id string) error {
	return wrapStore(s.store.DeleteGrantee(ctx, id))
}

// --- Agencies ---

// CreateAgency validates and persists an agency with its grantee links.
func (s *Service) CreateAgency(ctx context.Context, a *Agency) error {
	if err := validateName(a.Name); err != nil {
		return err
	}
	a.ID = uuid.NewString()
	row := store.Agency{ID: a.ID, Name: a.Name, GranteeIDs: a.GranteeIDs}
	if err := s.store.InsertAgency(ctx, &row); err != nil {
		return err
	}
	a.CreatedAt = row.CreatedAt
	return nil
}

// GetAgency retrieves an agency with its grantee links.
func (s *Service) GetAgency(ctx context.Context, id string) (*Agency, error) {
	row, err := s.store.GetAgency(ctx, id)
	if err != nil {
		return nil, wrapStore(err)
	}
	return &Agency{ID: row.ID, Name: row.Name, GranteeIDs: row.GranteeIDs, CreatedAt: row.CreatedAt}, nil
}

// ListAgencies returns all agencies ordered by name, with grantee links.
func (s *Service) ListAgencies(ctx context.Context) ([]*Agency, error) {
	rows, err := s.store.ListAgencies(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Agency, 0, len(rows))
	for _, r := range rows {
		out = append(out, &Agency{ID: r.ID, Name: r.Name,
			GranteeIDs: r.GranteeIDs, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

// UpdateAgency renames an agency and replaces its grantee links.
func (s *Service) UpdateAgency(ctx context.Context, a *Agency) error {
	if err := validateName(a.Name); err != nil {
		return err
	}
	return wrapStore(s.store.UpdateAgency(ctx, &store.Agency{
		ID: a.ID, Name: a.Name, GranteeIDs: a.GranteeIDs,
	}))
}

// DeleteAgency removes an agency.
func (s *Service) DeleteAgency(ctx context.Context, id string) error {
	return wrapStore(s.store.DeleteAgency(ctx, id))
}

// --- Grants ---

// CreateGrant validates the CFDA number and persists a grant.
func (s *Service) CreateGrant(ctx context.Context, g *Grant) error {
	if err := validateName(g.Name); err != nil {
		return err
	}
	if err := validateCFDA(g.CFDA); err != nil {
		return err
	}
	g.ID = uuid.NewString()
	row := store.Grant{ID: g.ID, Name: g.Name, CFDA: g.CFDA, RecipientIDs: g.RecipientIDs}
	if err := s.store.InsertGrant(ctx, &row); err != nil {
		return err
	}
	g.CreatedAt = row.CreatedAt
	return nil
}

// GetGrant retrieves a grant with its recipients.
func (s *Service) GetGrant(ctx context.Context, id string) (*Grant, error) {
	row, err := s.store.GetGrant(ctx, id)
	if err != nil {
		return nil, wrapStore(err)
	}
	return &Grant{ID: row.ID, Name: row.Name, CFDA: row.CFDA,
		RecipientIDs: row.RecipientIDs, CreatedAt: row.CreatedAt}, nil
}

// ListGrants returns all grants ordered by CFDA number, with recipients.
func (s *Service) ListGrants(ctx context.Context) ([]*Grant, error) {
	rows, err := s.store.ListGrants(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Grant, 0, len(rows))
	for _, r := range rows {
		out = append(out, &Grant{ID: r.ID, Name: r.Name, CFDA: r.CFDA,
			RecipientIDs: r.RecipientIDs, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

// UpdateGrant updates a grant and replaces its recipients.
func (s *Service) UpdateGrant(ctx context.Context, g *Grant) error {
	if err := validateName(g.Name); err != nil {
		return err
	}
	if err := validateCFDA(g.CFDA); err != nil {
		return err
	}
	return wrapStore(s.store.UpdateGrant(ctx, &store.Grant{
		ID: g.ID, Name: g.Name, CFDA: g.CFDA, RecipientIDs: g.RecipientIDs,
	}))
}

// DeleteGrant removes a grant.
func (s *Service) DeleteGrant(ctx context.Context, id string) error {
	return wrapStore(s.store.DeleteGrant(ctx, id))
}

// --- Findings ---

// CreateFinding validates, applies defaults (status new, type material
// weakness), and persists a finding.
func (s *Service) CreateFinding(ctx context.Context, f *Finding) error {
	if err := validateFinding(f); err != nil {
		return err
	}
	if f.GranteeID != "" {
		if _, err := s.GetGrantee(ctx, f.GranteeID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: grantee %s does not exist", ErrInvalidInput, f.GranteeID)
			}
			return err
		}
	}
	f.ID = uuid.NewString()
	row := findingToRow(f)
	if err := s.store.InsertFinding(ctx, row); err != nil {
		return err
	}
	f.CreatedAt = row.CreatedAt
	f.UpdatedAt = row.UpdatedAt
	return nil
}

// GetFinding retrieves a finding with its agency links.
func (s *Service) GetFinding(ctx context.Context, id string) (*Finding, error) {
	row, err := s.store.GetFinding(ctx, id)
	if err != nil {
		return nil, wrapStore(err)
	}
	return findingFromRow(row), nil
}

// ListFindings returns all findings, unresolved first.
func (s *Service) ListFindings(ctx context.Context) ([]*Finding, error) {
	rows, err := s.store.ListFindings(ctx)
	if err != nil {
		return nil, err
	}
	return findingsFromRows(rows), nil
}

// ListNewFindings returns findings still awaiting triage.
func (s *Service) ListNewFindings(ctx context.Context) ([]*Finding, error) {
	rows, err := s.store.ListNewFindings(ctx)
	if err != nil {
		return nil, err
	}
	return findingsFromRows(rows), nil
}

// ListFindingsByGrantee returns one grantee's findings.
func (s *Service) ListFindingsByGrantee(ctx context.Context, granteeID string) ([]*Finding, error) {
	rows, err := s.store.ListFindingsByGrantee(ctx, granteeID)
	if err != nil {
		return nil, err
	}
	return findingsFromRows(rows), nil
}

// UpdateFinding validates and updates a finding.
func (s *Service) UpdateFinding(ctx context.Context, f *Finding) error {
	if err := validateFinding(f); err != nil {
		return err
	}
	return wrapStore(s.store.UpdateFinding(ctx, findingToRow(f)))
}

// DeleteFinding removes a finding and, by cascade, its comments.
func (s *Service) DeleteFinding(ctx context.Context, id string) error {
	return wrapStore(s.store.DeleteFinding(ctx, id))
}

// --- Comments ---

// CreateComment validates and persists a comment. The caller decides
// Published; the HTTP layer defaults it to true when the field is omitted.
func (s *Service) CreateComment(ctx context.Context, c *Comment) error {
	if err := validateComment(c); err != nil {
		return err
	}
	if _, err := s.GetFinding(ctx, c.FindingID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: finding %s does not exist", ErrInvalidInput, c.FindingID)
		}
		return err
	}
	c.ID = uuid.NewString()
	row := store.Comment{ID: c.ID, FindingID: c.FindingID, Author: c.Author,
		Body: c.Body, Published: c.Published,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
	if err := s.store.InsertComment(ctx, &row); err != nil {
		return err
	}
	c.CreatedAt = row.CreatedAt
	c.UpdatedAt = row.UpdatedAt
	return nil
}

// ListComments returns a finding's comments oldest first.
func (s *Service) ListComments(ctx context.Context, findingID string, publishedOnly bool) ([]*Comment, error) {
	rows, err := s.store.ListComments(ctx, findingID, publishedOnly)
	if err != nil {
		return nil, err
	}
	out := make([]*Comment, 0, len(rows))
	for _, r := range rows {
		out = append(out, &Comment{ID: r.ID, FindingID: r.FindingID, Author: r.Author,
			Body: r.Body, Published: r.Published, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt})
	}
	return out, nil
}

// UpdateComment updates a comment's body and published flag.
func (s *Service) UpdateComment(ctx context.Context, c *Comment) error {
	if c.Body == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidInput)
	}
	return wrapStore(s.store.UpdateComment(ctx, &store.Comment{
		ID: c.ID, Body: c.Body, Published: c.Published,
	}))
}

// DeleteComment removes a comment.
func (s *Service) DeleteComment(ctx context.Context, id string) error {
	return wrapStore(s.store.DeleteComment(ctx, id))
}

func findingToRow(f *Finding) *store.Finding {
	return &store.Finding{
		ID: f.ID, Name: f.Name, Number: f.Number, Type: string(f.Type),
		Condition: f.Condition, Cause: f.Cause, Criteria: f.Criteria,
		Effect: f.Effect, Recommendation: f.Recommendation,
		Status: string(f.Status), GranteeID: f.GranteeID, AgencyIDs: f.AgencyIDs,
		CreatedAt: f.CreatedAt, UpdatedAt: f.UpdatedAt,
	}
}

func findingFromRow(r *store.Finding) *Finding {
	return &Finding{
		ID: r.ID, Name: r.Name, Number: r.Number, Type: FindingType(r.Type),
		Condition: r.Condition, Cause: r.Cause, Criteria: r.Criteria,
		Effect: r.Effect, Recommendation: r.Recommendation,
		Status: FindingStatus(r.Status), GranteeID: r.GranteeID, AgencyIDs: r.AgencyIDs,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func findingsFromRows(rows []*store.Finding) []*Finding {
	out := make([]*Finding, 0, len(rows))
	for _, r := range rows {
		out = append(out, findingFromRow(r))
	}
	return out
}
