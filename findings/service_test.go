package findings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/opengrants/distiller/dbopen"
)

func testService(t *testing.T) *Service {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return NewService(db)
}

func TestGranteeCRUD(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	g := &Grantee{Name: "City Transit Authority"}
	if err := s.CreateGrantee(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.ID == "" || g.CreatedAt == 0 {
		t.Fatal("create did not assign id and timestamp")
	}

	got, err := s.GetGrantee(ctx, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != g.Name {
		t.Errorf("name = %q", got.Name)
	}

	g.Name = "Metro Transit Authority"
	if err := s.UpdateGrantee(ctx, g); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := s.DeleteGrantee(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetGrantee(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListGrantees_OrderedByName(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	for _, name := range []string{"Zeta Housing", "Alpha Transit", "Mid Health"} {
		if err := s.CreateGrantee(ctx, &Grantee{Name: name}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.ListGrantees(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].Name != "Alpha Transit" || list[2].Name != "Zeta Housing" {
		t.Errorf("order wrong: %s, %s, %s", list[0].Name, list[1].Name, list[2].Name)
	}
}

func TestCreateGrant_CFDAValidation(t *testing.T) {
	// WHAT: CFDA numbers must have exactly five digits.
	s := testService(t)
	ctx := context.Background()

	for _, cfda := range []int{0, 205, 9999, 100000} {
		err := s.CreateGrant(ctx, &Grant{Name: "Transit Formula Grants", CFDA: cfda})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("cfda %d: expected ErrInvalidInput, got %v", cfda, err)
		}
	}

	g := &Grant{Name: "Transit Formula Grants", CFDA: 20507}
	if err := s.CreateGrant(ctx, g); err != nil {
		t.Fatalf("valid cfda rejected: %v", err)
	}
}

func TestFindingDefaultsAndStatusOrdering(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	resolved := &Finding{Name: "Old issue", Status: StatusResolved}
	inProgress := &Finding{Name: "Being worked", Status: StatusInProgress}
	fresh := &Finding{Name: "Untriaged"}
	for _, f := range []*Finding{resolved, inProgress, fresh} {
		if err := s.CreateFinding(ctx, f); err != nil {
			t.Fatalf("create %s: %v", f.Name, err)
		}
	}

	// Defaults applied on the finding with no status/type set.
	got, err := s.GetFinding(ctx, fresh.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusNew {
		t.Errorf("default status = %q, want new", got.Status)
	}
	if got.Type != TypeMaterialWeakness {
		t.Errorf("default type = %q, want material_weakness", got.Type)
	}

	// Listing puts new first, resolved last.
	list, err := s.ListFindings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].Status != StatusNew || list[2].Status != StatusResolved {
		t.Errorf("order: %s, %s, %s", list[0].Status, list[1].Status, list[2].Status)
	}

	// ListNewFindings filters to status=new only.
	fresh2, err := s.ListNewFindings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh2) != 1 || fresh2[0].ID != fresh.ID {
		t.Errorf("ListNewFindings = %v", fresh2)
	}
}

func TestFinding_InvalidStatusRejected(t *testing.T) {
	s := testService(t)
	err := s.CreateFinding(context.Background(), &Finding{Name: "x", Status: "closed"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFinding_UnknownGranteeRejected(t *testing.T) {
	s := testService(t)
	err := s.CreateFinding(context.Background(), &Finding{Name: "x", GranteeID: "ghost"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFinding_AgenciesAffectedRoundTrip(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	a1 := &Agency{Name: "Department of Transportation"}
	a2 := &Agency{Name: "Department of Education"}
	for _, a := range []*Agency{a1, a2} {
		if err := s.CreateAgency(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	f := &Finding{Name: "Procurement weakness", AgencyIDs: []string{a1.ID, a2.ID}}
	if err := s.CreateFinding(ctx, f); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetFinding(ctx, f.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.AgencyIDs) != 2 {
		t.Fatalf("agency links = %v, want 2", got.AgencyIDs)
	}

	// Replacing links on update drops the old set.
	f.AgencyIDs = []string{a2.ID}
	if err := s.UpdateFinding(ctx, f); err != nil {
		t.Fatal(err)
	}
	got, err = s.GetFinding(ctx, f.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.AgencyIDs) != 1 || got.AgencyIDs[0] != a2.ID {
		t.Errorf("agency links after update = %v", got.AgencyIDs)
	}
}

func TestComments_CascadeOnPooledConnections(t *testing.T) {
	// WHY: against a file-backed database the pool opens extra
	// connections, and each one must enforce foreign keys for the
	// comment cascade to fire regardless of which connection serves
	// the delete.
	db, err := dbopen.Open(filepath.Join(t.TempDir(), "findings.db"), dbopen.WithSchema(Schema))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	s := NewService(db)
	ctx := context.Background()

	g := &Grantee{Name: "Lakeside Utility Board"}
	if err := s.CreateGrantee(ctx, g); err != nil {
		t.Fatal(err)
	}
	f := &Finding{Name: "Late reporting", GranteeID: g.ID}
	if err := s.CreateFinding(ctx, f); err != nil {
		t.Fatal(err)
	}
	c := &Comment{FindingID: f.ID, Author: "auditor", Body: "follow up", Published: true}
	if err := s.CreateComment(ctx, c); err != nil {
		t.Fatal(err)
	}

	// Hold one connection so the delete lands on a different one.
	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := s.DeleteFinding(ctx, f.ID); err != nil {
		t.Fatalf("delete finding: %v", err)
	}
	comments, err := s.ListComments(ctx, f.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 0 {
		t.Errorf("cascade did not fire: %d orphan comment(s) remain", len(comments))
	}
}

func TestCreateFinding_BadAgencyLinkLeavesNoRow(t *testing.T) {
	// WHY: the finding insert and its agency links commit together; a
	// rejected link must not leave an orphaned finding row behind.
	s := testService(t)
	ctx := context.Background()

	g := &Grantee{Name: "Harbor District"}
	if err := s.CreateGrantee(ctx, g); err != nil {
		t.Fatal(err)
	}

	err := s.CreateFinding(ctx, &Finding{
		Name:      "Unallowable costs",
		GranteeID: g.ID,
		AgencyIDs: []string{"no-such-agency"},
	})
	if err == nil {
		t.Fatal("expected error for unknown agency link")
	}

	all, err := s.ListFindings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("finding row persisted despite create error: %d row(s)", len(all))
	}
}

func TestUpdateAgency_BadLinkRollsBackRename(t *testing.T) {
	// WHY: the rename and the link replacement are one transaction; when
	// the replacement fails, both the old name and the old links survive.
	s := testService(t)
	ctx := context.Background()

	g := &Grantee{Name: "Valley School District"}
	if err := s.CreateGrantee(ctx, g); err != nil {
		t.Fatal(err)
	}
	a := &Agency{Name: "Department of Records", GranteeIDs: []string{g.ID}}
	if err := s.CreateAgency(ctx, a); err != nil {
		t.Fatal(err)
	}

	err := s.UpdateAgency(ctx, &Agency{
		ID: a.ID, Name: "Renamed Department", GranteeIDs: []string{"missing-grantee"},
	})
	if err == nil {
		t.Fatal("expected error for unknown grantee link")
	}

	got, err := s.GetAgency(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Department of Records" {
		t.Errorf("rename survived a failed update: %q", got.Name)
	}
	if len(got.GranteeIDs) != 1 || got.GranteeIDs[0] != g.ID {
		t.Errorf("links after failed update = %v", got.GranteeIDs)
	}
}

func TestListAgenciesAndGrants_IncludeLinks(t *testing.T) {
	// WHAT: list responses carry the same link IDs Get returns.
	s := testService(t)
	ctx := context.Background()

	g1 := &Grantee{Name: "Coastal Clinic"}
	g2 := &Grantee{Name: "Inland Clinic"}
	for _, g := range []*Grantee{g1, g2} {
		if err := s.CreateGrantee(ctx, g); err != nil {
			t.Fatal(err)
		}
	}
	a := &Agency{Name: "Department of Health Programs", GranteeIDs: []string{g1.ID, g2.ID}}
	if err := s.CreateAgency(ctx, a); err != nil {
		t.Fatal(err)
	}
	gr := &Grant{Name: "Rural Health Outreach", CFDA: 93912, RecipientIDs: []string{g1.ID}}
	if err := s.CreateGrant(ctx, gr); err != nil {
		t.Fatal(err)
	}

	agencies, err := s.ListAgencies(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(agencies) != 1 || len(agencies[0].GranteeIDs) != 2 {
		t.Fatalf("agency links in list = %+v", agencies)
	}

	grants, err := s.ListGrants(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(grants) != 1 || len(grants[0].RecipientIDs) != 1 || grants[0].RecipientIDs[0] != g1.ID {
		t.Fatalf("grant recipients in list = %+v", grants)
	}
}

func TestComments_CascadeWithFinding(t *testing.T) {
	// WHAT: Deleting a finding removes its comments via FK cascade.
	s := testService(t)
	ctx := context.Background()

	f := &Finding{Name: "Reporting gap"}
	if err := s.CreateFinding(ctx, f); err != nil {
		t.Fatal(err)
	}
	c := &Comment{FindingID: f.ID, Author: "reviewer", Body: "needs follow-up", Published: true}
	if err := s.CreateComment(ctx, c); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteFinding(ctx, f.ID); err != nil {
		t.Fatal(err)
	}
	left, err := s.ListComments(ctx, f.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("comments survived cascade: %v", left)
	}
}

func TestComments_PublishedFilterAndOrder(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	f := &Finding{Name: "Eligibility finding"}
	if err := s.CreateFinding(ctx, f); err != nil {
		t.Fatal(err)
	}

	first := &Comment{FindingID: f.ID, Author: "a", Body: "first", Published: true, CreatedAt: 100, UpdatedAt: 100}
	draft := &Comment{FindingID: f.ID, Author: "b", Body: "draft", Published: false, CreatedAt: 200, UpdatedAt: 200}
	second := &Comment{FindingID: f.ID, Author: "c", Body: "second", Published: true, CreatedAt: 300, UpdatedAt: 300}
	for _, c := range []*Comment{first, draft, second} {
		if err := s.CreateComment(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	pub, err := s.ListComments(ctx, f.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(pub) != 2 || pub[0].Body != "first" || pub[1].Body != "second" {
		t.Errorf("published comments = %v", pub)
	}

	all, err := s.ListComments(ctx, f.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("all comments = %d, want 3", len(all))
	}
}

func TestComment_OrphanRejected(t *testing.T) {
	s := testService(t)
	err := s.CreateComment(context.Background(),
		&Comment{FindingID: "ghost", Author: "a", Body: "b"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
