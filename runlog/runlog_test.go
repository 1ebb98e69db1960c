package runlog

import (
	"context"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/opengrants/distiller/dbopen"
)

func testLog(t *testing.T) *Log {
	t.Helper()
	return New(dbopen.OpenMemory(t, dbopen.WithSchema(Schema)))
}

func TestRunLifecycle_Completed(t *testing.T) {
	l := testLog(t)
	ctx := context.Background()

	id := l.Start(ctx, "20", "5", "01/10/2019", "04/09/2019")
	if id == "" {
		t.Fatal("Start returned empty id")
	}
	l.Complete(ctx, id, 3, 70, 68, 138)

	runs, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	r := runs[0]
	if r.Status != StatusCompleted {
		t.Errorf("status = %q", r.Status)
	}
	if r.Pages != 3 || r.FormsTriggered != 70 || r.AuditsTriggered != 68 || r.FilesCompleted != 138 {
		t.Errorf("counts = %+v", r)
	}
	if r.FinishedAt == 0 {
		t.Error("finished_at not set")
	}
}

func TestRunLifecycle_Failed(t *testing.T) {
	l := testLog(t)
	ctx := context.Background()

	id := l.Start(ctx, "84", "0", "01/01/2019", "01/31/2019")
	l.Fail(ctx, id, errors.New("downloads did not complete in time"))

	runs, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if runs[0].Status != StatusFailed {
		t.Errorf("status = %q", runs[0].Status)
	}
	if runs[0].Error == "" {
		t.Error("error text not recorded")
	}
}

func TestRecent_LimitAndOrder(t *testing.T) {
	l := testLog(t)
	ctx := context.Background()

	var last string
	for i := 0; i < 5; i++ {
		last = l.Start(ctx, "20", "5", "a", "b")
	}
	runs, err := l.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want 3", len(runs))
	}
	_ = last // same-second starts order by id; just check the limit held
}
