package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/taskboard/backend/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "board.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTaskRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	tasks := []domain.Task{
		{ID: "a", Title: "first", Status: "todo", Order: 0, CreationDate: now},
		{ID: "b", Title: "second", Status: "todo", Order: 1, CreationDate: now, ParentID: "a", TimeSpent: 3600},
	}

	if err := store.Tasks().ReplaceAll(ctx, tasks); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	loaded, err := store.Tasks().GetAll(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(loaded))
	}
	if loaded[0].ID != "a" || loaded[1].ID != "b" {
		t.Errorf("expected order-sorted tasks, got %s, %s", loaded[0].ID, loaded[1].ID)
	}
	if loaded[1].ParentID != "a" || loaded[1].TimeSpent != 3600 {
		t.Errorf("task fields lost on round trip: %+v", loaded[1])
	}
}

func TestReplaceAllClearsPreviousSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := []domain.Task{
		{ID: "a", Title: "a", Status: "todo"},
		{ID: "b", Title: "b", Status: "todo", Order: 1},
	}
	if err := store.Tasks().ReplaceAll(ctx, first); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	second := []domain.Task{{ID: "c", Title: "c", Status: "done"}}
	if err := store.Tasks().ReplaceAll(ctx, second); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	loaded, err := store.Tasks().GetAll(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "c" {
		t.Errorf("expected only the new snapshot, got %+v", loaded)
	}
}

func TestColumnsSortedByOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	columns := []domain.Column{
		{ID: "done", Title: "Done", Order: 2},
		{ID: "todo", Title: "To Do", Order: 0},
		{ID: "doing", Title: "Doing", Order: 1},
	}
	if err := store.Columns().ReplaceAll(ctx, columns); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	loaded, err := store.Columns().GetAll(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	for i, want := range []string{"todo", "doing", "done"} {
		if loaded[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, loaded[i].ID)
		}
	}
}

func TestLabelRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	labels := []domain.Label{{ID: "bug", Color: "#ef4444"}}
	if err := store.Labels().ReplaceAll(ctx, labels); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	loaded, err := store.Labels().GetAll(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Color != "#ef4444" {
		t.Errorf("label lost on round trip: %+v", loaded)
	}
}

func TestHealthy(t *testing.T) {
	store := openTestStore(t)
	if !store.Healthy() {
		t.Error("open store should report healthy")
	}
	store.Close()
	if store.Healthy() {
		t.Error("closed store should report unhealthy")
	}
}
