package board

import (
	"context"
	"errors"
	"testing"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/repository/memory"
)

func newTestBoard(t *testing.T) *UseCase {
	t.Helper()
	store := memory.New()
	uc := New(store.Tasks(), store.Labels(), store.Columns(), nil)
	if err := uc.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return uc
}

func mustCreate(t *testing.T, uc *UseCase, params CreateTaskParams) domain.Task {
	t.Helper()
	task, err := uc.CreateTask(context.Background(), params)
	if err != nil {
		t.Fatalf("create %q: %v", params.Title, err)
	}
	return task
}

func TestInitSeedsDefaults(t *testing.T) {
	uc := newTestBoard(t)
	state, err := uc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(state.Columns) != 4 {
		t.Fatalf("expected the four default lanes, got %d", len(state.Columns))
	}
	if len(state.Labels) == 0 {
		t.Fatal("expected seeded labels")
	}
	if len(state.Tasks) != 0 {
		t.Fatalf("a fresh board must be empty, got %d tasks", len(state.Tasks))
	}
}

func TestCreateTaskAppendsToFirstColumn(t *testing.T) {
	uc := newTestBoard(t)
	first := mustCreate(t, uc, CreateTaskParams{Title: "first"})
	second := mustCreate(t, uc, CreateTaskParams{Title: "second"})

	if first.Status != "todo" || second.Status != "todo" {
		t.Fatalf("new tasks must land in the first column: %q, %q", first.Status, second.Status)
	}
	if first.Order != 0 || second.Order != 1 {
		t.Fatalf("orders must append: %d, %d", first.Order, second.Order)
	}
	if first.CreationDate.IsZero() {
		t.Fatal("creation date not stamped")
	}
}

func TestUpdateTaskRejectsCycle(t *testing.T) {
	uc := newTestBoard(t)
	root := mustCreate(t, uc, CreateTaskParams{Title: "root"})
	child := mustCreate(t, uc, CreateTaskParams{Title: "child", ParentID: root.ID})

	_, err := uc.UpdateTask(context.Background(), root.ID, UpdateTaskParams{Title: "root", ParentID: child.ID})
	if !errors.Is(err, ErrCyclicParent) {
		t.Fatalf("expected ErrCyclicParent, got %v", err)
	}
	_, err = uc.UpdateTask(context.Background(), root.ID, UpdateTaskParams{Title: "root", ParentID: root.ID})
	if !errors.Is(err, ErrCyclicParent) {
		t.Fatalf("self-parenting should be rejected, got %v", err)
	}
}

func TestMoveTaskCompletionDate(t *testing.T) {
	uc := newTestBoard(t)
	task := mustCreate(t, uc, CreateTaskParams{Title: "work"})
	ctx := context.Background()

	moved, err := uc.MoveTask(ctx, task.ID, "done")
	if err != nil {
		t.Fatalf("move to done: %v", err)
	}
	if moved.CompletionDate == nil {
		t.Fatal("entering the done column must stamp the completion date")
	}
	stamped := *moved.CompletionDate

	// Moving to done again keeps the original stamp.
	again, err := uc.MoveTask(ctx, task.ID, "done")
	if err != nil {
		t.Fatalf("re-move to done: %v", err)
	}
	if again.CompletionDate == nil || !again.CompletionDate.Equal(stamped) {
		t.Fatal("a repeated move to done must not restamp the completion date")
	}

	back, err := uc.MoveTask(ctx, task.ID, "todo")
	if err != nil {
		t.Fatalf("move back: %v", err)
	}
	if back.CompletionDate != nil {
		t.Fatal("leaving the done column must clear the completion date")
	}
}

func TestMoveTaskUnknownColumn(t *testing.T) {
	uc := newTestBoard(t)
	task := mustCreate(t, uc, CreateTaskParams{Title: "work"})

	if _, err := uc.MoveTask(context.Background(), task.ID, "nope"); !errors.Is(err, domain.ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
	if _, err := uc.MoveTask(context.Background(), "missing", "todo"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestReorderTask(t *testing.T) {
	uc := newTestBoard(t)
	a := mustCreate(t, uc, CreateTaskParams{Title: "a"})
	b := mustCreate(t, uc, CreateTaskParams{Title: "b"})
	c := mustCreate(t, uc, CreateTaskParams{Title: "c"})

	if err := uc.ReorderTask(context.Background(), c.ID, a.ID); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	state, _ := uc.Snapshot(context.Background())
	orders := map[string]int{}
	for _, task := range state.Tasks {
		orders[task.ID] = task.Order
	}
	if orders[c.ID] != 0 || orders[a.ID] != 1 || orders[b.ID] != 2 {
		t.Fatalf("unexpected orders after reorder: %v", orders)
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	uc := newTestBoard(t)
	root := mustCreate(t, uc, CreateTaskParams{Title: "root"})
	child := mustCreate(t, uc, CreateTaskParams{Title: "child", ParentID: root.ID})
	mustCreate(t, uc, CreateTaskParams{Title: "grandchild", ParentID: child.ID})
	other := mustCreate(t, uc, CreateTaskParams{Title: "other"})

	preview, err := uc.DeletePreview(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview != 2 {
		t.Fatalf("expected 2 descendants in the preview, got %d", preview)
	}

	removed, err := uc.DeleteTask(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected the whole subtree gone, removed %d", removed)
	}

	state, _ := uc.Snapshot(context.Background())
	if len(state.Tasks) != 1 || state.Tasks[0].ID != other.ID {
		t.Fatalf("unrelated task must survive, got %d tasks", len(state.Tasks))
	}
}

func TestColumnGuards(t *testing.T) {
	uc := newTestBoard(t)
	ctx := context.Background()

	if err := uc.DeleteColumn(ctx, "todo"); !errors.Is(err, domain.ErrFirstColumn) {
		t.Fatalf("first column must be protected, got %v", err)
	}

	task := mustCreate(t, uc, CreateTaskParams{Title: "parked"})
	if _, err := uc.MoveTask(ctx, task.ID, "review"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := uc.DeleteColumn(ctx, "review"); err != nil {
		t.Fatalf("delete review: %v", err)
	}

	state, _ := uc.Snapshot(context.Background())
	if got := state.Tasks[0].Status; got != "todo" {
		t.Fatalf("orphaned task must be reassigned to the first column, got %q", got)
	}

	for _, id := range []string{"in-progress", "done"} {
		if err := uc.DeleteColumn(ctx, id); err != nil {
			t.Fatalf("delete %s: %v", id, err)
		}
	}
	if err := uc.DeleteColumn(ctx, "todo"); !errors.Is(err, domain.ErrLastColumn) {
		t.Fatalf("last column must be protected, got %v", err)
	}
}

func TestReorderColumns(t *testing.T) {
	uc := newTestBoard(t)
	ctx := context.Background()

	reordered, err := uc.ReorderColumns(ctx, []string{"done", "review", "in-progress", "todo"})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if reordered[0].ID != "done" || reordered[0].Order != 0 {
		t.Fatalf("unexpected head after reorder: %+v", reordered[0])
	}

	if _, err := uc.ReorderColumns(ctx, []string{"done"}); !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("short id list must be rejected, got %v", err)
	}
	if _, err := uc.ReorderColumns(ctx, []string{"done", "review", "in-progress", "ghost"}); !errors.Is(err, domain.ErrColumnNotFound) {
		t.Fatalf("unknown id must be rejected, got %v", err)
	}
}

func TestAddLabel(t *testing.T) {
	uc := newTestBoard(t)
	ctx := context.Background()

	created, err := uc.AddLabel(ctx, "infra", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if created.Color == "" {
		t.Fatal("empty color must take a palette entry")
	}

	if _, err := uc.AddLabel(ctx, "INFRA", "#fff"); !errors.Is(err, domain.ErrDuplicateLabel) {
		t.Fatalf("case-insensitive duplicate must be rejected, got %v", err)
	}
}

func TestImportValidation(t *testing.T) {
	uc := newTestBoard(t)
	ctx := context.Background()

	if err := uc.Import(ctx, State{Labels: []domain.Label{}}); !errors.Is(err, domain.ErrInvalidSnapshot) {
		t.Fatalf("nil tasks must be rejected, got %v", err)
	}

	snapshot := State{
		Tasks:  []domain.Task{{ID: "t1", Title: "restored", Status: "todo"}},
		Labels: []domain.Label{{ID: "bug", Color: "#111111"}},
	}
	if err := uc.Import(ctx, snapshot); err != nil {
		t.Fatalf("import: %v", err)
	}

	state, _ := uc.Snapshot(ctx)
	if len(state.Columns) != 4 {
		t.Fatalf("missing columns must fall back to the defaults, got %d", len(state.Columns))
	}
	if len(state.Tasks) != 1 || state.Tasks[0].ID != "t1" {
		t.Fatalf("snapshot tasks not restored: %+v", state.Tasks)
	}
}
