package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/internal/gitlab"
	"github.com/taskboard/backend/repository/memory"
	"github.com/taskboard/backend/usecase/board"
)

// fakeAPI is an in-memory tracker. Keys are "project/iid".
type fakeAPI struct {
	mu     sync.Mutex
	issues map[string]gitlab.Issue
	links  map[string][]gitlab.IssueLink
	fail   map[string]error
	listed map[int][]int
	down   bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		issues: make(map[string]gitlab.Issue),
		links:  make(map[string][]gitlab.IssueLink),
		fail:   make(map[string]error),
		listed: make(map[int][]int),
	}
}

func apiKey(projectID, iid int) string { return fmt.Sprintf("%d/%d", projectID, iid) }

func (f *fakeAPI) addIssue(projectID int, issue gitlab.Issue, seed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue.ProjectID = projectID
	f.issues[apiKey(projectID, issue.IID)] = issue
	if seed {
		f.listed[projectID] = append(f.listed[projectID], issue.IID)
	}
}

func (f *fakeAPI) link(projectID, iid, childProject, childIID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := apiKey(projectID, iid)
	f.links[key] = append(f.links[key], gitlab.IssueLink{ProjectID: childProject, IID: childIID})
}

func (f *fakeAPI) ListOpenIssues(ctx context.Context, projectID int) ([]gitlab.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errors.New("tracker unreachable")
	}
	var out []gitlab.Issue
	for _, iid := range f.listed[projectID] {
		issue := f.issues[apiKey(projectID, iid)]
		if issue.State != gitlab.StateClosed {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetIssue(ctx context.Context, projectID, iid int) (*gitlab.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[apiKey(projectID, iid)]; err != nil {
		return nil, err
	}
	issue, ok := f.issues[apiKey(projectID, iid)]
	if !ok {
		return nil, fmt.Errorf("issue %d/%d not found", projectID, iid)
	}
	copied := issue
	return &copied, nil
}

func (f *fakeAPI) ListLinks(ctx context.Context, projectID, iid int) ([]gitlab.IssueLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["links:"+apiKey(projectID, iid)]; err != nil {
		return nil, err
	}
	return f.links[apiKey(projectID, iid)], nil
}

func newTestBoard(t *testing.T) *board.UseCase {
	t.Helper()
	store := memory.New()
	uc := board.New(store.Tasks(), store.Labels(), store.Columns(), nil)
	if err := uc.Init(context.Background()); err != nil {
		t.Fatalf("init board: %v", err)
	}
	return uc
}

func boardState(t *testing.T, uc *board.UseCase) board.State {
	t.Helper()
	state, err := uc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return state
}

func findTask(t *testing.T, state board.State, id string) domain.Task {
	t.Helper()
	for _, task := range state.Tasks {
		if task.ID == id {
			return task
		}
	}
	t.Fatalf("task %q not on the board", id)
	return domain.Task{}
}

func openIssue(iid int, title string, labels ...string) gitlab.Issue {
	return gitlab.Issue{
		IID:       iid,
		Title:     title,
		State:     gitlab.StateOpened,
		WebURL:    fmt.Sprintf("https://gitlab.example.com/-/issues/%d", iid),
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Labels:    labels,
	}
}

func TestImportProject(t *testing.T) {
	api := newFakeAPI()
	api.addIssue(10, openIssue(1, "Parent feature", "epic"), true)
	api.addIssue(10, openIssue(2, "Standalone bug", "bug"), true)
	api.addIssue(10, openIssue(3, "Child work", "bug"), false)
	api.link(10, 1, 10, 3)

	uc := newTestBoard(t)
	engine := NewEngine(uc, api, nil)

	report, err := engine.ImportProject(context.Background(), 10)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Imported != 3 {
		t.Fatalf("expected 3 imported tasks, got %d", report.Imported)
	}

	state := boardState(t, uc)
	child := findTask(t, state, "gitlab-10-3")
	if child.ParentID != "gitlab-10-1" {
		t.Fatalf("linked issue should become a child, parent=%q", child.ParentID)
	}

	first, _ := domain.FirstColumn(state.Columns)
	orders := map[int]bool{}
	for _, task := range state.Tasks {
		if task.Status != first.ID {
			t.Fatalf("imported task %s landed in %q", task.ID, task.Status)
		}
		if orders[task.Order] {
			t.Fatalf("duplicate order %d in first column", task.Order)
		}
		orders[task.Order] = true
	}

	found := map[string]bool{}
	for _, l := range state.Labels {
		found[l.ID] = true
	}
	for _, want := range []string{"epic", "bug"} {
		if !found[want] {
			t.Errorf("label %q not merged into the board", want)
		}
	}
}

func TestImportProjectIdempotent(t *testing.T) {
	api := newFakeAPI()
	api.addIssue(10, openIssue(1, "One"), true)
	api.addIssue(10, openIssue(2, "Two"), true)

	uc := newTestBoard(t)
	engine := NewEngine(uc, api, nil)

	if _, err := engine.ImportProject(context.Background(), 10); err != nil {
		t.Fatalf("first import: %v", err)
	}
	report, err := engine.ImportProject(context.Background(), 10)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if report.Imported != 0 {
		t.Fatalf("re-import must be a no-op, imported %d", report.Imported)
	}
	if state := boardState(t, uc); len(state.Tasks) != 2 {
		t.Fatalf("expected 2 tasks after double import, got %d", len(state.Tasks))
	}
}

func TestImportProjectSeedFailureAborts(t *testing.T) {
	api := newFakeAPI()
	api.down = true

	uc := newTestBoard(t)
	engine := NewEngine(uc, api, nil)

	if _, err := engine.ImportProject(context.Background(), 10); err == nil {
		t.Fatal("expected the import to fail when the listing fails")
	}
	if state := boardState(t, uc); len(state.Tasks) != 0 {
		t.Fatalf("a failed import must not touch the board, got %d tasks", len(state.Tasks))
	}
}

func TestImportProjectLinkFailureSkipsOnlyThatLink(t *testing.T) {
	api := newFakeAPI()
	api.addIssue(10, openIssue(1, "One"), true)
	api.addIssue(10, openIssue(2, "Two"), true)
	api.fail["links:10/1"] = errors.New("boom")

	uc := newTestBoard(t)
	engine := NewEngine(uc, api, nil)

	report, err := engine.ImportProject(context.Background(), 10)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Imported != 2 {
		t.Fatalf("both seeds should import despite the link failure, got %d", report.Imported)
	}
}

func TestSyncTaskRefreshesFields(t *testing.T) {
	api := newFakeAPI()
	api.addIssue(10, openIssue(1, "Old title"), true)

	uc := newTestBoard(t)
	engine := NewEngine(uc, api, nil)
	if _, err := engine.ImportProject(context.Background(), 10); err != nil {
		t.Fatalf("import: %v", err)
	}

	updated := openIssue(1, "New title", "urgent")
	updated.Description = "now with detail"
	updated.Assignees = []gitlab.Assignee{{Name: "Robin"}}
	updated.TimeStats = &gitlab.TimeStats{TimeEstimate: secondsPerWorkday, TotalTimeSpent: 1800}
	api.addIssue(10, updated, false)

	if err := engine.SyncTask(context.Background(), "gitlab-10-1"); err != nil {
		t.Fatalf("sync: %v", err)
	}

	task := findTask(t, boardState(t, uc), "gitlab-10-1")
	if task.Title != "New title" || task.Description != "now with detail" {
		t.Fatalf("identity fields not refreshed: %+v", task)
	}
	if task.Assignee != "Robin" {
		t.Fatalf("assignee not refreshed, got %q", task.Assignee)
	}
	if task.Duration != 1 || task.TimeSpent != 1800 {
		t.Fatalf("time stats not refreshed: duration=%d spent=%d", task.Duration, task.TimeSpent)
	}
}

func TestSyncTaskZeroEstimateKeepsLocalDuration(t *testing.T) {
	api := newFakeAPI()
	api.addIssue(10, openIssue(1, "Estimated"), true)

	uc := newTestBoard(t)
	engine := NewEngine(uc, api, nil)
	if _, err := engine.ImportProject(context.Background(), 10); err != nil {
		t.Fatalf("import: %v", err)
	}

	err := uc.Update(context.Background(), func(s *board.State) error {
		for i := range s.Tasks {
			if s.Tasks[i].ID == "gitlab-10-1" {
				s.Tasks[i].Duration = 5
				s.Tasks[i].TimeSpent = 7200
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed local edits: %v", err)
	}

	cleared := openIssue(1, "Estimated")
	cleared.TimeStats = &gitlab.TimeStats{TimeEstimate: 0, TotalTimeSpent: 0}
	api.addIssue(10, cleared, false)

	if err := engine.SyncTask(context.Background(), "gitlab-10-1"); err != nil {
		t.Fatalf("sync: %v", err)
	}

	task := findTask(t, boardState(t, uc), "gitlab-10-1")
	if task.Duration != 5 {
		t.Fatalf("zero tracker estimate must not erase the local duration, got %d", task.Duration)
	}
	if task.TimeSpent != 7200 {
		t.Fatalf("zero tracker time spent must not erase local time, got %d", task.TimeSpent)
	}
}

func TestSyncTaskStatusForwardOnly(t *testing.T) {
	api := newFakeAPI()
	api.addIssue(10, openIssue(1, "Keep my lane"), true)

	uc := newTestBoard(t)
	engine := NewEngine(uc, api, nil)
	if _, err := engine.ImportProject(context.Background(), 10); err != nil {
		t.Fatalf("import: %v", err)
	}

	state := boardState(t, uc)
	var review string
	for _, c := range state.Columns {
		if c.Title == "Review" {
			review = c.ID
		}
	}
	if review == "" {
		t.Fatal("default columns changed, no review lane")
	}
	if _, err := uc.MoveTask(context.Background(), "gitlab-10-1", review); err != nil {
		t.Fatalf("move: %v", err)
	}

	// Remote still open: the local column must survive the sync.
	if err := engine.SyncTask(context.Background(), "gitlab-10-1"); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if task := findTask(t, boardState(t, uc), "gitlab-10-1"); task.Status != review {
		t.Fatalf("sync pulled an open issue out of its column: %q", task.Status)
	}

	// Remote closed: now the task moves to done with the tracker's time.
	closed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	done := openIssue(1, "Keep my lane")
	done.State = gitlab.StateClosed
	done.ClosedAt = &closed
	api.addIssue(10, done, false)

	if err := engine.SyncTask(context.Background(), "gitlab-10-1"); err != nil {
		t.Fatalf("sync closed: %v", err)
	}
	task := findTask(t, boardState(t, uc), "gitlab-10-1")
	doneColumn, _ := domain.DoneColumn(boardState(t, uc).Columns)
	if task.Status != doneColumn.ID {
		t.Fatalf("closed issue should land in the done column, got %q", task.Status)
	}
	if task.CompletionDate == nil || !task.CompletionDate.Equal(closed) {
		t.Fatalf("completion date should be the tracker's close time, got %v", task.CompletionDate)
	}
}

func TestSyncTaskDiscoversNewChildren(t *testing.T) {
	api := newFakeAPI()
	api.addIssue(10, openIssue(1, "Parent"), true)

	uc := newTestBoard(t)
	engine := NewEngine(uc, api, nil)
	if _, err := engine.ImportProject(context.Background(), 10); err != nil {
		t.Fatalf("import: %v", err)
	}

	api.addIssue(10, openIssue(4, "Late child"), false)
	api.link(10, 1, 10, 4)

	if err := engine.SyncTask(context.Background(), "gitlab-10-1"); err != nil {
		t.Fatalf("sync: %v", err)
	}

	child := findTask(t, boardState(t, uc), "gitlab-10-4")
	if child.ParentID != "gitlab-10-1" {
		t.Fatalf("new child not attached to its parent, got %q", child.ParentID)
	}
}

func TestSyncTaskRejectsLocalTask(t *testing.T) {
	uc := newTestBoard(t)
	engine := NewEngine(uc, newFakeAPI(), nil)

	if err := engine.SyncTask(context.Background(), "not-a-tracker-id"); !errors.Is(err, domain.ErrNotTrackerTask) {
		t.Fatalf("expected ErrNotTrackerTask, got %v", err)
	}
}

func TestSyncAll(t *testing.T) {
	api := newFakeAPI()
	api.addIssue(10, openIssue(1, "One"), true)
	api.addIssue(10, openIssue(2, "Two"), true)
	api.addIssue(10, openIssue(3, "Three"), true)

	uc := newTestBoard(t)
	engine := NewEngine(uc, api, nil)
	if _, err := engine.ImportProject(context.Background(), 10); err != nil {
		t.Fatalf("import: %v", err)
	}

	api.addIssue(10, openIssue(1, "One renamed"), false)
	api.fail["10/2"] = errors.New("flaky upstream")

	report, err := engine.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("sync all: %v", err)
	}
	if report.Synced != 2 {
		t.Fatalf("expected 2 synced tasks, got %d", report.Synced)
	}
	if !report.HadErrors {
		t.Fatal("per-task failure should be surfaced in the report")
	}

	state := boardState(t, uc)
	if task := findTask(t, state, "gitlab-10-1"); task.Title != "One renamed" {
		t.Fatalf("task one not refreshed: %q", task.Title)
	}
	if task := findTask(t, state, "gitlab-10-2"); task.Title != "Two" {
		t.Fatalf("failed fetch must leave the task untouched, got %q", task.Title)
	}
}

func TestSyncAllRejectsConcurrentRun(t *testing.T) {
	uc := newTestBoard(t)
	engine := NewEngine(uc, newFakeAPI(), nil)
	engine.syncing.Store(true)

	if _, err := engine.SyncAll(context.Background()); !errors.Is(err, domain.ErrSyncInFlight) {
		t.Fatalf("expected ErrSyncInFlight, got %v", err)
	}
}

func TestSyncAllSkipsLocalTasks(t *testing.T) {
	api := newFakeAPI()
	uc := newTestBoard(t)
	engine := NewEngine(uc, api, nil)

	if _, err := uc.CreateTask(context.Background(), board.CreateTaskParams{Title: "local only"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	report, err := engine.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("sync all: %v", err)
	}
	if report.Synced != 0 {
		t.Fatalf("local tasks must not be synced, got %d", report.Synced)
	}
}
