package sync

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/internal/gitlab"
	"github.com/taskboard/backend/usecase/board"
)

// Board is the slice of the board usecase the engine needs: consistent
// reads and atomic read-compute-replace updates.
type Board interface {
	View(ctx context.Context, fn func(board.State) error) error
	Update(ctx context.Context, fn func(*board.State) error) error
}

// Engine reconciles tracker issues into the task forest.
type Engine struct {
	board  Board
	api    gitlab.IssueAPI
	logger *zap.Logger

	syncing atomic.Bool
}

func NewEngine(b Board, api gitlab.IssueAPI, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		board:  b,
		api:    api,
		logger: logger,
	}
}

// ImportReport summarizes a bulk import.
type ImportReport struct {
	Imported    int `json:"imported"`
	LabelsAdded int `json:"labels_added"`
}

// SyncReport summarizes a bulk sync.
type SyncReport struct {
	Synced      int  `json:"synced"`
	NewChildren int  `json:"new_children"`
	HadErrors   bool `json:"had_errors"`
}

// ImportProject pulls every open issue of the project plus their linked
// issues and appends the ones not yet known locally. A failure of the seed
// listing aborts the whole import; linked-issue failures only skip that
// link. Importing the same project twice is a no-op.
func (e *Engine) ImportProject(ctx context.Context, projectID int) (ImportReport, error) {
	var known map[string]struct{}
	err := e.board.View(ctx, func(s board.State) error {
		known = make(map[string]struct{}, len(s.Tasks))
		for _, t := range s.Tasks {
			known[t.ID] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return ImportReport{}, err
	}

	seeds, err := e.api.ListOpenIssues(ctx, projectID)
	if err != nil {
		return ImportReport{}, domain.WrapError(domain.ErrCodeUpstream, "tracker import failed", err)
	}

	var (
		newTasks []domain.Task
		labels   []string
	)
	seen := make(map[string]struct{})
	for id := range known {
		seen[id] = struct{}{}
	}

	for i := range seeds {
		seed := &seeds[i]
		seedTaskID := TaskID(projectID, seed.IID)
		if _, ok := seen[seedTaskID]; !ok {
			newTasks = append(newTasks, TaskFromIssue(seed, projectID, ""))
			seen[seedTaskID] = struct{}{}
			labels = append(labels, seed.Labels...)
		}

		links, err := e.api.ListLinks(ctx, projectID, seed.IID)
		if err != nil {
			e.logger.Warn("skipping links for issue",
				zap.Int("project_id", projectID),
				zap.Int("iid", seed.IID),
				zap.Error(err))
			continue
		}

		for _, child := range e.fetchLinked(ctx, links) {
			childTaskID := TaskID(child.ProjectID, child.IID)
			if _, ok := seen[childTaskID]; ok {
				continue
			}
			newTasks = append(newTasks, TaskFromIssue(child, child.ProjectID, seedTaskID))
			seen[childTaskID] = struct{}{}
			labels = append(labels, child.Labels...)
		}
	}

	report := ImportReport{}
	err = e.board.Update(ctx, func(s *board.State) error {
		existing := make(map[string]struct{}, len(s.Tasks))
		for _, t := range s.Tasks {
			existing[t.ID] = struct{}{}
		}

		// Re-filter under the lock: the board may have gained tasks while
		// the fetches were in flight.
		incoming := newTasks[:0:0]
		for _, t := range newTasks {
			if _, dup := existing[t.ID]; dup {
				continue
			}
			t.Status = resolveStatus(t.Status, s.Columns)
			incoming = append(incoming, t)
		}

		before := len(s.Labels)
		s.Tasks = domain.AppendWithOrders(s.Tasks, incoming)
		s.Labels = domain.MergeLabels(s.Labels, labels)
		report.Imported = len(incoming)
		report.LabelsAdded = len(s.Labels) - before
		return nil
	})
	if err != nil {
		return ImportReport{}, err
	}

	e.logger.Info("tracker import finished",
		zap.Int("project_id", projectID),
		zap.Int("imported", report.Imported),
		zap.Int("labels_added", report.LabelsAdded))
	return report, nil
}

// SyncTask refreshes one tracker-sourced task from the tracker and pulls in
// newly linked child issues. A failed issue fetch is returned to the caller
// and leaves the task untouched; failed link fetches are skipped.
func (e *Engine) SyncTask(ctx context.Context, taskID string) error {
	projectID, iid, ok := ParseTaskID(taskID)
	if !ok {
		return domain.ErrNotTrackerTask
	}

	issue, err := e.api.GetIssue(ctx, projectID, iid)
	if err != nil {
		return domain.WrapError(domain.ErrCodeUpstream, "tracker sync failed", err)
	}

	children := e.discoverChildren(ctx, projectID, iid)

	return e.board.Update(ctx, func(s *board.State) error {
		i, found := taskByID(s.Tasks, taskID)
		if !found {
			return domain.ErrTaskNotFound
		}
		applyIssue(&s.Tasks[i], issue, s.Columns)
		s.Labels = domain.MergeLabels(s.Labels, issue.Labels)
		mergeChildren(s, children)
		return nil
	})
}

// SyncAll refreshes every tracker-sourced task concurrently and applies all
// results as one atomic board update. Per-task fetch failures are logged and
// skipped; the report's HadErrors flag surfaces them once. A second bulk
// sync while one is running is rejected.
func (e *Engine) SyncAll(ctx context.Context) (SyncReport, error) {
	if !e.syncing.CompareAndSwap(false, true) {
		return SyncReport{}, domain.ErrSyncInFlight
	}
	defer e.syncing.Store(false)

	var targets []string
	err := e.board.View(ctx, func(s board.State) error {
		for _, t := range s.Tasks {
			if t.IsTrackerSourced() {
				targets = append(targets, t.ID)
			}
		}
		return nil
	})
	if err != nil {
		return SyncReport{}, err
	}
	if len(targets) == 0 {
		return SyncReport{}, nil
	}

	var (
		mu       sync.Mutex
		fetched  = make(map[string]*gitlab.Issue, len(targets))
		children []childIssue
		report   SyncReport
		wg       sync.WaitGroup
	)

	for _, taskID := range targets {
		projectID, iid, ok := ParseTaskID(taskID)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(taskID string, projectID, iid int) {
			defer wg.Done()

			issue, err := e.api.GetIssue(ctx, projectID, iid)
			if err != nil {
				e.logger.Error("task sync failed, skipping",
					zap.String("task_id", taskID),
					zap.Error(err))
				mu.Lock()
				report.HadErrors = true
				mu.Unlock()
				return
			}
			discovered := e.discoverChildren(ctx, projectID, iid)

			mu.Lock()
			fetched[taskID] = issue
			children = append(children, discovered...)
			mu.Unlock()
		}(taskID, projectID, iid)
	}
	wg.Wait()

	err = e.board.Update(ctx, func(s *board.State) error {
		var labels []string
		for i := range s.Tasks {
			issue, ok := fetched[s.Tasks[i].ID]
			if !ok {
				continue
			}
			applyIssue(&s.Tasks[i], issue, s.Columns)
			labels = append(labels, issue.Labels...)
			report.Synced++
		}
		before := len(s.Tasks)
		mergeChildren(s, children)
		report.NewChildren = len(s.Tasks) - before
		s.Labels = domain.MergeLabels(s.Labels, labels)
		return nil
	})
	if err != nil {
		return SyncReport{}, err
	}

	e.logger.Info("bulk sync finished",
		zap.Int("synced", report.Synced),
		zap.Int("new_children", report.NewChildren),
		zap.Bool("had_errors", report.HadErrors))
	return report, nil
}

type childIssue struct {
	issue    *gitlab.Issue
	parentID string
}

// discoverChildren resolves an issue's links into full child issues.
// Failures here are best-effort by design: a broken link fetch drops that
// child only.
func (e *Engine) discoverChildren(ctx context.Context, projectID, iid int) []childIssue {
	links, err := e.api.ListLinks(ctx, projectID, iid)
	if err != nil {
		e.logger.Warn("skipping links for issue",
			zap.Int("project_id", projectID),
			zap.Int("iid", iid),
			zap.Error(err))
		return nil
	}

	parentID := TaskID(projectID, iid)
	var children []childIssue
	for _, issue := range e.fetchLinked(ctx, links) {
		children = append(children, childIssue{issue: issue, parentID: parentID})
	}
	return children
}

// fetchLinked fetches the full detail of each link stub concurrently,
// dropping the ones that fail.
func (e *Engine) fetchLinked(ctx context.Context, links []gitlab.IssueLink) []*gitlab.Issue {
	if len(links) == 0 {
		return nil
	}

	results := make([]*gitlab.Issue, len(links))
	var wg sync.WaitGroup
	for i, link := range links {
		wg.Add(1)
		go func(i int, link gitlab.IssueLink) {
			defer wg.Done()
			issue, err := e.api.GetIssue(ctx, link.ProjectID, link.IID)
			if err != nil {
				e.logger.Warn("skipping linked issue",
					zap.Int("project_id", link.ProjectID),
					zap.Int("iid", link.IID),
					zap.Error(err))
				return
			}
			if issue.ProjectID == 0 {
				issue.ProjectID = link.ProjectID
			}
			results[i] = issue
		}(i, link)
	}
	wg.Wait()

	issues := results[:0:0]
	for _, issue := range results {
		if issue != nil {
			issues = append(issues, issue)
		}
	}
	return issues
}

// applyIssue merges a fresh tracker issue into an existing task in place.
// Identity fields are always overwritten; duration and time spent only when
// the tracker has a non-zero opinion; status and completion date only move
// forward, when the remote issue is closed.
func applyIssue(task *domain.Task, issue *gitlab.Issue, columns []domain.Column) {
	task.Title = issue.Title
	task.Description = issue.Description
	task.Assignee = issue.FirstAssignee()
	task.Labels = issue.Labels
	task.GitlabURL = issue.WebURL
	if issue.Milestone != nil {
		task.Milestone = &domain.Milestone{Title: issue.Milestone.Title, DueDate: issue.Milestone.DueDate}
	} else {
		task.Milestone = nil
	}

	if issue.TimeStats != nil {
		if issue.TimeStats.TimeEstimate > 0 {
			task.Duration = durationDays(issue.TimeStats.TimeEstimate)
		}
		if issue.TimeStats.TotalTimeSpent > 0 {
			task.TimeSpent = issue.TimeStats.TotalTimeSpent
		}
	}

	if issue.IsClosed() {
		if done, ok := domain.DoneColumn(columns); ok {
			task.Status = done.ID
		}
		task.CompletionDate = closedAt(issue)
	}
}

// mergeChildren appends newly discovered child issues that are still absent
// from the board. Orders continue from the post-merge per-column counts.
func mergeChildren(s *board.State, children []childIssue) {
	if len(children) == 0 {
		return
	}
	existing := make(map[string]struct{}, len(s.Tasks))
	for _, t := range s.Tasks {
		existing[t.ID] = struct{}{}
	}

	var incoming []domain.Task
	for _, child := range children {
		task := TaskFromIssue(child.issue, child.issue.ProjectID, child.parentID)
		if _, dup := existing[task.ID]; dup {
			continue
		}
		task.Status = resolveStatus(task.Status, s.Columns)
		incoming = append(incoming, task)
		existing[task.ID] = struct{}{}
	}
	s.Tasks = domain.AppendWithOrders(s.Tasks, incoming)
}

func taskByID(tasks []domain.Task, id string) (int, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			return i, true
		}
	}
	return 0, false
}
