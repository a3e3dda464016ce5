// Package sync merges tracker state into the local task forest: bulk
// import, single-task sync and concurrent bulk sync. All operations are
// idempotent and never delete tasks.
package sync

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/internal/gitlab"
)

// Placeholder statuses assigned by the mapper. The engine translates them
// into real column ids; the mapper never sees the column configuration.
const (
	PlaceholderDone = "placeholder:done"
	PlaceholderTodo = "placeholder:todo"
)

// An 8-hour workday converts tracker estimates (seconds) to duration days.
const secondsPerWorkday = 3600 * 8

var taskIDPattern = regexp.MustCompile(`^gitlab-(\d+)-(\d+)$`)

// TaskID derives the deterministic task id for a tracker issue. The same
// project and issue number always map to the same id, which is what lets
// re-import and sync recognize an already-known task.
func TaskID(projectID, iid int) string {
	return fmt.Sprintf("%s%d-%d", domain.TrackerIDPrefix, projectID, iid)
}

// ParseTaskID recovers the project and issue number from a tracker task id.
func ParseTaskID(id string) (projectID, iid int, ok bool) {
	match := taskIDPattern.FindStringSubmatch(id)
	if match == nil {
		return 0, 0, false
	}
	projectID, _ = strconv.Atoi(match[1])
	iid, _ = strconv.Atoi(match[2])
	return projectID, iid, true
}

// TaskFromIssue maps a tracker issue onto a new task. Status is a
// placeholder, order is provisional, and the start date is deliberately
// left unset for the user; the tracker has no equivalent concept.
func TaskFromIssue(issue *gitlab.Issue, projectID int, parentID string) domain.Task {
	task := domain.Task{
		ID:           TaskID(projectID, issue.IID),
		Title:        issue.Title,
		Description:  issue.Description,
		Status:       PlaceholderTodo,
		CreationDate: issue.CreatedAt,
		Assignee:     issue.FirstAssignee(),
		Labels:       issue.Labels,
		ParentID:     parentID,
		GitlabURL:    issue.WebURL,
	}

	if issue.IsClosed() {
		task.Status = PlaceholderDone
		task.CompletionDate = closedAt(issue)
	}

	if issue.TimeStats != nil {
		if issue.TimeStats.TimeEstimate > 0 {
			task.Duration = durationDays(issue.TimeStats.TimeEstimate)
		}
		task.TimeSpent = issue.TimeStats.TotalTimeSpent
	}

	if issue.Milestone != nil {
		task.Milestone = &domain.Milestone{Title: issue.Milestone.Title, DueDate: issue.Milestone.DueDate}
	}

	return task
}

// durationDays ceiling-divides an estimate in seconds into workdays.
func durationDays(estimateSeconds int64) int {
	return int((estimateSeconds + secondsPerWorkday - 1) / secondsPerWorkday)
}

func closedAt(issue *gitlab.Issue) *time.Time {
	if issue.ClosedAt != nil {
		return issue.ClosedAt
	}
	now := time.Now().UTC()
	return &now
}

// resolveStatus translates a mapper placeholder into a real column id:
// done goes to the completion column (per the done-name heuristic), all
// else lands in the first column.
func resolveStatus(placeholder string, columns []domain.Column) string {
	first, ok := domain.FirstColumn(columns)
	if !ok {
		return placeholder
	}
	if placeholder == PlaceholderDone {
		if done, ok := domain.DoneColumn(columns); ok {
			return done.ID
		}
	}
	return first.ID
}
