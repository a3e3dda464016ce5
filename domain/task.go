package domain

import (
	"strings"
	"time"
)

// Milestone mirrors the tracker milestone attached to a task.
type Milestone struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date,omitempty"`
}

// Task is the central board entity. Tasks form a forest through ParentID;
// Status references a Column id and Order positions the task inside that
// column. Duration (days) and TimeSpent (seconds) use zero to mean "not set".
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Order          int        `json:"order"`
	CreationDate   time.Time  `json:"creation_date"`
	Assignee       string     `json:"assignee,omitempty"`
	Labels         []string   `json:"labels,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	Duration       int        `json:"duration,omitempty"`
	TimeSpent      int64      `json:"time_spent,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	ParentID       string     `json:"parent_id,omitempty"`
	Milestone      *Milestone `json:"milestone,omitempty"`
	GitlabURL      string     `json:"gitlab_url,omitempty"`
}

// TrackerIDPrefix marks task ids derived from tracker issues.
const TrackerIDPrefix = "gitlab-"

// IsTrackerSourced reports whether the task was imported from the tracker
// and is therefore eligible for sync. The provenance URL is the signal.
func (t *Task) IsTrackerSourced() bool {
	return t != nil && t.GitlabURL != "" && strings.HasPrefix(t.ID, TrackerIDPrefix)
}

func (t *Task) IsRoot() bool {
	return t != nil && t.ParentID == ""
}
