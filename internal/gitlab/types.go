package gitlab

import (
	"fmt"
	"time"
)

const (
	StateOpened = "opened"
	StateClosed = "closed"
)

// Assignee is the subset of the tracker user record the board consumes.
type Assignee struct {
	Name string `json:"name"`
}

// TimeStats carries the tracker's time-tracking numbers, both in seconds.
// Zero means "not set" on the tracker side.
type TimeStats struct {
	TimeEstimate   int64 `json:"time_estimate"`
	TotalTimeSpent int64 `json:"total_time_spent"`
}

// Milestone is the tracker milestone stub.
type Milestone struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
}

// Issue is the typed decode of a tracker issue payload. Fields the board
// never reads are dropped at the boundary.
type Issue struct {
	IID         int        `json:"iid"`
	ProjectID   int        `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	State       string     `json:"state"`
	WebURL      string     `json:"web_url"`
	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at"`
	Assignees   []Assignee `json:"assignees"`
	Labels      []string   `json:"labels"`
	TimeStats   *TimeStats `json:"time_stats"`
	Milestone   *Milestone `json:"milestone"`
}

// Validate rejects payloads that cannot identify an issue and defaults
// fields the rest of the pipeline relies on.
func (i *Issue) Validate() error {
	if i == nil {
		return fmt.Errorf("nil issue payload")
	}
	if i.IID <= 0 {
		return fmt.Errorf("issue payload missing iid")
	}
	if i.State != StateClosed {
		i.State = StateOpened
	}
	return nil
}

// IsClosed reports whether the tracker considers the issue done.
func (i *Issue) IsClosed() bool {
	return i != nil && i.State == StateClosed
}

// FirstAssignee returns the first assignee's name, or empty.
func (i *Issue) FirstAssignee() string {
	if i == nil || len(i.Assignees) == 0 {
		return ""
	}
	return i.Assignees[0].Name
}

// IssueLink is the minimal stub returned by the links endpoint. The target
// must be re-fetched for full detail.
type IssueLink struct {
	ProjectID int `json:"project_id"`
	IID       int `json:"iid"`
}
