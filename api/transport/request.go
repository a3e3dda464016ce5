package transport

import (
	"time"

	"github.com/taskboard/backend/domain"
)

// TaskRequest carries the user-editable task fields for create and update.
type TaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Assignee    string   `json:"assignee"`
	Labels      []string `json:"labels"`
	ParentID    string   `json:"parent_id"`
	StartDate   string   `json:"start_date"`
	Duration    int      `json:"duration"`
}

// ParsedStartDate decodes the optional RFC3339 start date, nil when absent
// or malformed.
func (r TaskRequest) ParsedStartDate() *time.Time {
	if r.StartDate == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, r.StartDate)
	if err != nil {
		return nil
	}
	return &parsed
}

type MoveTaskRequest struct {
	ColumnID string `json:"column_id"`
}

type ReorderTaskRequest struct {
	TargetID string `json:"target_id"`
}

type ColumnRequest struct {
	Title string `json:"title"`
}

type ReorderColumnsRequest struct {
	IDs []string `json:"ids"`
}

type LabelRequest struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

type ImportProjectRequest struct {
	ProjectID int `json:"project_id"`
}

type LoginRequest struct {
	AccessKey string `json:"access_key"`
}

// TaskPayload mirrors domain.Task for backup files, with a nullable order
// so snapshots written before explicit ordering existed can be detected
// and migrated on import.
type TaskPayload struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Status         string            `json:"status"`
	Order          *int              `json:"order"`
	CreationDate   time.Time         `json:"creation_date"`
	Assignee       string            `json:"assignee,omitempty"`
	Labels         []string          `json:"labels,omitempty"`
	StartDate      *time.Time        `json:"start_date,omitempty"`
	Duration       int               `json:"duration,omitempty"`
	TimeSpent      int64             `json:"time_spent,omitempty"`
	CompletionDate *time.Time        `json:"completion_date,omitempty"`
	ParentID       string            `json:"parent_id,omitempty"`
	Milestone      *domain.Milestone `json:"milestone,omitempty"`
	GitlabURL      string            `json:"gitlab_url,omitempty"`
}

// SnapshotPayload is the backup file shape for export and import.
type SnapshotPayload struct {
	Tasks   []TaskPayload   `json:"tasks"`
	Labels  []domain.Label  `json:"labels"`
	Columns []domain.Column `json:"columns"`
}

// Tasks converts the payload tasks to domain tasks and reports whether any
// of them lacked an explicit order.
func (p SnapshotPayload) TaskList() (tasks []domain.Task, missingOrders bool) {
	if p.Tasks == nil {
		return nil, false
	}
	tasks = make([]domain.Task, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		order := 0
		if t.Order != nil {
			order = *t.Order
		} else {
			missingOrders = true
		}
		tasks = append(tasks, domain.Task{
			ID:             t.ID,
			Title:          t.Title,
			Description:    t.Description,
			Status:         t.Status,
			Order:          order,
			CreationDate:   t.CreationDate,
			Assignee:       t.Assignee,
			Labels:         t.Labels,
			StartDate:      t.StartDate,
			Duration:       t.Duration,
			TimeSpent:      t.TimeSpent,
			CompletionDate: t.CompletionDate,
			ParentID:       t.ParentID,
			Milestone:      t.Milestone,
			GitlabURL:      t.GitlabURL,
		})
	}
	return tasks, missingOrders
}
