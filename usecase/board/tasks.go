package board

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskboard/backend/domain"
)

// ErrCyclicParent rejects edits that would make a task its own descendant's child.
var ErrCyclicParent = domain.NewError(domain.ErrCodeInvalid, "task cannot be parented to one of its descendants")

// CreateTaskParams carries the user-editable fields of a new task.
type CreateTaskParams struct {
	Title       string
	Description string
	Assignee    string
	Labels      []string
	ParentID    string
	StartDate   *time.Time
	Duration    int
}

// UpdateTaskParams mirrors CreateTaskParams for in-place edits.
type UpdateTaskParams = CreateTaskParams

// CreateTask lands a new task at the end of the first column.
func (uc *UseCase) CreateTask(ctx context.Context, params CreateTaskParams) (domain.Task, error) {
	var created domain.Task
	err := uc.Update(ctx, func(s *State) error {
		first, ok := domain.FirstColumn(s.Columns)
		if !ok {
			return domain.ErrNoColumns
		}
		created = domain.Task{
			ID:           uuid.NewString(),
			Title:        params.Title,
			Description:  params.Description,
			Status:       first.ID,
			Order:        domain.AppendOrder(s.Tasks, first.ID),
			CreationDate: time.Now().UTC(),
			Assignee:     params.Assignee,
			Labels:       params.Labels,
			ParentID:     params.ParentID,
			StartDate:    params.StartDate,
			Duration:     params.Duration,
		}
		s.Tasks = append(s.Tasks, created)
		return nil
	})
	return created, err
}

// UpdateTask edits the user-facing fields in place. Status, order and
// completion date are not touched here; those go through MoveTask.
func (uc *UseCase) UpdateTask(ctx context.Context, id string, params UpdateTaskParams) (domain.Task, error) {
	var updated domain.Task
	err := uc.Update(ctx, func(s *State) error {
		i, ok := taskByID(s.Tasks, id)
		if !ok {
			return domain.ErrTaskNotFound
		}
		if params.ParentID != "" && params.ParentID != s.Tasks[i].ParentID {
			if params.ParentID == id {
				return ErrCyclicParent
			}
			descendants := domain.DescendantsOf(s.Tasks, id)
			if _, isDescendant := descendants[params.ParentID]; isDescendant {
				return ErrCyclicParent
			}
		}

		task := &s.Tasks[i]
		task.Title = params.Title
		task.Description = params.Description
		task.Assignee = params.Assignee
		task.Labels = params.Labels
		task.ParentID = params.ParentID
		task.StartDate = params.StartDate
		task.Duration = params.Duration
		updated = *task
		return nil
	})
	return updated, err
}

// MoveTask changes a task's column: it always lands at the end of the
// destination. Landing in the completion column stamps the completion date
// if absent; landing anywhere else clears it. Moving to the current column
// is a no-op.
func (uc *UseCase) MoveTask(ctx context.Context, id, columnID string) (domain.Task, error) {
	var moved domain.Task
	err := uc.Update(ctx, func(s *State) error {
		i, ok := taskByID(s.Tasks, id)
		if !ok {
			return domain.ErrTaskNotFound
		}
		if _, ok := domain.ColumnByID(s.Columns, columnID); !ok {
			return domain.ErrColumnNotFound
		}
		task := &s.Tasks[i]
		if task.Status == columnID {
			moved = *task
			return nil
		}

		task.Status = columnID
		task.Order = domain.AppendOrder(s.Tasks, columnID)

		done, _ := domain.DoneColumn(s.Columns)
		if columnID == done.ID {
			if task.CompletionDate == nil {
				now := time.Now().UTC()
				task.CompletionDate = &now
			}
		} else {
			task.CompletionDate = nil
		}
		moved = *task
		return nil
	})
	return moved, err
}

// ReorderTask applies a drag-reorder within a single column.
func (uc *UseCase) ReorderTask(ctx context.Context, draggedID, targetID string) error {
	return uc.Update(ctx, func(s *State) error {
		if _, ok := taskByID(s.Tasks, draggedID); !ok {
			return domain.ErrTaskNotFound
		}
		s.Tasks = domain.ReorderWithinColumn(s.Tasks, draggedID, targetID)
		return nil
	})
}

// DeletePreview returns the number of descendants that would be removed
// along with the task, for the confirmation prompt.
func (uc *UseCase) DeletePreview(ctx context.Context, id string) (int, error) {
	count := 0
	err := uc.View(ctx, func(s State) error {
		if _, ok := taskByID(s.Tasks, id); !ok {
			return domain.ErrTaskNotFound
		}
		count = len(domain.DescendantsOf(s.Tasks, id))
		return nil
	})
	return count, err
}

// DeleteTask removes the task and, transitively, every descendant. Returns
// the number of removed tasks.
func (uc *UseCase) DeleteTask(ctx context.Context, id string) (int, error) {
	removed := 0
	err := uc.Update(ctx, func(s *State) error {
		if _, ok := taskByID(s.Tasks, id); !ok {
			return domain.ErrTaskNotFound
		}
		doomed := domain.DescendantsOf(s.Tasks, id)
		doomed[id] = struct{}{}

		kept := s.Tasks[:0:0]
		for _, t := range s.Tasks {
			if _, gone := doomed[t.ID]; gone {
				continue
			}
			kept = append(kept, t)
		}
		removed = len(s.Tasks) - len(kept)
		s.Tasks = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	uc.logger.Info("deleted task subtree", zap.String("task_id", id), zap.Int("removed", removed))
	return removed, nil
}

// CandidateParents lists every task that may become the parent of id
// without forming a cycle.
func (uc *UseCase) CandidateParents(ctx context.Context, id string) ([]domain.Task, error) {
	var candidates []domain.Task
	err := uc.View(ctx, func(s State) error {
		if _, ok := taskByID(s.Tasks, id); !ok {
			return domain.ErrTaskNotFound
		}
		candidates = domain.CandidateParents(s.Tasks, id)
		return nil
	})
	return candidates, err
}

// TotalTimeSpent aggregates the task's logged seconds over its subtree.
func (uc *UseCase) TotalTimeSpent(ctx context.Context, id string) (int64, error) {
	var total int64
	err := uc.View(ctx, func(s State) error {
		if _, ok := taskByID(s.Tasks, id); !ok {
			return domain.ErrTaskNotFound
		}
		total = domain.TotalTimeSpent(s.Tasks, id)
		return nil
	})
	return total, err
}
