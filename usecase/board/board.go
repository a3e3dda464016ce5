// Package board owns the kanban state. Every read and every
// read-compute-replace cycle runs under one mutex, so the whole-snapshot
// persistence model stays free of lost updates in a multi-goroutine server.
package board

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/repository"
)

// State is the full board: the task forest plus labels and columns.
type State struct {
	Tasks   []domain.Task
	Labels  []domain.Label
	Columns []domain.Column
}

// UseCase is the single writer over the three record sets.
type UseCase struct {
	tasks   repository.TaskStore
	labels  repository.LabelStore
	columns repository.ColumnStore
	logger  *zap.Logger

	mu sync.Mutex
}

func New(tasks repository.TaskStore, labels repository.LabelStore, columns repository.ColumnStore, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:   tasks,
		labels:  labels,
		columns: columns,
		logger:  logger,
	}
}

// Init seeds default columns and labels on first run.
func (uc *UseCase) Init(ctx context.Context) error {
	return uc.Update(ctx, func(s *State) error {
		if len(s.Columns) == 0 {
			s.Columns = domain.DefaultColumns()
			uc.logger.Info("seeded default columns", zap.Int("count", len(s.Columns)))
		}
		if len(s.Labels) == 0 {
			s.Labels = domain.DefaultLabels()
		}
		return nil
	})
}

// View runs fn with a consistent read of the board.
func (uc *UseCase) View(ctx context.Context, fn func(State) error) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	state, err := uc.load(ctx)
	if err != nil {
		return err
	}
	return fn(state)
}

// Update runs fn against the current board and persists the result as one
// whole-collection replace per record set. When fn returns an error the
// stores are left untouched.
func (uc *UseCase) Update(ctx context.Context, fn func(*State) error) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	state, err := uc.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&state); err != nil {
		return err
	}
	return uc.persist(ctx, state)
}

// Snapshot returns a copy of the full board.
func (uc *UseCase) Snapshot(ctx context.Context) (State, error) {
	var snapshot State
	err := uc.View(ctx, func(s State) error {
		snapshot = s
		return nil
	})
	return snapshot, err
}

func (uc *UseCase) load(ctx context.Context) (State, error) {
	tasks, err := uc.tasks.GetAll(ctx)
	if err != nil {
		return State{}, err
	}
	labels, err := uc.labels.GetAll(ctx)
	if err != nil {
		return State{}, err
	}
	columns, err := uc.columns.GetAll(ctx)
	if err != nil {
		return State{}, err
	}
	return State{Tasks: tasks, Labels: labels, Columns: columns}, nil
}

func (uc *UseCase) persist(ctx context.Context, state State) error {
	if err := uc.tasks.ReplaceAll(ctx, state.Tasks); err != nil {
		return err
	}
	if err := uc.labels.ReplaceAll(ctx, state.Labels); err != nil {
		return err
	}
	return uc.columns.ReplaceAll(ctx, state.Columns)
}

func taskByID(tasks []domain.Task, id string) (int, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			return i, true
		}
	}
	return 0, false
}
