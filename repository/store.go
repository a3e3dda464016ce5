package repository

import (
	"context"

	"github.com/taskboard/backend/domain"
)

// TaskStore persists the whole task collection. The board only ever reads
// and writes complete snapshots; there are no per-record patches.
type TaskStore interface {
	GetAll(ctx context.Context) ([]domain.Task, error)
	ReplaceAll(ctx context.Context, tasks []domain.Task) error
}

// LabelStore persists the whole label collection.
type LabelStore interface {
	GetAll(ctx context.Context) ([]domain.Label, error)
	ReplaceAll(ctx context.Context, labels []domain.Label) error
}

// ColumnStore persists the whole column collection.
type ColumnStore interface {
	GetAll(ctx context.Context) ([]domain.Column, error)
	ReplaceAll(ctx context.Context, columns []domain.Column) error
}
