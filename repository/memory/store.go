// Package memory provides in-memory record sets used as test fixtures and
// as the fallback when no database path is configured.
package memory

import (
	"context"
	"sync"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/repository"
)

// Store keeps the three record sets in process memory.
type Store struct {
	mu      sync.RWMutex
	tasks   []domain.Task
	labels  []domain.Label
	columns []domain.Column
}

func New() *Store {
	return &Store{}
}

// Healthy always reports true; process memory cannot go away.
func (s *Store) Healthy() bool { return true }

func (s *Store) Tasks() repository.TaskStore     { return taskStore{s} }
func (s *Store) Labels() repository.LabelStore   { return labelStore{s} }
func (s *Store) Columns() repository.ColumnStore { return columnStore{s} }

type taskStore struct{ store *Store }

func (ts taskStore) GetAll(ctx context.Context) ([]domain.Task, error) {
	ts.store.mu.RLock()
	defer ts.store.mu.RUnlock()
	return append([]domain.Task(nil), ts.store.tasks...), nil
}

func (ts taskStore) ReplaceAll(ctx context.Context, tasks []domain.Task) error {
	ts.store.mu.Lock()
	defer ts.store.mu.Unlock()
	ts.store.tasks = append([]domain.Task(nil), tasks...)
	return nil
}

type labelStore struct{ store *Store }

func (ls labelStore) GetAll(ctx context.Context) ([]domain.Label, error) {
	ls.store.mu.RLock()
	defer ls.store.mu.RUnlock()
	return append([]domain.Label(nil), ls.store.labels...), nil
}

func (ls labelStore) ReplaceAll(ctx context.Context, labels []domain.Label) error {
	ls.store.mu.Lock()
	defer ls.store.mu.Unlock()
	ls.store.labels = append([]domain.Label(nil), labels...)
	return nil
}

type columnStore struct{ store *Store }

func (cs columnStore) GetAll(ctx context.Context) ([]domain.Column, error) {
	cs.store.mu.RLock()
	defer cs.store.mu.RUnlock()
	return domain.SortColumns(cs.store.columns), nil
}

func (cs columnStore) ReplaceAll(ctx context.Context, columns []domain.Column) error {
	cs.store.mu.Lock()
	defer cs.store.mu.Unlock()
	cs.store.columns = append([]domain.Column(nil), columns...)
	return nil
}
