package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/repository"
)

var (
	bucketTasks   = []byte("tasks")
	bucketLabels  = []byte("labels")
	bucketColumns = []byte("columns")
)

// Store wraps a BoltDB file holding the three board record sets. Each
// ReplaceAll drops and rewrites its bucket inside a single transaction, so a
// crashed write leaves either the old or the new snapshot, never a mix.
type Store struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketTasks, bucketLabels, bucketColumns} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

// Healthy reports whether the database file is open and readable.
func (s *Store) Healthy() bool {
	if s == nil || s.db == nil {
		return false
	}
	return s.db.View(func(tx *bolt.Tx) error { return nil }) == nil
}

func (s *Store) getAll(bucket []byte, collect func(v []byte) error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(_, v []byte) error {
			return collect(v)
		})
	})
}

func (s *Store) replaceAll(bucket []byte, entries map[string][]byte) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucket); err != nil {
			return err
		}
		b, err := tx.CreateBucket(bucket)
		if err != nil {
			return err
		}
		for key, payload := range entries {
			if err := b.Put([]byte(key), payload); err != nil {
				return err
			}
		}
		return nil
	})
}

// Tasks returns the task record set.
func (s *Store) Tasks() repository.TaskStore { return taskStore{s} }

// Labels returns the label record set.
func (s *Store) Labels() repository.LabelStore { return labelStore{s} }

// Columns returns the column record set.
func (s *Store) Columns() repository.ColumnStore { return columnStore{s} }

type taskStore struct{ store *Store }

func (ts taskStore) GetAll(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := ts.store.getAll(bucketTasks, func(v []byte) error {
		var task domain.Task
		if err := json.Unmarshal(v, &task); err != nil {
			return err
		}
		tasks = append(tasks, task)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Bucket iteration is keyed by id; restore a stable presentation order.
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Status != tasks[j].Status {
			return tasks[i].Status < tasks[j].Status
		}
		return tasks[i].Order < tasks[j].Order
	})
	return tasks, nil
}

func (ts taskStore) ReplaceAll(ctx context.Context, tasks []domain.Task) error {
	entries := make(map[string][]byte, len(tasks))
	for _, task := range tasks {
		payload, err := json.Marshal(task)
		if err != nil {
			return err
		}
		entries[task.ID] = payload
	}
	return ts.store.replaceAll(bucketTasks, entries)
}

type labelStore struct{ store *Store }

func (ls labelStore) GetAll(ctx context.Context) ([]domain.Label, error) {
	var labels []domain.Label
	err := ls.store.getAll(bucketLabels, func(v []byte) error {
		var label domain.Label
		if err := json.Unmarshal(v, &label); err != nil {
			return err
		}
		labels = append(labels, label)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return labels, nil
}

func (ls labelStore) ReplaceAll(ctx context.Context, labels []domain.Label) error {
	entries := make(map[string][]byte, len(labels))
	for _, label := range labels {
		payload, err := json.Marshal(label)
		if err != nil {
			return err
		}
		entries[label.ID] = payload
	}
	return ls.store.replaceAll(bucketLabels, entries)
}

type columnStore struct{ store *Store }

func (cs columnStore) GetAll(ctx context.Context) ([]domain.Column, error) {
	var columns []domain.Column
	err := cs.store.getAll(bucketColumns, func(v []byte) error {
		var column domain.Column
		if err := json.Unmarshal(v, &column); err != nil {
			return err
		}
		columns = append(columns, column)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return domain.SortColumns(columns), nil
}

func (cs columnStore) ReplaceAll(ctx context.Context, columns []domain.Column) error {
	entries := make(map[string][]byte, len(columns))
	for _, column := range columns {
		payload, err := json.Marshal(column)
		if err != nil {
			return err
		}
		entries[column.ID] = payload
	}
	return cs.store.replaceAll(bucketColumns, entries)
}
