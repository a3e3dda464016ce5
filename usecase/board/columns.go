package board

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskboard/backend/domain"
)

// AddColumn appends a new lane after the current last one.
func (uc *UseCase) AddColumn(ctx context.Context, title string) (domain.Column, error) {
	var created domain.Column
	err := uc.Update(ctx, func(s *State) error {
		if title == "" {
			return domain.ErrInvalidPayload
		}
		order := 0
		for _, c := range s.Columns {
			if c.Order >= order {
				order = c.Order + 1
			}
		}
		created = domain.Column{ID: uuid.NewString(), Title: title, Order: order}
		s.Columns = append(s.Columns, created)
		return nil
	})
	return created, err
}

// RenameColumn changes a lane's title. Task statuses keep pointing at the
// unchanged column id.
func (uc *UseCase) RenameColumn(ctx context.Context, id, title string) (domain.Column, error) {
	var renamed domain.Column
	err := uc.Update(ctx, func(s *State) error {
		if title == "" {
			return domain.ErrInvalidPayload
		}
		for i := range s.Columns {
			if s.Columns[i].ID == id {
				s.Columns[i].Title = title
				renamed = s.Columns[i]
				return nil
			}
		}
		return domain.ErrColumnNotFound
	})
	return renamed, err
}

// DeleteColumn removes a lane and reassigns its tasks to the first column,
// so no task status is ever left dangling. The last remaining column and
// the first column are protected.
func (uc *UseCase) DeleteColumn(ctx context.Context, id string) error {
	err := uc.Update(ctx, func(s *State) error {
		if len(s.Columns) <= 1 {
			return domain.ErrLastColumn
		}
		first, _ := domain.FirstColumn(s.Columns)
		if first.ID == id {
			return domain.ErrFirstColumn
		}
		if _, ok := domain.ColumnByID(s.Columns, id); !ok {
			return domain.ErrColumnNotFound
		}

		for i := range s.Tasks {
			if s.Tasks[i].Status == id {
				s.Tasks[i].Status = first.ID
			}
		}
		kept := s.Columns[:0:0]
		for _, c := range s.Columns {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		s.Columns = kept
		return nil
	})
	if err == nil {
		uc.logger.Info("deleted column", zap.String("column_id", id))
	}
	return err
}

// ReorderColumns applies the given id sequence as the new lane order.
func (uc *UseCase) ReorderColumns(ctx context.Context, ids []string) ([]domain.Column, error) {
	var reordered []domain.Column
	err := uc.Update(ctx, func(s *State) error {
		if len(ids) != len(s.Columns) {
			return domain.ErrInvalidPayload
		}
		byID := make(map[string]domain.Column, len(s.Columns))
		for _, c := range s.Columns {
			byID[c.ID] = c
		}
		next := make([]domain.Column, 0, len(ids))
		for i, id := range ids {
			c, ok := byID[id]
			if !ok {
				return domain.ErrColumnNotFound
			}
			c.Order = i
			next = append(next, c)
			delete(byID, id)
		}
		s.Columns = next
		reordered = next
		return nil
	})
	return reordered, err
}
