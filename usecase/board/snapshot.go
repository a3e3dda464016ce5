package board

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskboard/backend/domain"
)

// Export returns the full board for the backup file.
func (uc *UseCase) Export(ctx context.Context) (State, error) {
	return uc.Snapshot(ctx)
}

// Import replaces the whole board with the given snapshot. Callers are
// expected to have validated the payload shape and run the legacy order
// migration; missing columns fall back to the default four-lane layout.
func (uc *UseCase) Import(ctx context.Context, snapshot State) error {
	if snapshot.Tasks == nil || snapshot.Labels == nil {
		return domain.ErrInvalidSnapshot
	}
	if len(snapshot.Columns) == 0 {
		snapshot.Columns = domain.DefaultColumns()
	}
	err := uc.Update(ctx, func(s *State) error {
		*s = snapshot
		return nil
	})
	if err == nil {
		uc.logger.Info("imported snapshot",
			zap.Int("tasks", len(snapshot.Tasks)),
			zap.Int("labels", len(snapshot.Labels)),
			zap.Int("columns", len(snapshot.Columns)))
	}
	return err
}
