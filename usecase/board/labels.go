package board

import (
	"context"

	"github.com/taskboard/backend/domain"
)

// AddLabel creates a label. Names are unique case-insensitively; an empty
// color takes the next palette entry.
func (uc *UseCase) AddLabel(ctx context.Context, id, color string) (domain.Label, error) {
	var created domain.Label
	err := uc.Update(ctx, func(s *State) error {
		if id == "" {
			return domain.ErrInvalidPayload
		}
		if domain.HasLabel(s.Labels, id) {
			return domain.ErrDuplicateLabel
		}
		if color == "" {
			color = domain.PaletteColor(len(s.Labels))
		}
		created = domain.Label{ID: id, Color: color}
		s.Labels = append(s.Labels, created)
		return nil
	})
	return created, err
}
