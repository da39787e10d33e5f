package history

import "context"

// Repository хранит историю запусков правил
type Repository interface {
	Save(ctx context.Context, run *Run) (int64, error)
	List(ctx context.Context, filter Filter) ([]Run, error)
}
