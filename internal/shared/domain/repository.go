package domain

import "context"

// Repository is the data-access contract shared by every entity type.
// Lookups return a nil entity and a nil error when nothing matches.
type Repository[T Entity] interface {
	GetByID(ctx context.Context, id int) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	Add(ctx context.Context, entity T) error
	AddRange(ctx context.Context, entities []T) error
	Update(ctx context.Context, entity T) error
	Remove(ctx context.Context, entity T) error
	RemoveByID(ctx context.Context, id int) error
	SaveChanges(ctx context.Context) (int64, error)
	GetLastID(ctx context.Context, field string) (int, bool, error)
}
