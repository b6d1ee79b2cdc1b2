package mvvm

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
)

// ErrLoadFailed is returned by GetAll when the store could not be read.
var ErrLoadFailed = errors.New("could not load records from the database")

// GetAll returns every entity of repo. Unlike the other helpers it does not
// notify: on failure it returns an empty, non-nil slice together with an
// error wrapping ErrLoadFailed and the cause, and callers must handle both.
func GetAll[T domain.Entity](ctx context.Context, b *Base, repo domain.Repository[T]) ([]T, error) {
	items, err := repo.GetAll(ctx)
	if err != nil {
		b.logger().WarnContext(ctx, "failed to load records", "entity_type", entityName(repo), "error", err)
		return []T{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return items, nil
}

// GetByID returns the entity with id. A failure is notified and reported
// as false; a missing entity is the zero value with true.
func GetByID[T domain.Entity](ctx context.Context, b *Base, repo domain.Repository[T], id int) (T, bool) {
	e, err := repo.GetByID(ctx, id)
	if err != nil {
		Notifyf(b, "Could not load %s %d: %s", entityName(repo), id, Describe(err))
		var zero T
		return zero, false
	}
	return e, true
}

// Add inserts entity and reports success. Failures are notified.
func Add[T domain.Entity](ctx context.Context, b *Base, repo domain.Repository[T], entity T) bool {
	if err := repo.Add(ctx, entity); err != nil {
		Notifyf(b, "Could not add %s: %s", entityName(repo), Describe(err))
		return false
	}
	return true
}

// Update saves entity and reports success. Failures are notified.
func Update[T domain.Entity](ctx context.Context, b *Base, repo domain.Repository[T], entity T) bool {
	if err := repo.Update(ctx, entity); err != nil {
		Notifyf(b, "Could not update %s: %s", entityName(repo), Describe(err))
		return false
	}
	return true
}

// Delete removes the entity with id and reports success. Removing a
// missing entity succeeds.
func Delete[T domain.Entity](ctx context.Context, b *Base, repo domain.Repository[T], id int) bool {
	if err := repo.RemoveByID(ctx, id); err != nil {
		Notifyf(b, "Could not delete %s %d: %s", entityName(repo), id, Describe(err))
		return false
	}
	return true
}

// AddOrUpdate inserts entity when its identifier is zero. Otherwise the
// store is asked whether it exists: a missing row is inserted with the
// given identifier, an existing one is updated.
func AddOrUpdate[T domain.Entity](ctx context.Context, b *Base, repo domain.Repository[T], entity T) bool {
	name := entityName(repo)
	if isNil(entity) {
		Notifyf(b, "Could not save %s: nothing to save", name)
		return false
	}

	id := entity.EntityID()
	if id == 0 {
		return save(ctx, b, name, repo.Add(ctx, entity))
	}

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return save(ctx, b, name, err)
	}
	if isNil(existing) {
		return save(ctx, b, name, repo.Add(ctx, entity))
	}
	return save(ctx, b, name, repo.Update(ctx, entity))
}

func save(ctx context.Context, b *Base, name string, err error) bool {
	if err != nil {
		b.logger().DebugContext(ctx, "save failed", "entity_type", name, "error", err)
		Notifyf(b, "Could not save %s: %s", name, Describe(err))
		return false
	}
	return true
}

// Describe turns a data-access failure into a message for the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "it was changed or removed by someone else, reload and try again"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "the database is unavailable, try again later"
	case errors.Is(err, domain.ErrConstraintViolation):
		return "the database rejected the change (duplicate or still referenced)"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "the operation was cancelled"
	}
	var dae *domain.DataAccessError
	if errors.As(err, &dae) {
		return dae.Message
	}
	return err.Error()
}

func entityName(repo any) string {
	if named, ok := repo.(interface{ EntityName() string }); ok {
		return named.EntityName()
	}
	return "record"
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
