package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm/clause"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
)

// Repository implements domain.Repository for one entity type on top of a
// shared Context. Mutations stage the change and commit it immediately;
// failures are logged with the entity type and returned as
// *domain.DataAccessError.
type Repository[E any, P EntityPtr[E]] struct {
	pc     *Context
	name   string
	logger *slog.Logger
}

// NewRepository creates a repository bound to E.
func NewRepository[E any, P EntityPtr[E]](pc *Context, logger *slog.Logger) *Repository[E, P] {
	if logger == nil {
		logger = slog.Default()
	}
	name := P(new(E)).EntityName()
	return &Repository[E, P]{
		pc:     pc,
		name:   name,
		logger: logger.With("entity_type", name),
	}
}

// Context returns the unit of work the repository writes through.
func (r *Repository[E, P]) Context() *Context { return r.pc }

// EntityName returns the bound entity type name.
func (r *Repository[E, P]) EntityName() string { return r.name }

// Query starts a lazy query. Results are untracked unless Tracked is given.
func (r *Repository[E, P]) Query(opts ...QueryOption) *Query[E, P] {
	return newQuery[E, P](r.pc, buildOptions(opts))
}

// GetByID returns the entity with id, or nil when there is none. A tracked
// instance is returned without querying the store.
func (r *Repository[E, P]) GetByID(ctx context.Context, id int) (P, error) {
	if tracked, ok := r.pc.lookup(r.name, id); ok {
		if e, ok := tracked.(P); ok {
			return e, nil
		}
	}

	e, err := r.Query(Tracked()).Where(clause.Eq{Column: clause.PrimaryColumn, Value: id}).First(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to get entity", "id", id, "error", err)
		return nil, err
	}
	return e, nil
}

// FirstOrDefault returns the first entity matching where, or nil.
func (r *Repository[E, P]) FirstOrDefault(ctx context.Context, where Scope, opts ...QueryOption) (P, error) {
	if where == nil {
		return nil, domain.InvalidArgument("first", r.name, "predicate is nil")
	}
	return r.Query(opts...).Scopes(where).First(ctx)
}

// GetAll returns every entity, tracked.
func (r *Repository[E, P]) GetAll(ctx context.Context) ([]P, error) {
	return r.Query(Tracked()).List(ctx)
}

// Find returns every entity matching where.
func (r *Repository[E, P]) Find(ctx context.Context, where Scope, opts ...QueryOption) ([]P, error) {
	if where == nil {
		return nil, domain.InvalidArgument("find", r.name, "predicate is nil")
	}
	return r.Query(opts...).Scopes(where).List(ctx)
}

// Add inserts entity.
func (r *Repository[E, P]) Add(ctx context.Context, entity P) error {
	if entity == nil {
		return domain.InvalidArgument("add", r.name, "entity is nil")
	}

	r.pc.StageAdd(entity)
	if _, err := r.pc.SaveChanges(ctx); err != nil {
		r.logger.ErrorContext(ctx, "failed to add entity", "error", err)
		return r.wrap("add", entity, fmt.Sprintf("failed to add %s", r.name), err)
	}

	r.logger.InfoContext(ctx, "entity added", "id", entity.EntityID())
	return nil
}

// AddRange inserts entities in one transaction.
func (r *Repository[E, P]) AddRange(ctx context.Context, entities []P) error {
	for _, e := range entities {
		if e == nil {
			return domain.InvalidArgument("add range", r.name, "entity is nil")
		}
	}
	if len(entities) == 0 {
		return nil
	}

	for _, e := range entities {
		r.pc.StageAdd(e)
	}
	if _, err := r.pc.SaveChanges(ctx); err != nil {
		r.logger.ErrorContext(ctx, "failed to add entities", "count", len(entities), "error", err)
		return domain.NewDataAccessError("add range", r.name,
			fmt.Sprintf("failed to add %d %s entities", len(entities), r.name), err)
	}

	r.logger.InfoContext(ctx, "entities added", "count", len(entities))
	return nil
}

// Update persists every column of entity.
func (r *Repository[E, P]) Update(ctx context.Context, entity P) error {
	if entity == nil {
		return domain.InvalidArgument("update", r.name, "entity is nil")
	}
	if entity.EntityID() == 0 {
		return domain.InvalidArgument("update", r.name, "entity has no identifier")
	}

	r.pc.StageUpdate(entity)
	if _, err := r.pc.SaveChanges(ctx); err != nil {
		r.logger.ErrorContext(ctx, "failed to update entity", "id", entity.EntityID(), "error", err)
		return r.wrap("update", entity, fmt.Sprintf("failed to update %s %d", r.name, entity.EntityID()), err)
	}

	r.logger.InfoContext(ctx, "entity updated", "id", entity.EntityID())
	return nil
}

// Remove deletes entity.
func (r *Repository[E, P]) Remove(ctx context.Context, entity P) error {
	if entity == nil {
		return domain.InvalidArgument("remove", r.name, "entity is nil")
	}
	if entity.EntityID() == 0 {
		return domain.InvalidArgument("remove", r.name, "entity has no identifier")
	}

	r.pc.StageRemove(entity)
	if _, err := r.pc.SaveChanges(ctx); err != nil {
		r.logger.ErrorContext(ctx, "failed to remove entity", "id", entity.EntityID(), "error", err)
		return r.wrap("remove", entity, fmt.Sprintf("failed to remove %s %d", r.name, entity.EntityID()), err)
	}

	r.logger.InfoContext(ctx, "entity removed", "id", entity.EntityID())
	return nil
}

// RemoveByID deletes the entity with id. A missing entity is only a warning.
func (r *Repository[E, P]) RemoveByID(ctx context.Context, id int) error {
	entity, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if entity == nil {
		r.logger.WarnContext(ctx, "entity to remove not found", "id", id)
		return nil
	}
	return r.Remove(ctx, entity)
}

// SaveChanges commits everything pending in the shared context.
func (r *Repository[E, P]) SaveChanges(ctx context.Context) (int64, error) {
	n, err := r.pc.SaveChanges(ctx)
	if err == nil {
		return n, nil
	}

	var msg string
	switch {
	case isConflict(err):
		msg = "changes conflict with a concurrent modification"
		r.logger.ErrorContext(ctx, "concurrency conflict while saving changes", "error", err)
	case isConstraint(err):
		msg = "changes were rejected by the database"
		r.logger.ErrorContext(ctx, "database rejected changes", "error", err)
	default:
		msg = "unexpected error while saving changes"
		r.logger.ErrorContext(ctx, "unexpected error while saving changes", "error", err)
	}
	return 0, domain.NewDataAccessError("save", r.name, msg, err)
}

// GetLastID returns the greatest value of the integer field, and false when
// the table is empty. field may be a Go field name or a column name.
func (r *Repository[E, P]) GetLastID(ctx context.Context, field string) (int, bool, error) {
	sch, err := r.pc.schemaOf(P(new(E)))
	if err != nil {
		return 0, false, domain.NewDataAccessError("last id", r.name, "failed to read entity schema", err)
	}
	f := sch.LookUpField(field)
	if f == nil || f.DBName == "" {
		return 0, false, domain.InvalidArgument("last id", r.name, fmt.Sprintf("unknown field %q", field))
	}

	var result struct{ LastID sql.NullInt64 }
	err = r.pc.conn(ctx).Model(P(new(E))).
		Select("MAX(?) AS last_id", clause.Column{Name: f.DBName}).
		Scan(&result).Error
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to read last id", "field", field, "error", err)
		return 0, false, domain.NewDataAccessError("last id", r.name,
			fmt.Sprintf("failed to read last %s of %s", field, r.name), classify(err))
	}
	if !result.LastID.Valid {
		return 0, false, nil
	}
	return int(result.LastID.Int64), true, nil
}

func (r *Repository[E, P]) wrap(op string, entity P, msg string, err error) error {
	dae := domain.NewDataAccessError(op, r.name, msg, err)
	dae.ID = entity.EntityID()
	return dae
}

func isConflict(err error) bool   { return errors.Is(err, domain.ErrConcurrencyConflict) }
func isConstraint(err error) bool { return errors.Is(err, domain.ErrConstraintViolation) }
