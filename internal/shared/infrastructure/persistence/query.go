package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
)

// EntityPtr constrains P to be a pointer to E implementing domain.Entity.
type EntityPtr[E any] interface {
	*E
	domain.Entity
}

// Query is a lazy, composable read over one entity type. Nothing runs until
// List, First, Count or Each is called, and every builder method returns a
// new Query, so a Query can be reused and re-executed.
type Query[E any, P EntityPtr[E]] struct {
	pc     *Context
	scopes []Scope
	opts   queryOptions
}

func newQuery[E any, P EntityPtr[E]](pc *Context, opts queryOptions) *Query[E, P] {
	return &Query[E, P]{pc: pc, opts: opts}
}

func (q *Query[E, P]) with(s Scope) *Query[E, P] {
	next := *q
	next.scopes = append(append([]Scope(nil), q.scopes...), s)
	return &next
}

// Where adds a filter.
func (q *Query[E, P]) Where(query any, args ...any) *Query[E, P] {
	return q.with(Where(query, args...))
}

// Scopes adds arbitrary scopes.
func (q *Query[E, P]) Scopes(scopes ...Scope) *Query[E, P] {
	next := q
	for _, s := range scopes {
		if s != nil {
			next = next.with(s)
		}
	}
	return next
}

// Order adds a sort clause such as "name" or "id desc".
func (q *Query[E, P]) Order(value any) *Query[E, P] {
	return q.with(OrderBy(value))
}

// Limit caps the number of rows.
func (q *Query[E, P]) Limit(n int) *Query[E, P] {
	return q.with(func(db *gorm.DB) *gorm.DB { return db.Limit(n) })
}

// Offset skips rows.
func (q *Query[E, P]) Offset(n int) *Query[E, P] {
	return q.with(func(db *gorm.DB) *gorm.DB { return db.Offset(n) })
}

// Include eager-loads more navigation relationships.
func (q *Query[E, P]) Include(names ...string) *Query[E, P] {
	next := *q
	next.opts.includes = append(append([]string(nil), q.opts.includes...), names...)
	return &next
}

// Tracked makes the results tracked.
func (q *Query[E, P]) Tracked() *Query[E, P] {
	next := *q
	next.opts.tracked = true
	return &next
}

func (q *Query[E, P]) build(ctx context.Context) *gorm.DB {
	db := q.pc.conn(ctx).Model(P(new(E)))
	for _, name := range q.opts.includes {
		db = db.Preload(name)
	}
	for _, s := range q.scopes {
		db = s(db)
	}
	return db
}

// List returns all matching rows.
func (q *Query[E, P]) List(ctx context.Context) ([]P, error) {
	var out []P
	if err := q.build(ctx).Find(&out).Error; err != nil {
		return nil, q.fail("list", err)
	}
	if out == nil {
		out = []P{}
	}
	return q.resolve(ctx, out), nil
}

// First returns the first matching row, or nil when there is none.
func (q *Query[E, P]) First(ctx context.Context) (P, error) {
	var out []P
	if err := q.build(ctx).Limit(1).Find(&out).Error; err != nil {
		return nil, q.fail("first", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return q.resolve(ctx, out)[0], nil
}

// Count returns the number of matching rows.
func (q *Query[E, P]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := q.build(ctx).Count(&n).Error; err != nil {
		return 0, q.fail("count", err)
	}
	return n, nil
}

// Each streams matching rows in batches of size, calling fn for every row.
// Returning an error from fn stops the iteration.
func (q *Query[E, P]) Each(ctx context.Context, size int, fn func(P) error) error {
	if size <= 0 {
		size = 100
	}

	var batch []P
	var fnErr error
	res := q.build(ctx).FindInBatches(&batch, size, func(_ *gorm.DB, _ int) error {
		for _, e := range q.resolve(ctx, batch) {
			if err := fn(e); err != nil {
				fnErr = err
				return err
			}
		}
		return nil
	})
	if fnErr != nil {
		return fnErr
	}
	if res.Error != nil {
		return q.fail("each", res.Error)
	}
	return nil
}

// resolve maps rows onto tracked instances when the query is tracked.
func (q *Query[E, P]) resolve(ctx context.Context, rows []P) []P {
	if !q.opts.tracked {
		return rows
	}
	for i, e := range rows {
		if canonical, ok := q.pc.attach(ctx, e).(P); ok {
			rows[i] = canonical
		}
	}
	return rows
}

func (q *Query[E, P]) fail(op string, err error) error {
	name := P(new(E)).EntityName()
	return domain.NewDataAccessError(op, name, fmt.Sprintf("failed to query %s", name), classify(err))
}
