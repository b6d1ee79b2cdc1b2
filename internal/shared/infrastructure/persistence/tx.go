package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// txScope is an outer transaction opened by Context.Transaction. Commits
// made inside it defer their bookkeeping until the outer commit succeeds,
// and are undone in memory when it rolls back.
type txScope struct {
	tx          *gorm.DB
	owner       *Context
	afterCommit []func()
	onRollback  []func()
}

func withTx(ctx context.Context, s *txScope) context.Context {
	return context.WithValue(ctx, txKey{}, s)
}

func txFromContext(ctx context.Context) (*txScope, bool) {
	s, ok := ctx.Value(txKey{}).(*txScope)
	if !ok || s.tx == nil {
		return nil, false
	}
	return s, true
}

// InTransaction reports whether ctx carries an open transaction.
func InTransaction(ctx context.Context) bool {
	_, ok := txFromContext(ctx)
	return ok
}

// Transaction runs fn inside one database transaction. Every SaveChanges
// called with the context passed to fn joins it, and change events are
// published only once the transaction commits. A nested call joins the
// outer transaction.
func (c *Context) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s, ok := txFromContext(ctx); ok && s.owner == c {
		return fn(ctx)
	}

	scope := &txScope{owner: c}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope.tx = tx
		return fn(withTx(ctx, scope))
	})
	// The context handed to fn may outlive the transaction; it must not
	// resolve to the finished one.
	scope.tx = nil
	if err != nil {
		for i := len(scope.onRollback) - 1; i >= 0; i-- {
			scope.onRollback[i]()
		}
		return err
	}

	for _, f := range scope.afterCommit {
		f()
	}
	return nil
}

// conn returns the session for ctx: the open transaction when there is one,
// otherwise the shared handle.
func (c *Context) conn(ctx context.Context) *gorm.DB {
	if s, ok := txFromContext(ctx); ok && s.owner == c {
		return s.tx.WithContext(ctx)
	}
	return c.db.WithContext(ctx)
}
