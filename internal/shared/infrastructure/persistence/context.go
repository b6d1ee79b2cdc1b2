package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/database"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/eventbus"
	"github.com/stockroom-app/stockroom/pkg/observability"
)

// BreakerConfig configures the circuit breaker around commits.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive store failures that opens the circuit.
	FailureThreshold uint32
	// Timeout is how long the circuit stays open before a trial commit.
	Timeout time.Duration
	// MaxRequests is the number of trial commits allowed while half-open.
	MaxRequests uint32
}

// DefaultBreakerConfig returns the breaker defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, Timeout: 30 * time.Second, MaxRequests: 1}
}

// Config configures a Context.
type Config struct {
	// Publisher receives one event per committed mutation. Nil disables events.
	Publisher eventbus.Publisher
	Breaker   BreakerConfig
}

type op struct {
	kind   domain.ChangeKind
	entity domain.Entity

	// restored if the commit fails
	prevVersion int
	bumped      bool
	assignedID  bool
}

// Context is the unit of work every repository of a session shares. It
// stages mutations, tracks loaded entities by identity and commits
// everything pending in one transaction.
//
// A Context serves one consumer at a time. The mutex guards bookkeeping
// only; it does not make interleaved units of work meaningful.
type Context struct {
	db        *gorm.DB
	logger    *slog.Logger
	publisher eventbus.Publisher
	breaker   *gobreaker.CircuitBreaker[int64]

	mu      sync.Mutex
	pending []op
	tracked map[entityKey]*entry
}

// NewContext creates a Context over an ORM handle.
func NewContext(db *gorm.DB, cfg Config, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Breaker.FailureThreshold == 0 {
		cfg.Breaker = DefaultBreakerConfig()
	}

	c := &Context{
		db:        db,
		logger:    logger,
		publisher: cfg.Publisher,
		tracked:   make(map[entityKey]*entry),
	}
	c.breaker = gobreaker.NewCircuitBreaker[int64](gobreaker.Settings{
		Name:        "store",
		MaxRequests: cfg.Breaker.MaxRequests,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Breaker.FailureThreshold
		},
		IsSuccessful: isHealthyOutcome,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return c
}

// Conflicts, constraint violations and cancellations say nothing about the
// health of the store.
func isHealthyOutcome(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrConcurrencyConflict) ||
		errors.Is(err, domain.ErrInvalidArgument) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		database.IsConstraintViolation(err)
}

// BreakerState returns the state of the commit circuit breaker
// ("closed", "half-open" or "open").
func (c *Context) BreakerState() string {
	return c.breaker.State().String()
}

// DB returns the session for ctx, joining an open transaction.
func (c *Context) DB(ctx context.Context) *gorm.DB {
	return c.conn(ctx)
}

// StageAdd records an insert.
func (c *Context) StageAdd(e domain.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, o := range c.pending {
		if o.entity == e {
			return
		}
	}
	c.pending = append(c.pending, op{kind: domain.ChangeAdded, entity: e})
}

// StageUpdate marks every column of e as modified. Staging an entity
// that is already pending for insert keeps the insert.
func (c *Context) StageUpdate(e domain.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, o := range c.pending {
		if o.entity == e || (o.kind != domain.ChangeAdded && domain.SameEntity(o.entity, e)) {
			if o.kind == domain.ChangeModified {
				c.pending[i].entity = e
			}
			return
		}
	}
	c.pending = append(c.pending, op{kind: domain.ChangeModified, entity: e})
}

// StageRemove records a delete. Removing an entity that was only staged for
// insert cancels the insert.
func (c *Context) StageRemove(e domain.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, o := range c.pending {
		if o.entity == e && o.kind == domain.ChangeAdded {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
		if o.entity == e || (o.kind != domain.ChangeAdded && domain.SameEntity(o.entity, e)) {
			c.pending[i] = op{kind: domain.ChangeRemoved, entity: e}
			return
		}
	}
	c.pending = append(c.pending, op{kind: domain.ChangeRemoved, entity: e})
}

// PendingCount returns the number of staged mutations, not counting
// undetected in-place edits of tracked entities.
func (c *Context) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// HasChanges reports whether SaveChanges would write anything.
func (c *Context) HasChanges(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) > 0 {
		return true
	}
	for _, ent := range c.tracked {
		if ent.modified(ctx) {
			return true
		}
	}
	return false
}

// DiscardChanges drops staged mutations and reverts nothing else.
func (c *Context) DiscardChanges() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// Clear drops staged mutations and stops tracking every entity.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
	c.tracked = make(map[entityKey]*entry)
}

// SaveChanges writes every pending mutation, plus in-place edits of tracked
// entities, in one transaction and returns the number of affected rows.
// With nothing pending it returns 0 without touching the store. On failure
// the transaction is rolled back and the pending mutations are discarded.
//
// Returned errors wrap domain.ErrConcurrencyConflict,
// domain.ErrConstraintViolation or domain.ErrStoreUnavailable when they apply.
func (c *Context) SaveChanges(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.detectChangesLocked(ctx)
	ops := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(ops) == 0 {
		return 0, nil
	}

	start := time.Now()
	affected, err := c.breaker.Execute(func() (int64, error) {
		var total int64
		err := c.conn(ctx).Transaction(func(tx *gorm.DB) error {
			for i := range ops {
				n, err := c.apply(ctx, tx, &ops[i])
				if err != nil {
					return err
				}
				total += n
			}
			return nil
		})
		return total, err
	})
	if err != nil {
		c.restore(ctx, ops)
		return 0, classify(err)
	}

	c.logger.DebugContext(ctx, "changes saved",
		"operations", len(ops),
		"affected", affected,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if s, ok := txFromContext(ctx); ok && s.owner == c {
		s.afterCommit = append(s.afterCommit, func() { c.committed(ctx, ops) })
		s.onRollback = append(s.onRollback, func() { c.restore(ctx, ops) })
	} else {
		c.committed(ctx, ops)
	}
	return affected, nil
}

func (c *Context) apply(ctx context.Context, tx *gorm.DB, o *op) (int64, error) {
	v, versioned := o.entity.(domain.Versioned)
	if o.kind != domain.ChangeAdded && o.entity.EntityID() == 0 {
		// Without a key the statement would not be limited to one row.
		return 0, domain.InvalidArgument(string(o.kind), o.entity.EntityName(), "entity has no identifier")
	}

	switch o.kind {
	case domain.ChangeAdded:
		o.assignedID = o.entity.EntityID() == 0
		if versioned && v.RowVersion() == 0 {
			v.SetRowVersion(1)
			o.bumped = true
		}
		// Related entities are persisted through their own repositories.
		res := tx.Omit(clause.Associations).Create(o.entity)
		return res.RowsAffected, res.Error

	case domain.ChangeModified:
		q := tx.Model(o.entity).Select("*").Omit(clause.Associations)
		if versioned {
			o.prevVersion, o.bumped = v.RowVersion(), true
			q = q.Where("version = ?", o.prevVersion)
			v.SetRowVersion(o.prevVersion + 1)
		}
		res := q.Updates(o.entity)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, conflict(o.entity)
		}
		return res.RowsAffected, nil

	case domain.ChangeRemoved:
		q := tx
		if versioned {
			q = q.Where("version = ?", v.RowVersion())
		}
		res := q.Delete(o.entity)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, conflict(o.entity)
		}
		return res.RowsAffected, nil
	}
	return 0, fmt.Errorf("unknown change kind %q", o.kind)
}

func conflict(e domain.Entity) error {
	return fmt.Errorf("%w: %s %d was modified or removed since it was loaded",
		domain.ErrConcurrencyConflict, e.EntityName(), e.EntityID())
}

// restore undoes the in-memory effects of a failed or rolled-back commit.
// Modified entities keep their edits but are no longer tracked, so the
// next SaveChanges does not pick them up again.
func (c *Context) restore(ctx context.Context, ops []op) {
	for _, o := range ops {
		if o.kind == domain.ChangeModified {
			c.Detach(o.entity)
		}
		if v, ok := o.entity.(domain.Versioned); ok && o.bumped {
			if o.kind == domain.ChangeAdded {
				v.SetRowVersion(0)
			} else {
				v.SetRowVersion(o.prevVersion)
			}
		}
		if o.kind == domain.ChangeAdded && o.assignedID {
			c.resetID(ctx, o.entity)
		}
	}
}

func (c *Context) resetID(ctx context.Context, e domain.Entity) {
	sch, err := c.schemaOf(e)
	if err != nil || sch.PrioritizedPrimaryField == nil {
		return
	}
	field := sch.PrioritizedPrimaryField
	_ = field.Set(ctx, reflect.ValueOf(e), reflect.Zero(field.FieldType).Interface())
}

// committed updates the identity map and publishes change events.
func (c *Context) committed(ctx context.Context, ops []op) {
	c.mu.Lock()
	for _, o := range ops {
		switch o.kind {
		case domain.ChangeAdded, domain.ChangeModified:
			c.attachLocked(ctx, o.entity, true)
		case domain.ChangeRemoved:
			delete(c.tracked, keyOf(o.entity))
		}
	}
	c.mu.Unlock()

	if c.publisher == nil {
		return
	}
	meta := domain.EventMetadata{
		CorrelationID: observability.CorrelationIDFromContext(ctx),
		Username:      observability.UserFromContext(ctx),
	}
	for _, o := range ops {
		event := domain.NewEntityChanged(o.entity, o.kind)
		event.Metadata = meta
		if err := eventbus.PublishChange(ctx, c.publisher, event); err != nil {
			c.logger.WarnContext(ctx, "failed to publish change event",
				"routing_key", event.RoutingKey(),
				"error", err,
			)
		}
	}
}

// classify tags store errors with the sentinel describing their class.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrConcurrencyConflict),
		errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, domain.ErrInvalidArgument):
		return err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if kind := database.ClassifyConstraint(err); kind != database.ConstraintNone {
		return fmt.Errorf("%w (%s): %w", domain.ErrConstraintViolation, kind, err)
	}
	return err
}
