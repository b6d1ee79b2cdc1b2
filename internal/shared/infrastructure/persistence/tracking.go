package persistence

import (
	"context"
	"reflect"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
)

type entityKey struct {
	name string
	id   int
}

func keyOf(e domain.Entity) entityKey {
	return entityKey{name: e.EntityName(), id: e.EntityID()}
}

// entry is a tracked entity with the column values it had when it was
// loaded or last saved.
type entry struct {
	entity   domain.Entity
	schema   *schema.Schema
	snapshot []any
}

func (c *Context) schemaOf(e any) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: c.db}
	if err := stmt.Parse(e); err != nil {
		return nil, err
	}
	return stmt.Schema, nil
}

// columns returns the column values of e. Pointer columns are dereferenced
// so that the snapshot does not alias the entity.
func columns(ctx context.Context, sch *schema.Schema, e any) []any {
	rv := reflect.ValueOf(e)
	vals := make([]any, 0, len(sch.DBNames))
	for _, f := range sch.Fields {
		if f.DBName == "" {
			continue
		}
		v, _ := f.ValueOf(ctx, rv)
		vals = append(vals, deref(v))
	}
	return vals
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return v
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}

func (e *entry) modified(ctx context.Context) bool {
	return !reflect.DeepEqual(e.snapshot, columns(ctx, e.schema, e.entity))
}

func (e *entry) refresh(ctx context.Context) {
	e.snapshot = columns(ctx, e.schema, e.entity)
}

// attachLocked starts tracking e and returns the canonical instance for its
// key. When another instance is already tracked it wins, unless replace is set.
func (c *Context) attachLocked(ctx context.Context, e domain.Entity, replace bool) domain.Entity {
	k := keyOf(e)
	if existing, ok := c.tracked[k]; ok && !replace {
		return existing.entity
	}

	sch, err := c.schemaOf(e)
	if err != nil {
		c.logger.Warn("cannot track entity", "entity_type", k.name, "id", k.id, "error", err)
		return e
	}

	ent := &entry{entity: e, schema: sch}
	ent.refresh(ctx)
	c.tracked[k] = ent
	return e
}

func (c *Context) attach(ctx context.Context, e domain.Entity) domain.Entity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attachLocked(ctx, e, false)
}

// lookup returns the tracked instance for a type name and id.
func (c *Context) lookup(name string, id int) (domain.Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.tracked[entityKey{name: name, id: id}]
	if !ok {
		return nil, false
	}
	return ent.entity, true
}

// IsTracked reports whether this exact instance is tracked.
func (c *Context) IsTracked(e domain.Entity) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.tracked[keyOf(e)]
	return ok && ent.entity == e
}

// Detach stops tracking e. Pending mutations are not affected.
func (c *Context) Detach(e domain.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ent, ok := c.tracked[keyOf(e)]; ok && ent.entity == e {
		delete(c.tracked, keyOf(e))
	}
}

// TrackedCount returns the number of tracked entities.
func (c *Context) TrackedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tracked)
}

// detectChangesLocked stages an update for every tracked entity whose
// columns differ from its snapshot and that has nothing staged yet.
func (c *Context) detectChangesLocked(ctx context.Context) {
	staged := make(map[domain.Entity]bool, len(c.pending))
	for _, o := range c.pending {
		staged[o.entity] = true
	}

	keys := make([]entityKey, 0, len(c.tracked))
	for k := range c.tracked {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].id < keys[j].id
	})

	for _, k := range keys {
		ent := c.tracked[k]
		if staged[ent.entity] || !ent.modified(ctx) {
			continue
		}
		c.pending = append(c.pending, op{kind: domain.ChangeModified, entity: ent.entity})
	}
}
