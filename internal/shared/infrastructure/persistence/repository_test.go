package persistence

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
)

func TestRepository_AddAssignsIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w := f.addWidget(t, "bolt", 10)

	assert.NotZero(t, w.ID)
	assert.Equal(t, 1, w.Version)
	assert.True(t, f.pc.IsTracked(w))

	got, err := f.widgets.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Same(t, w, got)
}

func TestRepository_GetByID_LoadsFromStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w := f.addWidget(t, "bolt", 10)
	f.pc.Clear()

	got, err := f.widgets.GetByID(ctx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotSame(t, w, got)
	assert.Equal(t, "bolt", got.Name)
	assert.True(t, f.pc.IsTracked(got))
}

func TestRepository_GetByID_Missing(t *testing.T) {
	f := newFixture(t)

	got, err := f.widgets.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_NilArgumentsAreRejectedWithoutLogging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"add", func() error { return f.widgets.Add(ctx, nil) }},
		{"add range", func() error { return f.widgets.AddRange(ctx, []*widget{{Name: "a"}, nil}) }},
		{"update", func() error { return f.widgets.Update(ctx, nil) }},
		{"remove", func() error { return f.widgets.Remove(ctx, nil) }},
		{"find", func() error { _, err := f.widgets.Find(ctx, nil); return err }},
		{"first", func() error { _, err := f.widgets.FirstOrDefault(ctx, nil); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}

	assert.Zero(t, f.logs.count())
	assert.Zero(t, f.pc.PendingCount())
}

func TestRepository_UpdateWithoutIdentifier(t *testing.T) {
	f := newFixture(t)

	err := f.widgets.Update(context.Background(), &widget{Name: "ghost"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRepository_AddRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	batch := []*widget{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	require.NoError(t, f.widgets.AddRange(ctx, batch))

	for _, w := range batch {
		assert.NotZero(t, w.ID)
	}
	n, err := f.widgets.Query().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Contains(t, f.logs.messages(slog.LevelInfo), "entities added")

	assert.NoError(t, f.widgets.AddRange(ctx, nil))
}

func TestRepository_AddRange_IsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addWidget(t, "taken", 1)

	err := f.widgets.AddRange(ctx, []*widget{{Name: "fresh"}, {Name: "taken"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	n, err := f.widgets.Query().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRepository_UpdatePersistsEveryColumn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w := f.addWidget(t, "bolt", 10)

	detached := &widget{ID: w.ID, Name: "nut", Quantity: 0, Record: domain.Record{Version: w.Version}}
	require.NoError(t, f.widgets.Update(ctx, detached))

	stored := f.fresh(t, w.ID)
	assert.Equal(t, "nut", stored.Name)
	assert.Equal(t, 0, stored.Quantity)
	assert.Equal(t, 2, stored.Version)
	assert.Equal(t, 2, detached.Version)
}

func TestRepository_UpdateStaleCopyConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w := f.addWidget(t, "bolt", 10)

	stale, err := f.widgets.Query().Where("id = ?", w.ID).First(ctx)
	require.NoError(t, err)

	w.Quantity = 11
	require.NoError(t, f.widgets.Update(ctx, w))

	stale.Quantity = 99
	err = f.widgets.Update(ctx, stale)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	var dae *domain.DataAccessError
	require.ErrorAs(t, err, &dae)
	assert.Equal(t, "update", dae.Op)
	assert.Equal(t, "Widget", dae.Entity)
	assert.Equal(t, w.ID, dae.ID)

	assert.Equal(t, 1, stale.Version)
	assert.Equal(t, 11, f.fresh(t, w.ID).Quantity)
}

func TestRepository_AddConstraintViolationRestoresEntity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addWidget(t, "bolt", 1)

	dup := &widget{Name: "bolt"}
	err := f.widgets.Add(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	assert.Contains(t, f.logs.messages(slog.LevelError), "failed to add entity")

	assert.Zero(t, dup.ID)
	assert.Zero(t, dup.Version)
	assert.Zero(t, f.pc.PendingCount())

	// the context stays usable
	f.addWidget(t, "nut", 1)
}

func TestRepository_Remove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w := f.addWidget(t, "bolt", 1)
	require.NoError(t, f.widgets.Remove(ctx, w))

	assert.False(t, f.pc.IsTracked(w))
	got, err := f.widgets.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_RemoveByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w := f.addWidget(t, "bolt", 1)
	require.NoError(t, f.widgets.RemoveByID(ctx, w.ID))

	n, err := f.widgets.Query().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepository_RemoveByID_MissingOnlyWarns(t *testing.T) {
	f := newFixture(t)

	err := f.widgets.RemoveByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Equal(t, []string{"entity to remove not found"}, f.logs.messages(slog.LevelWarn))
	assert.Empty(t, f.publisher.keys())
}

func TestRepository_FindAndFirstOrDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addWidget(t, "bolt", 5)
	f.addWidget(t, "nut", 0)
	f.addWidget(t, "washer", 7)

	inStock, err := f.widgets.Find(ctx, Where("quantity > ?", 0))
	require.NoError(t, err)
	assert.Len(t, inStock, 2)

	none, err := f.widgets.Find(ctx, Where("quantity > ?", 100))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	first, err := f.widgets.FirstOrDefault(ctx, Where("name = ?", "nut"))
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 0, first.Quantity)

	missing, err := f.widgets.FirstOrDefault(ctx, Where("name = ?", "gear"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_FirstOrDefault_HonorsCancellation(t *testing.T) {
	f := newFixture(t)
	f.addWidget(t, "bolt", 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.widgets.FirstOrDefault(ctx, Where("name = ?", "bolt"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRepository_GetAllIsTracked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addWidget(t, "bolt", 1)
	f.addWidget(t, "nut", 2)
	f.pc.Clear()

	all, err := f.widgets.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, w := range all {
		assert.True(t, f.pc.IsTracked(w))
	}
}

func TestRepository_GetLastID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, ok, err := f.widgets.GetLastID(ctx, "ID")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, id)

	f.addWidget(t, "a", 3)
	f.addWidget(t, "b", 9)
	f.addWidget(t, "c", 4)

	id, ok, err = f.widgets.GetLastID(ctx, "id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, id)

	qty, ok, err := f.widgets.GetLastID(ctx, "Quantity")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 9, qty)

	_, _, err = f.widgets.GetLastID(ctx, "Weight")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRepository_SaveChangesMessages(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		w := f.addWidget(t, "bolt", 1)

		f.pc.StageUpdate(&widget{ID: w.ID, Name: "bolt", Record: domain.Record{Version: 7}})
		_, err := f.widgets.SaveChanges(ctx)

		var dae *domain.DataAccessError
		require.ErrorAs(t, err, &dae)
		assert.Equal(t, "changes conflict with a concurrent modification", dae.Message)
		assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	})

	t.Run("constraint", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.addWidget(t, "bolt", 1)

		f.pc.StageAdd(&widget{Name: "bolt"})
		_, err := f.widgets.SaveChanges(ctx)

		var dae *domain.DataAccessError
		require.ErrorAs(t, err, &dae)
		assert.Equal(t, "changes were rejected by the database", dae.Message)
	})

	t.Run("unexpected", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.conn.Gorm().Exec("DROP TABLE gadgets").Error)

		f.pc.StageAdd(&gadget{Label: "x"})
		_, err := f.gadgets.SaveChanges(ctx)

		var dae *domain.DataAccessError
		require.ErrorAs(t, err, &dae)
		assert.Equal(t, "unexpected error while saving changes", dae.Message)
		assert.False(t, errors.Is(err, domain.ErrConstraintViolation))
	})

	t.Run("nothing pending", func(t *testing.T) {
		f := newFixture(t)
		n, err := f.widgets.SaveChanges(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestRepository_IncludeLoadsNavigation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w := f.addWidget(t, "bolt", 1)
	g := &gadget{Label: "clamp", WidgetID: w.ID}
	require.NoError(t, f.gadgets.Add(ctx, g))

	plain, err := f.gadgets.FirstOrDefault(ctx, Where("label = ?", "clamp"))
	require.NoError(t, err)
	assert.Nil(t, plain.Widget)

	loaded, err := f.gadgets.FirstOrDefault(ctx, Where("label = ?", "clamp"), Include("Widget"))
	require.NoError(t, err)
	require.NotNil(t, loaded.Widget)
	assert.Equal(t, "bolt", loaded.Widget.Name)
}
