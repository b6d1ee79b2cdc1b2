package mvvm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
)

type item struct {
	ID   int
	Name string `validate:"required,max=5"`
	Code string `validate:"omitempty,min=2"`
}

func (i *item) EntityID() int      { return i.ID }
func (i *item) EntityName() string { return "Item" }

// fakeRepo is an in-memory domain.Repository that can be told to fail.
type fakeRepo struct {
	rows    map[int]*item
	nextID  int
	fail    error
	calls   []string
	getFail error
}

func newFakeRepo() *fakeRepo { return &fakeRepo{rows: make(map[int]*item), nextID: 1} }

func (r *fakeRepo) EntityName() string { return "Item" }

func (r *fakeRepo) GetByID(_ context.Context, id int) (*item, error) {
	r.calls = append(r.calls, "get")
	if r.getFail != nil {
		return nil, r.getFail
	}
	return r.rows[id], nil
}

func (r *fakeRepo) GetAll(context.Context) ([]*item, error) {
	r.calls = append(r.calls, "all")
	if r.fail != nil {
		return nil, r.fail
	}
	out := make([]*item, 0, len(r.rows))
	for _, it := range r.rows {
		out = append(out, it)
	}
	return out, nil
}

func (r *fakeRepo) Add(_ context.Context, e *item) error {
	r.calls = append(r.calls, "add")
	if r.fail != nil {
		return r.fail
	}
	if e.ID == 0 {
		e.ID = r.nextID
		r.nextID++
	}
	r.rows[e.ID] = e
	return nil
}

func (r *fakeRepo) AddRange(ctx context.Context, es []*item) error {
	for _, e := range es {
		if err := r.Add(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRepo) Update(_ context.Context, e *item) error {
	r.calls = append(r.calls, "update")
	if r.fail != nil {
		return r.fail
	}
	r.rows[e.ID] = e
	return nil
}

func (r *fakeRepo) Remove(ctx context.Context, e *item) error { return r.RemoveByID(ctx, e.ID) }

func (r *fakeRepo) RemoveByID(_ context.Context, id int) error {
	r.calls = append(r.calls, "remove")
	if r.fail != nil {
		return r.fail
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeRepo) SaveChanges(context.Context) (int64, error) { return 0, r.fail }

func (r *fakeRepo) GetLastID(context.Context, string) (int, bool, error) {
	return r.nextID - 1, r.nextID > 1, r.fail
}

var _ domain.Repository[*item] = (*fakeRepo)(nil)

func newBase() (*Base, *MessageQueue) {
	q := NewMessageQueue(time.Minute)
	return &Base{Notifier: q}, q
}

func texts(q *MessageQueue) []string {
	var out []string
	for _, m := range q.Drain() {
		out = append(out, m.Text)
	}
	return out
}

func TestSetProperty_NotifiesOnlyOnChange(t *testing.T) {
	var o Observable
	var changed []string
	unsubscribe := o.OnPropertyChanged(func(name string) { changed = append(changed, name) })

	name := "a"
	assert.True(t, SetProperty(&o, &name, "b", "Name"))
	assert.False(t, SetProperty(&o, &name, "b", "Name"))
	assert.Equal(t, "b", name)
	assert.Equal(t, []string{"Name"}, changed)

	unsubscribe()
	SetProperty(&o, &name, "c", "Name")
	assert.Len(t, changed, 1)
}

func TestObservable_HandlersRunInSubscriptionOrder(t *testing.T) {
	var o Observable
	var order []int
	for i := range 5 {
		o.OnPropertyChanged(func(string) { order = append(order, i) })
	}
	o.RaisePropertyChanged("X")
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestValidatable_ValidateProperty(t *testing.T) {
	var v Validatable
	raised := 0
	v.OnPropertyChanged(func(name string) {
		if name == HasErrorsProperty {
			raised++
		}
	})

	it := &item{}
	assert.Equal(t, "Name is required", v.ValidateProperty(it, "Name"))
	assert.True(t, v.HasErrors())
	assert.Equal(t, 1, v.ErrorCount())

	it.Name = "toolong"
	assert.Equal(t, "Name must be at most 5 characters", v.ValidateProperty(it, "Name"))
	assert.Equal(t, 1, v.ErrorCount())

	it.Name = "ok"
	assert.Empty(t, v.ValidateProperty(it, "Name"))
	assert.False(t, v.HasErrors())
	assert.Equal(t, 2, raised)
}

func TestValidatable_Validate(t *testing.T) {
	var v Validatable

	assert.False(t, v.Validate(&item{Code: "x"}))
	assert.Equal(t, map[string]string{
		"Name": "Name is required",
		"Code": "Code must be at least 2 characters",
	}, v.Errors())

	assert.True(t, v.Validate(&item{Name: "ok"}))
	assert.Zero(t, v.ErrorCount())

	v.ValidateProperty(&item{}, "Name")
	v.ClearErrors()
	assert.False(t, v.HasErrors())
}

func TestMessageQueue_ExpiresMessages(t *testing.T) {
	q := NewMessageQueue(0)
	assert.Equal(t, DefaultMessageDuration, q.Duration())

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return now }

	q.Notify("first")
	now = now.Add(2 * time.Second)
	Notifyf(q, "second %d", 2)

	assert.Len(t, q.Active(), 2)

	now = now.Add(2 * time.Second)
	active := q.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "second 2", active[0].Text)

	assert.Equal(t, 1, q.Len())
	assert.Len(t, q.Drain(), 1)
	assert.Zero(t, q.Len())
}

func TestBase_NotifyWithoutNotifier(t *testing.T) {
	b := &Base{}
	assert.NotPanics(t, func() { b.Notify("hello") })
}

func TestGetAll_ReturnsEmptySliceAndError(t *testing.T) {
	b, q := newBase()
	repo := newFakeRepo()
	repo.fail = domain.NewDataAccessError("list", "Item", "failed to query Item", errors.New("disk on fire"))

	items, err := GetAll(context.Background(), b, repo)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Zero(t, q.Len())
}

func TestGetAll(t *testing.T) {
	b, _ := newBase()
	repo := newFakeRepo()
	require.NoError(t, repo.Add(context.Background(), &item{Name: "a"}))

	items, err := GetAll(context.Background(), b, repo)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestHelpers_NotifyFailures(t *testing.T) {
	ctx := context.Background()
	b, q := newBase()
	repo := newFakeRepo()
	repo.fail = domain.NewDataAccessError("add", "Item", "failed to add Item", domain.ErrConstraintViolation)

	assert.False(t, Add(ctx, b, repo, &item{Name: "a"}))
	assert.False(t, Update(ctx, b, repo, &item{ID: 1, Name: "a"}))
	assert.False(t, Delete(ctx, b, repo, 1))

	assert.Equal(t, []string{
		"Could not add Item: the database rejected the change (duplicate or still referenced)",
		"Could not update Item: the database rejected the change (duplicate or still referenced)",
		"Could not delete Item 1: the database rejected the change (duplicate or still referenced)",
	}, texts(q))
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	b, q := newBase()
	repo := newFakeRepo()
	require.NoError(t, repo.Add(ctx, &item{Name: "a"}))

	got, ok := GetByID(ctx, b, repo, 1)
	assert.True(t, ok)
	assert.Equal(t, "a", got.Name)

	missing, ok := GetByID(ctx, b, repo, 42)
	assert.True(t, ok)
	assert.Nil(t, missing)
	assert.Zero(t, q.Len())

	repo.getFail = domain.NewDataAccessError("first", "Item", "failed to query Item", domain.ErrStoreUnavailable)
	_, ok = GetByID(ctx, b, repo, 1)
	assert.False(t, ok)
	assert.Equal(t, []string{"Could not load Item 1: the database is unavailable, try again later"}, texts(q))
}

func TestAddOrUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("zero identifier always inserts", func(t *testing.T) {
		b, _ := newBase()
		repo := newFakeRepo()
		repo.rows[0] = &item{Name: "zero"}

		assert.True(t, AddOrUpdate(ctx, b, repo, &item{Name: "new"}))
		assert.Equal(t, []string{"add"}, repo.calls)
	})

	t.Run("unknown identifier inserts", func(t *testing.T) {
		b, _ := newBase()
		repo := newFakeRepo()

		it := &item{ID: 7, Name: "x"}
		assert.True(t, AddOrUpdate(ctx, b, repo, it))
		assert.Equal(t, []string{"get", "add"}, repo.calls)
		assert.Same(t, it, repo.rows[7])
	})

	t.Run("existing identifier updates", func(t *testing.T) {
		b, _ := newBase()
		repo := newFakeRepo()
		repo.rows[3] = &item{ID: 3, Name: "old"}

		assert.True(t, AddOrUpdate(ctx, b, repo, &item{ID: 3, Name: "new"}))
		assert.Equal(t, []string{"get", "update"}, repo.calls)
		assert.Equal(t, "new", repo.rows[3].Name)
	})

	t.Run("nil entity", func(t *testing.T) {
		b, q := newBase()
		repo := newFakeRepo()

		assert.False(t, AddOrUpdate[*item](ctx, b, repo, nil))
		assert.Empty(t, repo.calls)
		assert.Equal(t, []string{"Could not save Item: nothing to save"}, texts(q))
	})

	t.Run("lookup failure is notified", func(t *testing.T) {
		b, q := newBase()
		repo := newFakeRepo()
		repo.getFail = domain.NewDataAccessError("first", "Item", "failed to query Item", errors.New("boom"))

		assert.False(t, AddOrUpdate(ctx, b, repo, &item{ID: 3}))
		assert.Equal(t, []string{"Could not save Item: failed to query Item"}, texts(q))
	})
}

func TestDescribe(t *testing.T) {
	assert.Empty(t, Describe(nil))
	assert.Equal(t, "it was changed or removed by someone else, reload and try again",
		Describe(domain.NewDataAccessError("save", "Item", "x", domain.ErrConcurrencyConflict)))
	assert.Equal(t, "the operation was cancelled", Describe(context.Canceled))
	assert.Equal(t, "plain", Describe(errors.New("plain")))
}

func TestValidatable_FirstError(t *testing.T) {
	var v Validatable
	assert.Empty(t, v.FirstError())

	v.Validate(&item{Code: "x"})
	assert.Equal(t, "Code must be at least 2 characters", v.FirstError())
}
