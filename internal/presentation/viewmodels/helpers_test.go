package viewmodels

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockroom-app/stockroom/internal/identity/application/auth"
	identity "github.com/stockroom-app/stockroom/internal/identity/domain"
	"github.com/stockroom-app/stockroom/internal/identity/infrastructure/throttle"
	"github.com/stockroom-app/stockroom/internal/inventory/domain"
	"github.com/stockroom-app/stockroom/internal/presentation/mvvm"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/eventbus"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/persistence/persistencetest"
)

type env struct {
	store *persistencetest.Store
	bus   *eventbus.InProcessEventBus
	repos *Repositories
	queue *mvvm.MessageQueue
	auth  *auth.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	bus := eventbus.NewInProcessEventBus(nil)
	store := persistencetest.New(t, nil, persistencetest.WithPublisher(bus))
	repos := NewRepositories(store.Context, bcrypt.MinCost, store.Logger)
	limiter := throttle.NewMemoryLimiter(throttle.Policy{MaxAttempts: 3, Lockout: time.Minute})
	return &env{
		store: store,
		bus:   bus,
		repos: repos,
		queue: mvvm.NewMessageQueue(time.Minute),
		auth:  auth.NewService(repos.Users, limiter, bcrypt.MinCost, store.Logger),
	}
}

func (e *env) messages() []string {
	var out []string
	for _, m := range e.queue.Drain() {
		out = append(out, m.Text)
	}
	return out
}

func (e *env) addType(t *testing.T, name string) *domain.ArticleType {
	t.Helper()
	at := &domain.ArticleType{Name: name}
	require.NoError(t, e.repos.Types.Add(context.Background(), at))
	return at
}

func (e *env) addModel(t *testing.T, name string, typ *domain.ArticleType) *domain.ArticleModel {
	t.Helper()
	m := &domain.ArticleModel{Name: name, TypeID: typ.ID}
	require.NoError(t, e.repos.Models.Add(context.Background(), m))
	return m
}

func (e *env) addUser(t *testing.T, username string) *identity.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), auth.RegisterRequest{
		Username: username,
		Password: "correct horse",
		Role:     identity.RoleAdmin,
	})
	require.NoError(t, err)
	return u
}
