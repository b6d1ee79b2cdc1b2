package persistence

import (
	"context"
	"log/slog"

	"github.com/stockroom-app/stockroom/internal/identity/domain"
	sharedPersistence "github.com/stockroom-app/stockroom/internal/shared/infrastructure/persistence"
)

// UserRepository stores users and checks their credentials.
type UserRepository struct {
	*sharedPersistence.Repository[domain.User, *domain.User]
	passwordCost int
	logger       *slog.Logger
}

var _ domain.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a UserRepository over pc. passwordCost is the
// bcrypt cost passwords are stored at; unknown users are checked at it too.
func NewUserRepository(pc *sharedPersistence.Context, passwordCost int, logger *slog.Logger) *UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserRepository{
		Repository:   sharedPersistence.NewRepository[domain.User](pc, logger),
		passwordCost: passwordCost,
		logger:       logger.With("entity_type", domain.EntityName),
	}
}

// GetByUsername returns the user with username, or nil when there is none.
// The returned user is tracked.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return nil, nil
	}
	return r.FirstOrDefault(ctx, sharedPersistence.Where("username = ?", name), sharedPersistence.Tracked())
}

// Login reports whether username and password match a stored user. Unknown
// users cost as much as a wrong password. Store failures are returned, a
// mismatch is not an error.
func (r *UserRepository) Login(ctx context.Context, username, password string) (bool, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to look up user for login", "error", err)
		return false, err
	}
	if u == nil {
		domain.BurnPasswordCheck(password, r.passwordCost)
		return false, nil
	}
	return u.CheckPassword(password), nil
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.Query().Count(ctx)
}

// ListByRole returns the users with role, ordered by username.
func (r *UserRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return r.Query().Where("role = ?", role).Order("username").List(ctx)
}
