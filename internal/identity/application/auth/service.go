// Package auth signs users in and manages their accounts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stockroom-app/stockroom/internal/identity/domain"
)

var (
	// ErrInvalidCredentials is returned for an unknown username or a wrong
	// password. The two cases are not told apart.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrLockedOut is returned while a username is locked after repeated failures.
	ErrLockedOut = errors.New("too many failed login attempts")

	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already exists")
)

// Limiter counts failed logins per username.
type Limiter interface {
	Locked(ctx context.Context, username string) (time.Duration, error)
	Failure(ctx context.Context, username string) (bool, error)
	Reset(ctx context.Context, username string) error
}

// RegisterRequest describes a new account.
type RegisterRequest struct {
	Username     string
	Password     string
	FullName     string
	Email        string
	Role         domain.Role
	DepartmentID *int
}

// Service authenticates and registers users.
type Service struct {
	users   domain.UserRepository
	limiter Limiter
	cost    int
	logger  *slog.Logger
}

// NewService creates an auth service. A nil limiter disables throttling.
func NewService(users domain.UserRepository, limiter Limiter, bcryptCost int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:   users,
		limiter: limiter,
		cost:    bcryptCost,
		logger:  logger,
	}
}

// Authenticate checks the credentials and returns the public record of the
// user. Failures count toward the lockout of the username.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil || password == "" {
		domain.BurnPasswordCheck(password, s.cost)
		return nil, ErrInvalidCredentials
	}

	if err := s.checkLock(ctx, name); err != nil {
		return nil, err
	}

	ok, err := s.users.Login(ctx, name, password)
	if err != nil {
		return nil, fmt.Errorf("failed to check credentials: %w", err)
	}
	if !ok {
		s.recordFailure(ctx, name)
		return nil, ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, name); err != nil {
			s.logger.WarnContext(ctx, "failed to reset login failures", "username", name, "error", err)
		}
	}

	u, err := s.users.GetByUsername(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		// removed between the check and the lookup
		return nil, ErrInvalidCredentials
	}

	s.logger.InfoContext(ctx, "user signed in", "username", name)
	return u.Public(), nil
}

// A throttle store that cannot be reached does not block sign-in.
func (s *Service) checkLock(ctx context.Context, username string) error {
	if s.limiter == nil {
		return nil
	}
	left, err := s.limiter.Locked(ctx, username)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read login lockout", "username", username, "error", err)
		return nil
	}
	if left > 0 {
		return fmt.Errorf("%w: try again in %s", ErrLockedOut, left.Round(time.Second))
	}
	return nil
}

func (s *Service) recordFailure(ctx context.Context, username string) {
	if s.limiter == nil {
		return
	}
	locked, err := s.limiter.Failure(ctx, username)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record login failure", "username", username, "error", err)
		return
	}
	if locked {
		s.logger.WarnContext(ctx, "username locked after failed logins", "username", username)
	}
}

// Register creates an account and returns its public record.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	role := req.Role
	if role == "" {
		role = domain.RoleStaff
	}

	u, err := domain.NewUser(req.Username, req.Password, req.FullName, req.Email, role, s.cost)
	if err != nil {
		return nil, err
	}
	u.DepartmentID = req.DepartmentID

	existing, err := s.users.GetByUsername(ctx, u.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, u.Username)
	}

	if err := s.users.Add(ctx, u); err != nil {
		return nil, err
	}
	return u.Public(), nil
}

// ChangePassword replaces the password of username after checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	if _, err := s.Authenticate(ctx, username, current); err != nil {
		return err
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return ErrInvalidCredentials
	}
	if err := u.SetPassword(next, s.cost); err != nil {
		return err
	}
	return s.users.Update(ctx, u)
}

// HasUsers reports whether any account exists.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
