package viewmodels

import (
	"context"
	"errors"
	"log/slog"

	"github.com/stockroom-app/stockroom/internal/identity/application/auth"
	identity "github.com/stockroom-app/stockroom/internal/identity/domain"
	"github.com/stockroom-app/stockroom/internal/presentation/mvvm"
)

// UserViewModel registers accounts and changes passwords.
type UserViewModel struct {
	mvvm.Base

	auth  *auth.Service
	repos *Repositories
}

// NewUserViewModel creates a UserViewModel.
func NewUserViewModel(service *auth.Service, repos *Repositories, notifier mvvm.Notifier, logger *slog.Logger) *UserViewModel {
	return &UserViewModel{
		Base:  mvvm.Base{Notifier: notifier, Logger: logger},
		auth:  service,
		repos: repos,
	}
}

// NeedsBootstrap reports whether no account exists yet, in which case the
// first administrator may be registered without signing in.
func (vm *UserViewModel) NeedsBootstrap(ctx context.Context) (bool, error) {
	has, err := vm.auth.HasUsers(ctx)
	if err != nil {
		return false, err
	}
	return !has, nil
}

// Register creates an account and returns its public record.
func (vm *UserViewModel) Register(ctx context.Context, req auth.RegisterRequest) (*identity.User, bool) {
	u, err := vm.auth.Register(ctx, req)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrUsernameTaken):
		mvvm.Notifyf(&vm.Base, "Username %q is already taken", req.Username)
		return nil, false
	case errors.Is(err, identity.ErrInvalidUsername),
		errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrInvalidRole),
		errors.Is(err, identity.ErrPasswordTooShort),
		errors.Is(err, identity.ErrPasswordTooLong):
		vm.Notify(err.Error())
		return nil, false
	default:
		mvvm.Notifyf(&vm.Base, "Could not add User: %s", mvvm.Describe(err))
		return nil, false
	}

	mvvm.Notifyf(&vm.Base, "User %q created", u.Username)
	return u, true
}

// ChangePassword replaces the password of username after checking the
// current one.
func (vm *UserViewModel) ChangePassword(ctx context.Context, username, current, next string) bool {
	err := vm.auth.ChangePassword(ctx, username, current, next)
	switch {
	case err == nil:
		vm.Notify("Password changed")
		return true
	case errors.Is(err, auth.ErrInvalidCredentials):
		vm.Notify("Wrong username or password")
	case errors.Is(err, auth.ErrLockedOut),
		errors.Is(err, identity.ErrPasswordTooShort),
		errors.Is(err, identity.ErrPasswordTooLong):
		vm.Notify(err.Error())
	default:
		mvvm.Notifyf(&vm.Base, "Could not change the password: %s", mvvm.Describe(err))
	}
	return false
}

// Users returns every account without password hashes.
func (vm *UserViewModel) Users(ctx context.Context) ([]*identity.User, error) {
	users, err := mvvm.GetAll[*identity.User](ctx, &vm.Base, vm.repos.Users)
	for i, u := range users {
		users[i] = u.Public()
	}
	return users, err
}
