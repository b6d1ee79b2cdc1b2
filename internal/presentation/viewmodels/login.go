package viewmodels

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/stockroom-app/stockroom/internal/identity/application/auth"
	identity "github.com/stockroom-app/stockroom/internal/identity/domain"
	"github.com/stockroom-app/stockroom/internal/presentation/mvvm"
)

// LoginViewModel gates the application behind a sign-in.
type LoginViewModel struct {
	mvvm.Base

	auth *auth.Service

	mu      sync.RWMutex
	current *identity.User
}

// NewLoginViewModel creates a LoginViewModel.
func NewLoginViewModel(service *auth.Service, notifier mvvm.Notifier, logger *slog.Logger) *LoginViewModel {
	return &LoginViewModel{
		Base: mvvm.Base{Notifier: notifier, Logger: logger},
		auth: service,
	}
}

// Login signs in and makes the user current. Both fields are required.
func (vm *LoginViewModel) Login(ctx context.Context, username, password string) bool {
	if username == "" || password == "" {
		vm.Notify("Enter a username and a password")
		return false
	}

	u, err := vm.auth.Authenticate(ctx, username, password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidCredentials):
		vm.Notify("Wrong username or password")
		return false
	case errors.Is(err, auth.ErrLockedOut):
		mvvm.Notifyf(&vm.Base, "Sign-in blocked: %v", err)
		return false
	default:
		mvvm.Notifyf(&vm.Base, "Could not sign in: %s", mvvm.Describe(err))
		return false
	}

	vm.setCurrent(u)
	return true
}

// Logout forgets the current user.
func (vm *LoginViewModel) Logout() { vm.setCurrent(nil) }

// CurrentUser returns the signed-in user, or nil.
func (vm *LoginViewModel) CurrentUser() *identity.User {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.current
}

// IsLoggedIn reports whether someone is signed in.
func (vm *LoginViewModel) IsLoggedIn() bool { return vm.CurrentUser() != nil }

func (vm *LoginViewModel) setCurrent(u *identity.User) {
	vm.mu.Lock()
	changed := vm.current != u
	vm.current = u
	vm.mu.Unlock()
	if changed {
		vm.RaisePropertyChanged(PropCurrentUser)
	}
}
