package viewmodels

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/identity/application/auth"
	identity "github.com/stockroom-app/stockroom/internal/identity/domain"
)

func TestLoginViewModel_Login(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addUser(t, "alice")

	vm := NewLoginViewModel(e.auth, e.queue, nil)
	var changed int
	vm.OnPropertyChanged(func(name string) {
		if name == PropCurrentUser {
			changed++
		}
	})

	assert.False(t, vm.Login(ctx, "", ""))
	assert.False(t, vm.Login(ctx, "alice", "wrong password"))
	assert.False(t, vm.IsLoggedIn())

	require.True(t, vm.Login(ctx, "alice", "correct horse"))
	require.NotNil(t, vm.CurrentUser())
	assert.Equal(t, "alice", vm.CurrentUser().Username)
	assert.Empty(t, vm.CurrentUser().PasswordHash)

	vm.Logout()
	assert.False(t, vm.IsLoggedIn())
	assert.Equal(t, 2, changed)

	assert.Equal(t, []string{"Enter a username and a password", "Wrong username or password"}, e.messages())
}

func TestLoginViewModel_LocksOutAfterRepeatedFailures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addUser(t, "alice")

	vm := NewLoginViewModel(e.auth, e.queue, nil)
	for range 3 {
		assert.False(t, vm.Login(ctx, "alice", "wrong password"))
	}
	assert.False(t, vm.Login(ctx, "alice", "correct horse"))

	msgs := e.messages()
	require.Len(t, msgs, 4)
	assert.Contains(t, msgs[3], "Sign-in blocked")
}

func TestUserViewModel_Register(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	vm := NewUserViewModel(e.auth, e.repos, e.queue, nil)
	bootstrap, err := vm.NeedsBootstrap(ctx)
	require.NoError(t, err)
	assert.True(t, bootstrap)

	u, ok := vm.Register(ctx, auth.RegisterRequest{Username: "Alice", Password: "correct horse", Role: identity.RoleAdmin})
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)

	_, ok = vm.Register(ctx, auth.RegisterRequest{Username: "alice", Password: "correct horse"})
	assert.False(t, ok)
	_, ok = vm.Register(ctx, auth.RegisterRequest{Username: "bob", Password: "short"})
	assert.False(t, ok)

	bootstrap, err = vm.NeedsBootstrap(ctx)
	require.NoError(t, err)
	assert.False(t, bootstrap)

	users, err := vm.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)

	msgs := e.messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, `User "alice" created`, msgs[0])
	assert.Equal(t, `Username "alice" is already taken`, msgs[1])
	assert.Contains(t, msgs[2], "password")
}

func TestUserViewModel_ChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addUser(t, "alice")

	vm := NewUserViewModel(e.auth, e.repos, e.queue, nil)
	assert.False(t, vm.ChangePassword(ctx, "alice", "wrong password", "new password"))
	assert.True(t, vm.ChangePassword(ctx, "alice", "correct horse", "new password"))

	login := NewLoginViewModel(e.auth, e.queue, nil)
	assert.True(t, login.Login(ctx, "alice", "new password"))

	assert.Equal(t, []string{"Wrong username or password", "Password changed"}, e.messages())
}
