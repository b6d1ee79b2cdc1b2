package domain

import (
	"context"

	sharedDomain "github.com/stockroom-app/stockroom/internal/shared/domain"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	sharedDomain.Repository[*User]

	// GetByUsername returns the user, or nil when there is none.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Login reports whether the username and password match a stored user.
	Login(ctx context.Context, username, password string) (bool, error)

	// Count returns the number of users.
	Count(ctx context.Context) (int64, error)
}
