package domain

import (
	"fmt"

	sharedDomain "github.com/stockroom-app/stockroom/internal/shared/domain"
)

// EntityName is the name users are tracked and published under.
const EntityName = "User"

// User is an account allowed to sign in.
type User struct {
	ID           int    `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"not null;uniqueIndex" json:"username" validate:"required,min=3,max=50"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	FullName     string `json:"full_name" validate:"max=100"`
	Email        string `json:"email" validate:"omitempty,email,max=255"`
	Role         Role   `gorm:"not null" json:"role" validate:"required,oneof=admin staff"`
	DepartmentID *int   `json:"department_id,omitempty"`
	sharedDomain.Record
}

func (u *User) EntityID() int      { return u.ID }
func (u *User) EntityName() string { return EntityName }

// TableName maps User to the users table.
func (User) TableName() string { return "users" }

// NewUser creates a user with a validated username, email and role and a
// hash of password.
func NewUser(username, password, fullName, email string, role Role, cost int) (*User, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	mail, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	u := &User{
		Username: name,
		FullName: fullName,
		Email:    mail,
		Role:     role,
	}
	if err := u.SetPassword(password, cost); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored hash.
func (u *User) SetPassword(password string, cost int) error {
	hash, err := HashPassword(password, cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return VerifyPassword(u.PasswordHash, password)
}

// IsAdmin reports whether the user administers accounts.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Public returns a copy without the password hash.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}

func (u *User) String() string {
	if u.FullName == "" {
		return u.Username
	}
	return fmt.Sprintf("%s (%s)", u.FullName, u.Username)
}
