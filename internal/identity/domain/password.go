package domain

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
)

// dummyHashes holds one dummy hash per cost, built on first use.
var dummyHashes sync.Map

// DummyHash returns a hash of a throwaway password at cost. Comparing
// against it takes as long as checking a password stored at the same cost.
func DummyHash(cost int) string {
	cost = normalizeCost(cost)
	if h, ok := dummyHashes.Load(cost); ok {
		return h.(string)
	}
	h, _ := dummyHashes.LoadOrStore(cost, mustHash("stockroom-dummy-password", cost))
	return h.(string)
}

func normalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

// HashPassword hashes password with bcrypt at cost. Costs outside bcrypt's
// range fall back to the default.
func HashPassword(password string, cost int) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), normalizeCost(cost))
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. An empty hash never
// matches but still costs one comparison at the default cost.
func VerifyPassword(hash, password string) bool {
	if hash == "" {
		BurnPasswordCheck(password, bcrypt.DefaultCost)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnPasswordCheck spends the time of one comparison at cost without a user.
func BurnPasswordCheck(password string, cost int) {
	_ = bcrypt.CompareHashAndPassword([]byte(DummyHash(cost)), []byte(password))
}

func mustHash(password string, cost int) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}
