package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockroom-app/stockroom/internal/identity/domain"
)

func TestHashPassword(t *testing.T) {
	hash, err := domain.HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	again, err := domain.HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")

	assert.True(t, domain.VerifyPassword(hash, "correct horse"))
	assert.True(t, domain.VerifyPassword(again, "correct horse"))
}

func TestHashPassword_OutOfRangeCostUsesDefault(t *testing.T) {
	hash, err := domain.HashPassword("correct horse", 1)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHashPassword_Length(t *testing.T) {
	_, err := domain.HashPassword("1234567", bcrypt.MinCost)
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)

	_, err = domain.HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	assert.ErrorIs(t, err, domain.ErrPasswordTooLong)
}

func TestVerifyPassword_NoHash(t *testing.T) {
	assert.False(t, domain.VerifyPassword("", "anything"))
	assert.False(t, domain.VerifyPassword("not-a-hash", "anything"))
}

func TestDummyHash_UsesConfiguredCost(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost, bcrypt.MinCost + 1} {
		hash := domain.DummyHash(cost)
		got, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, cost, got)
		assert.Equal(t, hash, domain.DummyHash(cost))
	}

	got, err := bcrypt.Cost([]byte(domain.DummyHash(0)))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, got)
}
