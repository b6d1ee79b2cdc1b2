package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/adapter/cli"
	"github.com/stockroom-app/stockroom/adapter/cli/clitest"
	identity "github.com/stockroom-app/stockroom/internal/identity/domain"
	"github.com/stockroom-app/stockroom/internal/inventory/domain"
)

func TestAddAndList(t *testing.T) {
	a, c := clitest.Setup(t)
	clitest.SignInAs(t, c, "alice", identity.RoleStaff)
	require.NoError(t, c.Repositories.Types.Add(t.Context(), &domain.ArticleType{Name: "Laptop"}))

	_, err := clitest.Run(t, addCmd, nil, "ThinkPad")
	assert.ErrorIs(t, err, cli.ErrRejected)
	assert.Equal(t, []string{"TypeID is required"}, clitest.Messages(a))

	out, err := clitest.Run(t, addCmd, map[string]string{"type": "1", "brand": "Lenovo"}, "ThinkPad")
	require.NoError(t, err)
	assert.Contains(t, out, "Article model created: 1")

	out, err = clitest.Run(t, listCmd, map[string]string{"type": "1"})
	require.NoError(t, err)
	assert.Contains(t, out, "Article models (1)")
	assert.Contains(t, out, "Lenovo ThinkPad")
	assert.Contains(t, out, "Laptop")
}
