package space

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/adapter/cli/clitest"
	identity "github.com/stockroom-app/stockroom/internal/identity/domain"
)

func TestAddAndList(t *testing.T) {
	_, c := clitest.Setup(t)
	clitest.SignInAs(t, c, "alice", identity.RoleStaff)

	out, err := clitest.Run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No spaces found.")

	out, err = clitest.Run(t, addCmd, map[string]string{"description": "second floor"}, "Room 101")
	require.NoError(t, err)
	assert.Contains(t, out, "Space created: 1")

	out, err = clitest.Run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Spaces (1)")
	assert.Contains(t, out, "Room 101")
	assert.Contains(t, out, "second floor")
}
