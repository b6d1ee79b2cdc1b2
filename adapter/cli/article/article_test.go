package article

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/adapter/cli"
	"github.com/stockroom-app/stockroom/adapter/cli/clitest"
	"github.com/stockroom-app/stockroom/internal/app"
	identity "github.com/stockroom-app/stockroom/internal/identity/domain"
	"github.com/stockroom-app/stockroom/internal/inventory/domain"
)

func setup(t *testing.T) (*cli.App, *app.Container, *domain.ArticleModel) {
	t.Helper()
	a, c := clitest.Setup(t)
	clitest.SignInAs(t, c, "alice", identity.RoleAdmin)

	ctx := context.Background()
	laptop := &domain.ArticleType{Name: "Laptop"}
	require.NoError(t, c.Repositories.Types.Add(ctx, laptop))
	m := &domain.ArticleModel{Name: "ThinkPad", Brand: "Lenovo", TypeID: laptop.ID}
	require.NoError(t, c.Repositories.Models.Add(ctx, m))
	return a, c, m
}

func TestAdd_RegistersWithNextNumber(t *testing.T) {
	a, c, m := setup(t)
	model := map[string]string{"model": itoa(m.ID), "serial": "PF-1"}

	out, err := clitest.Run(t, addCmd, model)
	require.NoError(t, err)
	assert.Contains(t, out, "Article registered: 1")

	out, err = clitest.Run(t, addCmd, map[string]string{"model": itoa(m.ID), "status": "in_use"})
	require.NoError(t, err)
	assert.Contains(t, out, "Article registered: 2")

	stored, err := c.Repositories.Articles.GetDetailed(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, stored.RegisteredBy)
	assert.Equal(t, "alice", stored.RegisteredBy.Username)

	assert.Equal(t, []string{"Article 1 saved", "Article 2 saved"}, clitest.Messages(a))
}

func TestAdd_RejectsUnknownStatus(t *testing.T) {
	_, _, m := setup(t)

	_, err := clitest.Run(t, addCmd, map[string]string{"model": itoa(m.ID), "status": "lost"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestAdd_RequiresModel(t *testing.T) {
	a, _, _ := setup(t)

	_, err := clitest.Run(t, addCmd, nil)
	assert.ErrorIs(t, err, cli.ErrRejected)
	assert.Equal(t, []string{"ModelID is required"}, clitest.Messages(a))
}

func TestListShowRetireRemove(t *testing.T) {
	_, _, m := setup(t)

	for range 2 {
		_, err := clitest.Run(t, addCmd, map[string]string{"model": itoa(m.ID)})
		require.NoError(t, err)
	}

	out, err := clitest.Run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Articles (2)")
	assert.Contains(t, out, "Lenovo ThinkPad")

	_, err = clitest.Run(t, retireCmd, nil, "1")
	require.NoError(t, err)

	out, err = clitest.Run(t, listCmd, map[string]string{"status": "retired"})
	require.NoError(t, err)
	assert.Contains(t, out, "Articles (1)")

	out, err = clitest.Run(t, showCmd, nil, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "status:     retired")
	assert.Contains(t, out, "type:       Laptop")
	assert.Contains(t, out, "by alice")

	_, err = clitest.Run(t, removeCmd, nil, "2")
	require.NoError(t, err)

	_, err = clitest.Run(t, showCmd, nil, "2")
	assert.ErrorContains(t, err, "article 2 not found")

	_, err = clitest.Run(t, showCmd, nil, "x")
	assert.ErrorContains(t, err, "invalid id")
}

func TestCommandsRequireSignIn(t *testing.T) {
	_, _, m := setup(t)
	t.Setenv(cli.EnvPassword, "wrong password")

	_, err := clitest.Run(t, addCmd, map[string]string{"model": itoa(m.ID)})
	assert.ErrorIs(t, err, cli.ErrNotSignedIn)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
