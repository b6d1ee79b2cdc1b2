package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/stockroom-app/stockroom/adapter/cli"
	"github.com/stockroom-app/stockroom/adapter/cli/article"
	"github.com/stockroom-app/stockroom/adapter/cli/articletype"
	"github.com/stockroom-app/stockroom/adapter/cli/department"
	"github.com/stockroom-app/stockroom/adapter/cli/model"
	"github.com/stockroom-app/stockroom/adapter/cli/space"
	"github.com/stockroom-app/stockroom/adapter/cli/user"
	"github.com/stockroom-app/stockroom/internal/app"
	"github.com/stockroom-app/stockroom/pkg/config"
	"github.com/stockroom-app/stockroom/pkg/observability"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger(observability.ConfigFor("", "", "")).Error("failed to load config", "error", err)
		return 1
	}

	logCfg := observability.ConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)
	logCfg.Version = version
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		return 1
	}
	defer container.Close()

	cliApp := cli.NewApp(
		container.Login,
		container.Users,
		container.Articles,
		container.Catalog,
		container.Notifications,
	)
	cliApp.SetMigrator(container.Migrate)
	cliApp.SetHealth(container.Health)
	cliApp.SetRabbitMQURL(cfg.RabbitMQURL)
	cli.SetApp(cliApp)

	cli.AddCommand(user.Cmd)
	cli.AddCommand(articletype.Cmd)
	cli.AddCommand(model.Cmd)
	cli.AddCommand(department.Cmd)
	cli.AddCommand(space.Cmd)
	cli.AddCommand(article.Cmd)

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
