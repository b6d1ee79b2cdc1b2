package cli

import (
	"context"

	"github.com/stockroom-app/stockroom/internal/presentation/mvvm"
	"github.com/stockroom-app/stockroom/internal/presentation/viewmodels"
	"github.com/stockroom-app/stockroom/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	// View-models
	Login    *viewmodels.LoginViewModel
	Users    *viewmodels.UserViewModel
	Articles *viewmodels.ArticleViewModel
	Catalog  *viewmodels.CatalogViewModel

	// Notifications queued by the view-models, printed after each command.
	Notifications *mvvm.MessageQueue

	// Migrate applies pending schema migrations and returns their names.
	Migrate func(ctx context.Context) ([]string, error)

	Health *observability.HealthRegistry

	// RabbitMQURL is the broker watched by the watch command.
	RabbitMQURL string
}

// NewApp creates a new CLI application with the provided view-models.
func NewApp(
	login *viewmodels.LoginViewModel,
	users *viewmodels.UserViewModel,
	articles *viewmodels.ArticleViewModel,
	catalog *viewmodels.CatalogViewModel,
	notifications *mvvm.MessageQueue,
) *App {
	return &App{
		Login:         login,
		Users:         users,
		Articles:      articles,
		Catalog:       catalog,
		Notifications: notifications,
	}
}

// SetMigrator updates the schema migrator.
func (a *App) SetMigrator(fn func(ctx context.Context) ([]string, error)) {
	a.Migrate = fn
}

// SetHealth updates the health registry.
func (a *App) SetHealth(h *observability.HealthRegistry) {
	a.Health = h
}

// SetRabbitMQURL updates the broker URL.
func (a *App) SetRabbitMQURL(url string) {
	a.RabbitMQURL = url
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
