// Package viewmodels binds the inventory repositories to presentation
// state. Each view-model keeps the lists a screen shows, validates input,
// turns store failures into notifications and refreshes itself when other
// sessions change the data it shows.
package viewmodels

import (
	"context"
	"log/slog"
	"sync"

	userPersistence "github.com/stockroom-app/stockroom/internal/identity/infrastructure/persistence"
	invPersistence "github.com/stockroom-app/stockroom/internal/inventory/infrastructure/persistence"
	"github.com/stockroom-app/stockroom/internal/presentation/mvvm"
	sharedDomain "github.com/stockroom-app/stockroom/internal/shared/domain"
	sharedPersistence "github.com/stockroom-app/stockroom/internal/shared/infrastructure/persistence"
)

// Property names raised by the view-models.
const (
	PropTypes        = "Types"
	PropModels       = "Models"
	PropUsers        = "Users"
	PropDepartments  = "Departments"
	PropSpaces       = "Spaces"
	PropArticles     = "Articles"
	PropArticle      = "Article"
	PropArticleModel = "ArticleModel"
	PropCurrentUser  = "CurrentUser"
)

// Repositories are the stores of one session. They share a single
// persistence context.
type Repositories struct {
	Context     *sharedPersistence.Context
	Types       *invPersistence.ArticleTypeRepository
	Models      *invPersistence.ArticleModelRepository
	Articles    *invPersistence.ArticleRepository
	Departments *invPersistence.DepartmentRepository
	Spaces      *invPersistence.SpaceRepository
	Users       *userPersistence.UserRepository
}

// NewRepositories creates every repository over pc. passwordCost is the
// bcrypt cost of stored passwords.
func NewRepositories(pc *sharedPersistence.Context, passwordCost int, logger *slog.Logger) *Repositories {
	return &Repositories{
		Context:     pc,
		Types:       invPersistence.NewArticleTypeRepository(pc, logger),
		Models:      invPersistence.NewArticleModelRepository(pc, logger),
		Articles:    invPersistence.NewArticleRepository(pc, logger),
		Departments: invPersistence.NewDepartmentRepository(pc, logger),
		Spaces:      invPersistence.NewSpaceRepository(pc, logger),
		Users:       userPersistence.NewUserRepository(pc, passwordCost, logger),
	}
}

// reload replaces *dst with every entity of repo and raises property.
// On failure *dst is left alone.
func reload[T sharedDomain.Entity](ctx context.Context, b *mvvm.Base, mu *sync.RWMutex,
	repo sharedDomain.Repository[T], dst *[]T, property string) error {
	items, err := mvvm.GetAll(ctx, b, repo)
	if err != nil {
		return err
	}
	mu.Lock()
	*dst = items
	mu.Unlock()
	b.RaisePropertyChanged(property)
	return nil
}

func snapshot[T any](mu *sync.RWMutex, items *[]T) []T {
	mu.RLock()
	defer mu.RUnlock()
	return append([]T(nil), *items...)
}
