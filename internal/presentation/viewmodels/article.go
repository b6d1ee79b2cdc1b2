package viewmodels

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	identity "github.com/stockroom-app/stockroom/internal/identity/domain"
	"github.com/stockroom-app/stockroom/internal/inventory/domain"
	invPersistence "github.com/stockroom-app/stockroom/internal/inventory/infrastructure/persistence"
	"github.com/stockroom-app/stockroom/internal/presentation/mvvm"
	sharedDomain "github.com/stockroom-app/stockroom/internal/shared/domain"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/eventbus"
)

// ArticleViewModel backs the article screens: it holds the pick lists an
// article form needs and saves article models and articles.
type ArticleViewModel struct {
	mvvm.Base

	repos *Repositories
	now   func() time.Time

	mu          sync.RWMutex
	types       []*domain.ArticleType
	users       []*identity.User
	departments []*domain.Department
	spaces      []*domain.Space
	models      []*domain.ArticleModel
	articles    []*domain.Article

	articleModel *domain.ArticleModel
	article      *domain.Article
	currentUser  *identity.User
}

// NewArticleViewModel creates the view-model with an empty model and article.
func NewArticleViewModel(repos *Repositories, notifier mvvm.Notifier, logger *slog.Logger) *ArticleViewModel {
	return &ArticleViewModel{
		Base:         mvvm.Base{Notifier: notifier, Logger: logger},
		repos:        repos,
		now:          time.Now,
		articleModel: &domain.ArticleModel{},
		article:      &domain.Article{},
	}
}

// Initialize loads the article types, users, departments, spaces and
// models. Lists that fail to load stay empty; the failure is notified once
// and returned.
func (vm *ArticleViewModel) Initialize(ctx context.Context) error {
	err := errors.Join(
		reload[*domain.ArticleType](ctx, &vm.Base, &vm.mu, vm.repos.Types, &vm.types, PropTypes),
		reload[*identity.User](ctx, &vm.Base, &vm.mu, vm.repos.Users, &vm.users, PropUsers),
		reload[*domain.Department](ctx, &vm.Base, &vm.mu, vm.repos.Departments, &vm.departments, PropDepartments),
		reload[*domain.Space](ctx, &vm.Base, &vm.mu, vm.repos.Spaces, &vm.spaces, PropSpaces),
		reload[*domain.ArticleModel](ctx, &vm.Base, &vm.mu, vm.repos.Models, &vm.models, PropModels),
	)
	if err != nil {
		vm.Notify("Could not load the article lists: cannot connect to the database")
		return err
	}
	return nil
}

// Types returns the loaded article types.
func (vm *ArticleViewModel) Types() []*domain.ArticleType { return snapshot(&vm.mu, &vm.types) }

// Departments returns the loaded departments.
func (vm *ArticleViewModel) Departments() []*domain.Department {
	return snapshot(&vm.mu, &vm.departments)
}

// Spaces returns the loaded spaces.
func (vm *ArticleViewModel) Spaces() []*domain.Space { return snapshot(&vm.mu, &vm.spaces) }

// Models returns the loaded article models.
func (vm *ArticleViewModel) Models() []*domain.ArticleModel { return snapshot(&vm.mu, &vm.models) }

// Users returns the loaded users without their password hashes.
func (vm *ArticleViewModel) Users() []*identity.User {
	users := snapshot(&vm.mu, &vm.users)
	for i, u := range users {
		users[i] = u.Public()
	}
	return users
}

// Articles returns the articles of the last LoadArticles.
func (vm *ArticleViewModel) Articles() []*domain.Article { return snapshot(&vm.mu, &vm.articles) }

// ArticleModel returns the model being edited.
func (vm *ArticleViewModel) ArticleModel() *domain.ArticleModel {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.articleModel
}

// SetArticleModel replaces the model being edited.
func (vm *ArticleViewModel) SetArticleModel(m *domain.ArticleModel) {
	vm.mu.Lock()
	field := vm.articleModel
	vm.articleModel = m
	vm.mu.Unlock()
	if field != m {
		vm.RaisePropertyChanged(PropArticleModel)
	}
}

// Article returns the article being edited.
func (vm *ArticleViewModel) Article() *domain.Article {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.article
}

// SetArticle replaces the article being edited.
func (vm *ArticleViewModel) SetArticle(a *domain.Article) {
	vm.mu.Lock()
	field := vm.article
	vm.article = a
	vm.mu.Unlock()
	if field != a {
		vm.RaisePropertyChanged(PropArticle)
	}
}

// SetCurrentUser sets the user new articles are registered by.
func (vm *ArticleViewModel) SetCurrentUser(u *identity.User) {
	vm.mu.Lock()
	field := vm.currentUser
	vm.currentUser = u
	vm.mu.Unlock()
	if field != u {
		vm.RaisePropertyChanged(PropCurrentUser)
	}
}

// SaveArticleModel inserts the edited model when it is new or no longer
// stored and updates it otherwise.
func (vm *ArticleViewModel) SaveArticleModel(ctx context.Context) bool {
	m := vm.ArticleModel()
	if m == nil {
		vm.Notify("There is no article model to save")
		return false
	}
	if !vm.Validate(m) {
		vm.Notify(vm.FirstError())
		return false
	}

	if !mvvm.AddOrUpdate[*domain.ArticleModel](ctx, &vm.Base, vm.repos.Models, m) {
		return false
	}
	mvvm.Notifyf(&vm.Base, "Article model %q saved", m.String())
	return true
}

// SaveArticle inserts the edited article when it is new and updates it
// otherwise. A new article gets the next identifier after the greatest
// stored one; reading it and inserting run in one transaction.
func (vm *ArticleViewModel) SaveArticle(ctx context.Context) bool {
	a := vm.Article()
	if a == nil {
		vm.Notify("There is no article to save")
		return false
	}
	if a.Status == "" {
		a.Status = domain.StatusAvailable
	}
	if !vm.Validate(a) {
		vm.Notify(vm.FirstError())
		return false
	}

	if a.ID != 0 {
		if !mvvm.Update[*domain.Article](ctx, &vm.Base, vm.repos.Articles, a) {
			return false
		}
		mvvm.Notifyf(&vm.Base, "Article %d saved", a.ID)
		return true
	}

	vm.mu.RLock()
	user := vm.currentUser
	vm.mu.RUnlock()
	if a.RegisteredByID == nil && user != nil {
		id := user.ID
		a.RegisteredByID = &id
	}
	if a.RegisteredAt.IsZero() {
		a.RegisteredAt = vm.now().UTC()
	}

	err := vm.repos.Context.Transaction(ctx, func(ctx context.Context) error {
		id, err := vm.repos.Articles.NextID(ctx)
		if err != nil {
			return err
		}
		a.ID = id
		return vm.repos.Articles.Add(ctx, a)
	})
	if err != nil {
		a.ID = 0
		mvvm.Notifyf(&vm.Base, "Could not save the article: %s", mvvm.Describe(err))
		return false
	}

	mvvm.Notifyf(&vm.Base, "Article %d saved", a.ID)
	return true
}

// DeleteArticle removes the article with id. Removing a missing article
// succeeds.
func (vm *ArticleViewModel) DeleteArticle(ctx context.Context, id int) bool {
	if !mvvm.Delete[*domain.Article](ctx, &vm.Base, vm.repos.Articles, id) {
		return false
	}
	mvvm.Notifyf(&vm.Base, "Article %d deleted", id)
	return true
}

// RetireArticle takes the article with id out of service.
func (vm *ArticleViewModel) RetireArticle(ctx context.Context, id int) bool {
	a, ok := mvvm.GetByID[*domain.Article](ctx, &vm.Base, vm.repos.Articles, id)
	if !ok {
		return false
	}
	if a == nil {
		mvvm.Notifyf(&vm.Base, "Article %d does not exist", id)
		return false
	}
	if a.IsRetired() {
		mvvm.Notifyf(&vm.Base, "Article %d is already retired", id)
		return true
	}

	a.Retire(vm.now().UTC())
	if !mvvm.Update[*domain.Article](ctx, &vm.Base, vm.repos.Articles, a) {
		return false
	}
	mvvm.Notifyf(&vm.Base, "Article %d retired", id)
	return true
}

// LoadArticles loads the articles matching filter with their relationships.
// Like the list loads of Initialize, a failure leaves the list empty and is
// returned.
func (vm *ArticleViewModel) LoadArticles(ctx context.Context, filter invPersistence.ArticleFilter) ([]*domain.Article, error) {
	articles, err := vm.repos.Articles.ListDetailed(ctx, filter)
	if err != nil {
		vm.mu.Lock()
		vm.articles = nil
		vm.mu.Unlock()
		return []*domain.Article{}, errors.Join(mvvm.ErrLoadFailed, err)
	}

	vm.mu.Lock()
	vm.articles = articles
	vm.mu.Unlock()
	vm.RaisePropertyChanged(PropArticles)
	return articles, nil
}

// FindArticle returns the article with id and its relationships, or nil.
// A failure is notified and reported as false.
func (vm *ArticleViewModel) FindArticle(ctx context.Context, id int) (*domain.Article, bool) {
	a, err := vm.repos.Articles.GetDetailed(ctx, id)
	if err != nil {
		mvvm.Notifyf(&vm.Base, "Could not load Article %d: %s", id, mvvm.Describe(err))
		return nil, false
	}
	return a, true
}

// Consumer returns the event consumer that keeps the pick lists current
// when any session changes them.
func (vm *ArticleViewModel) Consumer() eventbus.EventConsumer {
	return eventbus.ConsumerFunc{
		Patterns: []string{
			"inventory.article_type.*",
			"inventory.article_model.*",
			"inventory.department.*",
			"inventory.space.*",
			"inventory.user.*",
		},
		Fn: vm.refresh,
	}
}

func (vm *ArticleViewModel) refresh(ctx context.Context, event *sharedDomain.EntityChanged) error {
	switch event.EntityType {
	case "ArticleType":
		return reload[*domain.ArticleType](ctx, &vm.Base, &vm.mu, vm.repos.Types, &vm.types, PropTypes)
	case "ArticleModel":
		return reload[*domain.ArticleModel](ctx, &vm.Base, &vm.mu, vm.repos.Models, &vm.models, PropModels)
	case "Department":
		return reload[*domain.Department](ctx, &vm.Base, &vm.mu, vm.repos.Departments, &vm.departments, PropDepartments)
	case "Space":
		return reload[*domain.Space](ctx, &vm.Base, &vm.mu, vm.repos.Spaces, &vm.spaces, PropSpaces)
	case identity.EntityName:
		return reload[*identity.User](ctx, &vm.Base, &vm.mu, vm.repos.Users, &vm.users, PropUsers)
	}
	return nil
}
