package viewmodels

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/stockroom-app/stockroom/internal/inventory/domain"
	"github.com/stockroom-app/stockroom/internal/presentation/mvvm"
	sharedDomain "github.com/stockroom-app/stockroom/internal/shared/domain"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/eventbus"
)

// CatalogViewModel maintains the reference data: article types,
// departments and spaces.
type CatalogViewModel struct {
	mvvm.Base

	repos *Repositories

	mu          sync.RWMutex
	types       []*domain.ArticleType
	departments []*domain.Department
	spaces      []*domain.Space
}

// NewCatalogViewModel creates a CatalogViewModel.
func NewCatalogViewModel(repos *Repositories, notifier mvvm.Notifier, logger *slog.Logger) *CatalogViewModel {
	return &CatalogViewModel{
		Base:  mvvm.Base{Notifier: notifier, Logger: logger},
		repos: repos,
	}
}

// Initialize loads every list.
func (vm *CatalogViewModel) Initialize(ctx context.Context) error {
	err := errors.Join(
		reload[*domain.ArticleType](ctx, &vm.Base, &vm.mu, vm.repos.Types, &vm.types, PropTypes),
		reload[*domain.Department](ctx, &vm.Base, &vm.mu, vm.repos.Departments, &vm.departments, PropDepartments),
		reload[*domain.Space](ctx, &vm.Base, &vm.mu, vm.repos.Spaces, &vm.spaces, PropSpaces),
	)
	if err != nil {
		vm.Notify("Could not load the catalog: cannot connect to the database")
		return err
	}
	return nil
}

// Types returns the loaded article types.
func (vm *CatalogViewModel) Types() []*domain.ArticleType { return snapshot(&vm.mu, &vm.types) }

// Departments returns the loaded departments.
func (vm *CatalogViewModel) Departments() []*domain.Department {
	return snapshot(&vm.mu, &vm.departments)
}

// Spaces returns the loaded spaces.
func (vm *CatalogViewModel) Spaces() []*domain.Space { return snapshot(&vm.mu, &vm.spaces) }

// AddType creates an article type unless one with the same name exists.
func (vm *CatalogViewModel) AddType(ctx context.Context, name, description string) (*domain.ArticleType, bool) {
	t := &domain.ArticleType{Name: strings.TrimSpace(name), Description: description}
	if !vm.Validate(t) {
		vm.Notify(vm.FirstError())
		return nil, false
	}

	existing, err := vm.repos.Types.FindByName(ctx, t.Name)
	if err != nil {
		mvvm.Notifyf(&vm.Base, "Could not add ArticleType: %s", mvvm.Describe(err))
		return nil, false
	}
	if existing != nil {
		mvvm.Notifyf(&vm.Base, "Article type %q already exists", t.Name)
		return nil, false
	}

	if !mvvm.Add[*domain.ArticleType](ctx, &vm.Base, vm.repos.Types, t) {
		return nil, false
	}
	mvvm.Notifyf(&vm.Base, "Article type %q added", t.Name)
	return t, true
}

// RemoveType deletes an article type that no model uses.
func (vm *CatalogViewModel) RemoveType(ctx context.Context, id int) bool {
	models, err := vm.repos.Models.ListByType(ctx, id)
	if err != nil {
		mvvm.Notifyf(&vm.Base, "Could not delete ArticleType %d: %s", id, mvvm.Describe(err))
		return false
	}
	if len(models) > 0 {
		mvvm.Notifyf(&vm.Base, "Article type %d is used by %d models", id, len(models))
		return false
	}

	if !mvvm.Delete[*domain.ArticleType](ctx, &vm.Base, vm.repos.Types, id) {
		return false
	}
	mvvm.Notifyf(&vm.Base, "Article type %d deleted", id)
	return true
}

// ModelsOfType returns the models of an article type with their type.
func (vm *CatalogViewModel) ModelsOfType(ctx context.Context, typeID int) ([]*domain.ArticleModel, error) {
	var (
		models []*domain.ArticleModel
		err    error
	)
	if typeID == 0 {
		models, err = vm.repos.Models.ListWithType(ctx)
	} else {
		models, err = vm.repos.Models.ListByType(ctx, typeID)
	}
	if err != nil {
		return []*domain.ArticleModel{}, errors.Join(mvvm.ErrLoadFailed, err)
	}
	return models, nil
}

// AddDepartment creates a department.
func (vm *CatalogViewModel) AddDepartment(ctx context.Context, code, name string) (*domain.Department, bool) {
	d := &domain.Department{Code: strings.ToUpper(strings.TrimSpace(code)), Name: strings.TrimSpace(name)}
	if !vm.Validate(d) {
		vm.Notify(vm.FirstError())
		return nil, false
	}
	if !mvvm.Add[*domain.Department](ctx, &vm.Base, vm.repos.Departments, d) {
		return nil, false
	}
	mvvm.Notifyf(&vm.Base, "Department %s added", d.Code)
	return d, true
}

// AddSpace creates a space, optionally owned by a department.
func (vm *CatalogViewModel) AddSpace(ctx context.Context, name, description string, departmentID *int) (*domain.Space, bool) {
	s := &domain.Space{Name: strings.TrimSpace(name), Description: description, DepartmentID: departmentID}
	if !vm.Validate(s) {
		vm.Notify(vm.FirstError())
		return nil, false
	}
	if !mvvm.Add[*domain.Space](ctx, &vm.Base, vm.repos.Spaces, s) {
		return nil, false
	}
	mvvm.Notifyf(&vm.Base, "Space %q added", s.Name)
	return s, true
}

// Consumer returns the event consumer that keeps the lists current.
func (vm *CatalogViewModel) Consumer() eventbus.EventConsumer {
	return eventbus.ConsumerFunc{
		Patterns: []string{"inventory.article_type.*", "inventory.department.*", "inventory.space.*"},
		Fn:       vm.refresh,
	}
}

func (vm *CatalogViewModel) refresh(ctx context.Context, event *sharedDomain.EntityChanged) error {
	switch event.EntityType {
	case "ArticleType":
		return reload[*domain.ArticleType](ctx, &vm.Base, &vm.mu, vm.repos.Types, &vm.types, PropTypes)
	case "Department":
		return reload[*domain.Department](ctx, &vm.Base, &vm.mu, vm.repos.Departments, &vm.departments, PropDepartments)
	case "Space":
		return reload[*domain.Space](ctx, &vm.Base, &vm.mu, vm.repos.Spaces, &vm.spaces, PropSpaces)
	}
	return nil
}
