package persistence

import (
	"context"
	"log/slog"

	"github.com/stockroom-app/stockroom/internal/inventory/domain"
	sharedPersistence "github.com/stockroom-app/stockroom/internal/shared/infrastructure/persistence"
)

// ArticleTypeRepository stores article types.
type ArticleTypeRepository struct {
	*sharedPersistence.Repository[domain.ArticleType, *domain.ArticleType]
}

// NewArticleTypeRepository creates an ArticleTypeRepository over pc.
func NewArticleTypeRepository(pc *sharedPersistence.Context, logger *slog.Logger) *ArticleTypeRepository {
	return &ArticleTypeRepository{sharedPersistence.NewRepository[domain.ArticleType](pc, logger)}
}

// FindByName returns the type called name, or nil.
func (r *ArticleTypeRepository) FindByName(ctx context.Context, name string) (*domain.ArticleType, error) {
	return r.FirstOrDefault(ctx, sharedPersistence.Where("name = ?", name), sharedPersistence.Tracked())
}

// ArticleModelRepository stores article models.
type ArticleModelRepository struct {
	*sharedPersistence.Repository[domain.ArticleModel, *domain.ArticleModel]
}

// NewArticleModelRepository creates an ArticleModelRepository over pc.
func NewArticleModelRepository(pc *sharedPersistence.Context, logger *slog.Logger) *ArticleModelRepository {
	return &ArticleModelRepository{sharedPersistence.NewRepository[domain.ArticleModel](pc, logger)}
}

// ListByType returns the models of an article type with their type loaded.
func (r *ArticleModelRepository) ListByType(ctx context.Context, typeID int) ([]*domain.ArticleModel, error) {
	return r.Query(sharedPersistence.Include("Type")).
		Where("type_id = ?", typeID).
		Order("name").
		List(ctx)
}

// ListWithType returns every model with its type loaded.
func (r *ArticleModelRepository) ListWithType(ctx context.Context) ([]*domain.ArticleModel, error) {
	return r.Query(sharedPersistence.Include("Type")).Order("name").List(ctx)
}

// DepartmentRepository stores departments.
type DepartmentRepository struct {
	*sharedPersistence.Repository[domain.Department, *domain.Department]
}

// NewDepartmentRepository creates a DepartmentRepository over pc.
func NewDepartmentRepository(pc *sharedPersistence.Context, logger *slog.Logger) *DepartmentRepository {
	return &DepartmentRepository{sharedPersistence.NewRepository[domain.Department](pc, logger)}
}

// SpaceRepository stores spaces.
type SpaceRepository struct {
	*sharedPersistence.Repository[domain.Space, *domain.Space]
}

// NewSpaceRepository creates a SpaceRepository over pc.
func NewSpaceRepository(pc *sharedPersistence.Context, logger *slog.Logger) *SpaceRepository {
	return &SpaceRepository{sharedPersistence.NewRepository[domain.Space](pc, logger)}
}
