package persistence

import (
	"context"
	"log/slog"

	"github.com/stockroom-app/stockroom/internal/inventory/domain"
	sharedPersistence "github.com/stockroom-app/stockroom/internal/shared/infrastructure/persistence"
)

// articleDetails are the relationships shown with an article.
var articleDetails = []string{"Model", "Model.Type", "Space", "Department", "RegisteredBy", "Container"}

// ArticleFilter narrows ListDetailed. Zero values match everything.
type ArticleFilter struct {
	Status       domain.Status
	ModelID      int
	SpaceID      int
	DepartmentID int
}

func (f ArticleFilter) scopes() []sharedPersistence.Scope {
	var scopes []sharedPersistence.Scope
	if f.Status != "" {
		scopes = append(scopes, sharedPersistence.Where("status = ?", f.Status))
	}
	if f.ModelID != 0 {
		scopes = append(scopes, sharedPersistence.Where("model_id = ?", f.ModelID))
	}
	if f.SpaceID != 0 {
		scopes = append(scopes, sharedPersistence.Where("space_id = ?", f.SpaceID))
	}
	if f.DepartmentID != 0 {
		scopes = append(scopes, sharedPersistence.Where("department_id = ?", f.DepartmentID))
	}
	return scopes
}

// ArticleRepository stores articles.
type ArticleRepository struct {
	*sharedPersistence.Repository[domain.Article, *domain.Article]
}

// NewArticleRepository creates an ArticleRepository over pc.
func NewArticleRepository(pc *sharedPersistence.Context, logger *slog.Logger) *ArticleRepository {
	return &ArticleRepository{sharedPersistence.NewRepository[domain.Article](pc, logger)}
}

// ListDetailed returns the articles matching filter, ordered by id, with
// their model, type, space, department, registering user and container loaded.
func (r *ArticleRepository) ListDetailed(ctx context.Context, filter ArticleFilter) ([]*domain.Article, error) {
	return r.Query(sharedPersistence.Include(articleDetails...)).
		Scopes(filter.scopes()...).
		Order("id").
		List(ctx)
}

// GetDetailed returns one article with its relationships loaded, or nil.
func (r *ArticleRepository) GetDetailed(ctx context.Context, id int) (*domain.Article, error) {
	return r.Query(sharedPersistence.Include(articleDetails...)).Where("id = ?", id).First(ctx)
}

// NextID returns the identifier the next registered article gets.
func (r *ArticleRepository) NextID(ctx context.Context) (int, error) {
	last, _, err := r.GetLastID(ctx, "ID")
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

// CountByModel returns how many articles are instances of a model.
func (r *ArticleRepository) CountByModel(ctx context.Context, modelID int) (int64, error) {
	return r.Query().Where("model_id = ?", modelID).Count(ctx)
}
