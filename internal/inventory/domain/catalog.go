// Package domain holds the inventory records: articles, the models and
// types they are instances of, and the departments and spaces that hold them.
package domain

import (
	sharedDomain "github.com/stockroom-app/stockroom/internal/shared/domain"
)

// ArticleType classifies article models, e.g. "Laptop" or "Projector".
type ArticleType struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;uniqueIndex" json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	sharedDomain.Record
}

func (t *ArticleType) EntityID() int      { return t.ID }
func (t *ArticleType) EntityName() string { return "ArticleType" }
func (ArticleType) TableName() string     { return "article_types" }
func (t *ArticleType) String() string     { return t.Name }

// ArticleModel is a make and model of which individual articles are registered.
type ArticleModel struct {
	ID          int          `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"not null" json:"name" validate:"required,max=100"`
	Description string       `json:"description" validate:"max=500"`
	Brand       string       `json:"brand" validate:"max=100"`
	Model       string       `json:"model" validate:"max=100"`
	TypeID      int          `gorm:"not null" json:"type_id" validate:"required_without=Type"`
	Type        *ArticleType `gorm:"foreignKey:TypeID" json:"type,omitempty" validate:"-"`
	sharedDomain.Record
}

func (m *ArticleModel) EntityID() int      { return m.ID }
func (m *ArticleModel) EntityName() string { return "ArticleModel" }
func (ArticleModel) TableName() string     { return "article_models" }

func (m *ArticleModel) String() string {
	if m.Brand == "" {
		return m.Name
	}
	return m.Brand + " " + m.Name
}
