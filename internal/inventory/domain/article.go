package domain

import (
	"errors"
	"fmt"
	"time"

	identity "github.com/stockroom-app/stockroom/internal/identity/domain"
	sharedDomain "github.com/stockroom-app/stockroom/internal/shared/domain"
)

// ErrInvalidStatus is returned for an unknown article status.
var ErrInvalidStatus = errors.New("invalid article status")

// Status is the lifecycle state of an article.
type Status string

const (
	StatusAvailable Status = "available"
	StatusInUse     Status = "in_use"
	StatusRepair    Status = "repair"
	StatusRetired   Status = "retired"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusAvailable, StatusInUse, StatusRepair, StatusRetired}

// ParseStatus parses a status name. Empty means available.
func ParseStatus(value string) (Status, error) {
	if value == "" {
		return StatusAvailable, nil
	}
	for _, s := range Statuses {
		if string(s) == value {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
}

// Article is one physical item. Its ID is assigned by the application
// rather than by the database.
type Article struct {
	ID             int            `gorm:"primaryKey;autoIncrement:false" json:"id"`
	SerialNumber   string         `json:"serial_number" validate:"max=100"`
	Status         Status         `gorm:"not null" json:"status" validate:"required,oneof=available in_use repair retired"`
	ModelID        int            `gorm:"not null" json:"model_id" validate:"required"`
	Model          *ArticleModel  `gorm:"foreignKey:ModelID" json:"model,omitempty" validate:"-"`
	SpaceID        *int           `json:"space_id,omitempty"`
	Space          *Space         `gorm:"foreignKey:SpaceID" json:"space,omitempty" validate:"-"`
	DepartmentID   *int           `json:"department_id,omitempty"`
	Department     *Department    `gorm:"foreignKey:DepartmentID" json:"department,omitempty" validate:"-"`
	RegisteredByID *int           `json:"registered_by_id,omitempty"`
	RegisteredBy   *identity.User `gorm:"foreignKey:RegisteredByID" json:"registered_by,omitempty" validate:"-"`
	ContainerID    *int           `json:"container_id,omitempty"`
	Container      *Article       `gorm:"foreignKey:ContainerID" json:"container,omitempty" validate:"-"`
	RegisteredAt   time.Time      `gorm:"not null" json:"registered_at"`
	RetiredAt      *time.Time     `json:"retired_at,omitempty"`
	Notes          string         `json:"notes" validate:"max=1000"`
	sharedDomain.Record
}

func (a *Article) EntityID() int      { return a.ID }
func (a *Article) EntityName() string { return "Article" }
func (Article) TableName() string     { return "articles" }

// Retire marks the article retired at t.
func (a *Article) Retire(t time.Time) {
	a.Status = StatusRetired
	a.RetiredAt = &t
}

// IsRetired reports whether the article is out of service.
func (a *Article) IsRetired() bool { return a.Status == StatusRetired }
