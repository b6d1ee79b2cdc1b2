package domain

import (
	sharedDomain "github.com/stockroom-app/stockroom/internal/shared/domain"
)

// Department owns articles and spaces.
type Department struct {
	ID   int    `gorm:"primaryKey" json:"id"`
	Code string `gorm:"not null;uniqueIndex" json:"code" validate:"required,max=20"`
	Name string `gorm:"not null" json:"name" validate:"required,max=100"`
	sharedDomain.Record
}

func (d *Department) EntityID() int      { return d.ID }
func (d *Department) EntityName() string { return "Department" }
func (Department) TableName() string     { return "departments" }
func (d *Department) String() string     { return d.Code + " " + d.Name }

// Space is a room or storage location.
type Space struct {
	ID           int         `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"not null" json:"name" validate:"required,max=100"`
	Description  string      `json:"description" validate:"max=500"`
	DepartmentID *int        `json:"department_id,omitempty"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty" validate:"-"`
	sharedDomain.Record
}

func (s *Space) EntityID() int      { return s.ID }
func (s *Space) EntityName() string { return "Space" }
func (Space) TableName() string     { return "spaces" }
func (s *Space) String() string     { return s.Name }
