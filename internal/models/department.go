package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Department is a functional municipal unit (sanitation, roads, ...) that
// handles complaints by category. Its default priority drives the SLA
// deadline computed at complaint creation.
type Department struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"not null;size:100;uniqueIndex" json:"name"`
	Code        string    `gorm:"size:50;uniqueIndex" json:"code"`
	Description string    `gorm:"size:500" json:"description"`

	DefaultPriority Priority `gorm:"size:20;default:'MEDIUM'" json:"default_priority"`

	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type DepartmentResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Code            string    `json:"code"`
	Description     string    `json:"description"`
	DefaultPriority Priority  `json:"default_priority"`
	IsActive        bool      `json:"is_active"`
}

func ToDepartmentResponse(d *Department) DepartmentResponse {
	return DepartmentResponse{
		ID:              d.ID,
		Name:            d.Name,
		Code:            d.Code,
		Description:     d.Description,
		DefaultPriority: d.DefaultPriority,
		IsActive:        d.IsActive,
	}
}
