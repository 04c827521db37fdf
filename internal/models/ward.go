package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ward is a municipal administrative subdivision. Each ward is owned by a
// single ward officer who verifies resolved complaints in it.
type Ward struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Number   int       `gorm:"uniqueIndex;not null" json:"number"`
	AreaName string    `gorm:"size:200;not null" json:"area_name"`
	Zone     string    `gorm:"size:100" json:"zone"`

	OfficerID *uuid.UUID `gorm:"type:uuid;index" json:"officer_id"`
	Officer   *User      `gorm:"foreignKey:OfficerID" json:"officer,omitempty"`

	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (w *Ward) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

type WardResponse struct {
	ID        uuid.UUID  `json:"id"`
	Number    int        `json:"number"`
	AreaName  string     `json:"area_name"`
	Zone      string     `json:"zone"`
	OfficerID *uuid.UUID `json:"officer_id,omitempty"`
	IsActive  bool       `json:"is_active"`
}

func ToWardResponse(w *Ward) WardResponse {
	return WardResponse{
		ID:        w.ID,
		Number:    w.Number,
		AreaName:  w.AreaName,
		Zone:      w.Zone,
		OfficerID: w.OfficerID,
		IsActive:  w.IsActive,
	}
}
