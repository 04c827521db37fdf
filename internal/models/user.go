package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the single tagged role a user holds. The permission table in the
// workflow dispatcher is keyed on it; there is no separate permission entity.
type Role string

const (
	RoleCitizen           Role = "CITIZEN"
	RoleDepartmentOfficer Role = "DEPARTMENT_OFFICER"
	RoleWardOfficer       Role = "WARD_OFFICER"
	RoleAdmin             Role = "ADMIN"
	// RoleSystem marks automatic transitions (auto-assignment, SLA sweeps).
	RoleSystem Role = "SYSTEM"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `gorm:"size:100" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Role      Role      `gorm:"size:30;index;not null;default:'CITIZEN'" json:"role"`

	// Citizens and ward officers belong to a ward; department officers to a
	// department.
	WardID       *uuid.UUID  `gorm:"type:uuid;index" json:"ward_id"`
	Ward         *Ward       `gorm:"foreignKey:WardID" json:"ward,omitempty"`
	DepartmentID *uuid.UUID  `gorm:"type:uuid;index" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`

	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Actor is the explicit session identity injected into every dispatched
// action. It is built from validated JWT claims at request time; nothing in
// the workflow engine reads ambient session state.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// Request types

type UserRegisterRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6"`
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"max=100"`
	Phone     string  `json:"phone" validate:"max=20"`
	WardID    *string `json:"ward_id" validate:"omitempty,uuid"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserActivationRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type UserFilter struct {
	Role     *Role  `json:"role"`
	IsActive *bool  `json:"is_active"`
	Search   string `json:"search"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
}

// Response types

type UserResponse struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone"`
	Role         Role       `json:"role"`
	WardID       *uuid.UUID `json:"ward_id,omitempty"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		Role:         u.Role,
		WardID:       u.WardID,
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
	}
}
