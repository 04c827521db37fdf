package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplaintStatus is a lifecycle state in the complaint workflow.
type ComplaintStatus string

const (
	StatusSubmitted  ComplaintStatus = "SUBMITTED"
	StatusAssigned   ComplaintStatus = "ASSIGNED"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusResolved   ComplaintStatus = "RESOLVED"
	StatusApproved   ComplaintStatus = "APPROVED"
	StatusClosed     ComplaintStatus = "CLOSED"
	StatusReopened   ComplaintStatus = "REOPENED"
)

// Priority drives the SLA deadline computed at creation.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// SLAStatus is monotonic toward BREACHED while the complaint is open and
// frozen once it reaches RESOLVED or later.
type SLAStatus string

const (
	SLAOnTrack  SLAStatus = "ON_TRACK"
	SLAAtRisk   SLAStatus = "AT_RISK"
	SLABreached SLAStatus = "BREACHED"
)

// EvidenceStage tags an image with the workflow phase it documents.
type EvidenceStage string

const (
	// StageSubmission holds the photos a citizen files the complaint with.
	StageSubmission EvidenceStage = "SUBMISSION"
	StageProgress   EvidenceStage = "PROGRESS"
	StageResolution EvidenceStage = "RESOLUTION"
)

// ComplaintAction is a client-submitted intent. Clients never send a target
// status literal; the server derives the transition from the action.
type ComplaintAction string

const (
	ActionAssign    ComplaintAction = "assign"
	ActionStartWork ComplaintAction = "start-work"
	ActionResolve   ComplaintAction = "resolve"
	ActionApprove   ComplaintAction = "approve"
	ActionReject    ComplaintAction = "reject"
	ActionClose     ComplaintAction = "close"
	ActionReopen    ComplaintAction = "reopen"
)

// Complaint is the central workflow entity. Complaints are never deleted;
// CLOSED records are retained for audit and reporting.
type Complaint struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ComplaintNumber string    `gorm:"size:50;uniqueIndex;not null" json:"complaint_number"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`

	DepartmentID uuid.UUID   `gorm:"type:uuid;index;not null" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	WardID       uuid.UUID   `gorm:"type:uuid;index;not null" json:"ward_id"`
	Ward         *Ward       `gorm:"foreignKey:WardID" json:"ward,omitempty"`

	Address   string   `gorm:"size:500" json:"address"`
	Latitude  *float64 `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude *float64 `gorm:"type:decimal(11,8)" json:"longitude"`

	Status   ComplaintStatus `gorm:"size:20;index;not null" json:"status"`
	Priority Priority        `gorm:"size:20;not null" json:"priority"`

	// SLA. Deadline is computed once at creation and never recomputed.
	SLADeadline time.Time `gorm:"not null" json:"sla_deadline"`
	SLAStatus   SLAStatus `gorm:"size:20;default:'ON_TRACK'" json:"sla_status"`

	// Ownership
	CitizenID         uuid.UUID  `gorm:"type:uuid;index;not null" json:"citizen_id"`
	Citizen           *User      `gorm:"foreignKey:CitizenID" json:"citizen,omitempty"`
	AssignedOfficerID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_officer_id"`
	AssignedOfficer   *User      `gorm:"foreignKey:AssignedOfficerID" json:"assigned_officer,omitempty"`
	WardOfficerID     *uuid.UUID `gorm:"type:uuid;index" json:"ward_officer_id"`

	ResolvedAt *time.Time `json:"resolved_at"`
	ClosedAt   *time.Time `json:"closed_at"`

	// Citizen feedback, settable only after CLOSED.
	Rating   *int   `json:"rating"`
	Feedback string `gorm:"type:text" json:"feedback"`

	History  []ComplaintHistory  `gorm:"foreignKey:ComplaintID" json:"history,omitempty"`
	Evidence []ComplaintEvidence `gorm:"foreignKey:ComplaintID" json:"evidence,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsOpen reports whether the breach clock is still running.
func (c *Complaint) IsOpen() bool {
	switch c.Status {
	case StatusResolved, StatusApproved, StatusClosed:
		return false
	}
	return true
}

// ComplaintHistory is one append-only audit trail entry. Rows are written in
// the same transaction as the status change they record and are never
// updated, reordered or deleted.
type ComplaintHistory struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ComplaintID uuid.UUID  `gorm:"type:uuid;index;not null" json:"complaint_id"`
	Complaint   *Complaint `gorm:"foreignKey:ComplaintID" json:"complaint,omitempty"`

	// Status is the status transitioned to.
	Status      ComplaintStatus `gorm:"size:20;not null" json:"status"`
	ChangedByID uuid.UUID       `gorm:"type:uuid;index;not null" json:"changed_by_id"`
	ChangedBy   *User           `gorm:"foreignKey:ChangedByID" json:"changed_by,omitempty"`
	ChangedRole Role            `gorm:"size:30;not null" json:"changed_role"`
	Remarks     string          `gorm:"type:text" json:"remarks"`

	ChangedAt time.Time `gorm:"index;not null" json:"changed_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *ComplaintHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// ComplaintEvidence is a stage-tagged image attached to a complaint.
// Evidence is additive only; nothing ever overwrites or removes prior rows.
type ComplaintEvidence struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ComplaintID uuid.UUID  `gorm:"type:uuid;index;not null" json:"complaint_id"`
	Complaint   *Complaint `gorm:"foreignKey:ComplaintID" json:"complaint,omitempty"`

	FileName   string        `gorm:"size:255;not null" json:"file_name"`
	ObjectPath string        `gorm:"size:500;not null" json:"object_path"`
	MimeType   string        `gorm:"size:100" json:"mime_type"`
	FileSize   int64         `json:"file_size"`
	Stage      EvidenceStage `gorm:"size:20;index;not null" json:"stage"`
	Message    string        `gorm:"size:500" json:"message"`

	UploadedByID uuid.UUID `gorm:"type:uuid;index;not null" json:"uploaded_by_id"`
	UploadedBy   *User     `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
	UploadedAt   time.Time `gorm:"index;not null" json:"uploaded_at"`
}

func (e *ComplaintEvidence) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Request types

type ComplaintCreateRequest struct {
	Title        string   `json:"title" form:"title" validate:"required,min=5,max=200"`
	Description  string   `json:"description" form:"description" validate:"required,min=10"`
	DepartmentID string   `json:"department_id" form:"department_id" validate:"required,uuid"`
	WardID       string   `json:"ward_id" form:"ward_id" validate:"required,uuid"`
	Address      string   `json:"address" form:"address" validate:"max=500"`
	Latitude     *float64 `json:"latitude" form:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude" form:"longitude" validate:"omitempty,min=-180,max=180"`
}

// ComplaintActionRequest carries the payload for a dispatched action. The
// action itself comes from the route, never from the body.
type ComplaintActionRequest struct {
	Remarks   string  `json:"remarks" form:"remarks"`
	OfficerID *string `json:"officer_id" form:"officer_id" validate:"omitempty,uuid"`
	Message   string  `json:"message" form:"message" validate:"max=500"`
}

type ComplaintFeedbackRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback" validate:"max=2000"`
}

type ComplaintFilter struct {
	Status       *ComplaintStatus `json:"status"`
	WardID       *uuid.UUID       `json:"ward_id"`
	DepartmentID *uuid.UUID       `json:"department_id"`
	CitizenID    *uuid.UUID       `json:"citizen_id"`
	AssignedToID *uuid.UUID       `json:"assigned_to_id"`
	SLABreached  *bool            `json:"sla_breached"`
	Search       string           `json:"search"`
	Page         int              `json:"page"`
	Limit        int              `json:"limit"`
}

// Response types

type ComplaintResponse struct {
	ID                uuid.UUID       `json:"id"`
	ComplaintNumber   string          `json:"complaint_number"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	DepartmentID      uuid.UUID       `json:"department_id"`
	DepartmentName    string          `json:"department_name"`
	WardID            uuid.UUID       `json:"ward_id"`
	WardName          string          `json:"ward_name"`
	Address           string          `json:"address"`
	Latitude          *float64        `json:"latitude,omitempty"`
	Longitude         *float64        `json:"longitude,omitempty"`
	Status            ComplaintStatus `json:"status"`
	Priority          Priority        `json:"priority"`
	SLADeadline       time.Time       `json:"sla_deadline"`
	SLAStatus         SLAStatus       `json:"sla_status"`
	Citizen           *UserResponse   `json:"citizen,omitempty"`
	AssignedOfficerID *uuid.UUID      `json:"assigned_officer_id,omitempty"`
	AssignedOfficer   *UserResponse   `json:"assigned_officer,omitempty"`
	WardOfficerID     *uuid.UUID      `json:"ward_officer_id,omitempty"`
	ResolvedAt        *time.Time      `json:"resolved_at,omitempty"`
	ClosedAt          *time.Time      `json:"closed_at,omitempty"`
	Rating            *int            `json:"rating,omitempty"`
	Feedback          string          `json:"feedback,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// AllowedActions lists what the requesting actor may do next, so the
	// presentation layer never re-derives workflow logic.
	AllowedActions []ComplaintAction `json:"allowed_actions,omitempty"`
}

type ComplaintDetailResponse struct {
	ComplaintResponse
	History  []HistoryEntryResponse `json:"history"`
	Evidence []EvidenceResponse     `json:"evidence"`
}

type HistoryEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Status      ComplaintStatus `json:"status"`
	ChangedBy   *UserResponse   `json:"changed_by,omitempty"`
	ChangedRole Role            `json:"changed_role"`
	Remarks     string          `json:"remarks,omitempty"`
	ChangedAt   time.Time       `json:"changed_at"`
}

type EvidenceResponse struct {
	ID         uuid.UUID     `json:"id"`
	FileName   string        `json:"file_name"`
	URL        string        `json:"url,omitempty"`
	MimeType   string        `json:"mime_type"`
	FileSize   int64         `json:"file_size"`
	Stage      EvidenceStage `json:"stage"`
	Message    string        `json:"message,omitempty"`
	UploadedBy *UserResponse `json:"uploaded_by,omitempty"`
	UploadedAt time.Time     `json:"uploaded_at"`
}

type ComplaintStatsResponse struct {
	Total       int64                     `json:"total"`
	SLABreached int64                     `json:"sla_breached"`
	ByStatus    map[ComplaintStatus]int64 `json:"by_status"`
}

// Converter functions

func ToComplaintResponse(c *Complaint) ComplaintResponse {
	resp := ComplaintResponse{
		ID:                c.ID,
		ComplaintNumber:   c.ComplaintNumber,
		Title:             c.Title,
		Description:       c.Description,
		DepartmentID:      c.DepartmentID,
		WardID:            c.WardID,
		Address:           c.Address,
		Latitude:          c.Latitude,
		Longitude:         c.Longitude,
		Status:            c.Status,
		Priority:          c.Priority,
		SLADeadline:       c.SLADeadline,
		SLAStatus:         c.SLAStatus,
		AssignedOfficerID: c.AssignedOfficerID,
		WardOfficerID:     c.WardOfficerID,
		ResolvedAt:        c.ResolvedAt,
		ClosedAt:          c.ClosedAt,
		Rating:            c.Rating,
		Feedback:          c.Feedback,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}

	if c.Department != nil {
		resp.DepartmentName = c.Department.Name
	}
	if c.Ward != nil {
		resp.WardName = c.Ward.AreaName
	}
	if c.Citizen != nil {
		citizen := ToUserResponse(c.Citizen)
		resp.Citizen = &citizen
	}
	if c.AssignedOfficer != nil {
		officer := ToUserResponse(c.AssignedOfficer)
		resp.AssignedOfficer = &officer
	}

	return resp
}

func ToHistoryEntryResponse(h *ComplaintHistory) HistoryEntryResponse {
	resp := HistoryEntryResponse{
		ID:          h.ID,
		Status:      h.Status,
		ChangedRole: h.ChangedRole,
		Remarks:     h.Remarks,
		ChangedAt:   h.ChangedAt,
	}

	if h.ChangedBy != nil {
		changedBy := ToUserResponse(h.ChangedBy)
		resp.ChangedBy = &changedBy
	}

	return resp
}

func ToEvidenceResponse(e *ComplaintEvidence, url string) EvidenceResponse {
	resp := EvidenceResponse{
		ID:         e.ID,
		FileName:   e.FileName,
		URL:        url,
		MimeType:   e.MimeType,
		FileSize:   e.FileSize,
		Stage:      e.Stage,
		Message:    e.Message,
		UploadedAt: e.UploadedAt,
	}

	if e.UploadedBy != nil {
		uploader := ToUserResponse(e.UploadedBy)
		resp.UploadedBy = &uploader
	}

	return resp
}
