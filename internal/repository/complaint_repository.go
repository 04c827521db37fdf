package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/civictrack/backend/internal/models"
	"github.com/civictrack/backend/internal/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComplaintRepository interface {
	// Create persists the complaint together with its initial history entry
	// in one transaction.
	Create(ctx context.Context, complaint *models.Complaint, initial *models.ComplaintHistory) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*models.Complaint, error)
	List(ctx context.Context, filter *models.ComplaintFilter) ([]models.Complaint, int64, error)
	GenerateComplaintNumber(ctx context.Context) (string, error)

	// ApplyTransition updates the complaint and appends the history entry as
	// a single atomic unit, guarded by the expected from-status. A stale
	// from-status fails with workflow.ErrInvalidTransition; a failed history
	// write rolls the status change back.
	ApplyTransition(ctx context.Context, id uuid.UUID, from models.ComplaintStatus, updates map[string]interface{}, entry *models.ComplaintHistory) error

	// History is append-only: there are deliberately no update or delete
	// methods for it.
	ListHistory(ctx context.Context, complaintID uuid.UUID) ([]models.ComplaintHistory, error)

	// Evidence is additive only.
	CreateEvidence(ctx context.Context, rows []models.ComplaintEvidence) error
	ListEvidence(ctx context.Context, complaintID uuid.UUID) ([]models.ComplaintEvidence, error)
	CountEvidenceByStage(ctx context.Context, complaintID uuid.UUID, stage models.EvidenceStage) (int64, error)

	SetFeedback(ctx context.Context, id uuid.UUID, rating int, feedback string) error

	GetStats(ctx context.Context, filter *models.ComplaintFilter) (*models.ComplaintStatsResponse, error)

	// SLA sweeps over open complaints.
	MarkSLABreached(ctx context.Context, now time.Time) (int64, error)
	MarkSLAAtRisk(ctx context.Context, now time.Time, warningWindow time.Duration) (int64, error)
}

type complaintRepository struct {
	db *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

// openStatuses are the statuses in which the SLA breach clock is running.
var openStatuses = []models.ComplaintStatus{
	models.StatusSubmitted,
	models.StatusAssigned,
	models.StatusInProgress,
	models.StatusReopened,
}

func (r *complaintRepository) Create(ctx context.Context, complaint *models.Complaint, initial *models.ComplaintHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(complaint).Error; err != nil {
			return err
		}
		initial.ComplaintID = complaint.ID
		return tx.Create(initial).Error
	})
}

func (r *complaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint
	err := r.db.WithContext(ctx).First(&complaint, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Ward").
		Preload("Citizen").
		Preload("AssignedOfficer").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at ASC")
		}).
		Preload("History.ChangedBy").
		Preload("Evidence", func(db *gorm.DB) *gorm.DB {
			return db.Order("uploaded_at ASC")
		}).
		Preload("Evidence.UploadedBy").
		First(&complaint, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) List(ctx context.Context, filter *models.ComplaintFilter) ([]models.Complaint, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Complaint{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.WardID != nil {
		query = query.Where("ward_id = ?", *filter.WardID)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.CitizenID != nil {
		query = query.Where("citizen_id = ?", *filter.CitizenID)
	}
	if filter.AssignedToID != nil {
		query = query.Where("assigned_officer_id = ?", *filter.AssignedToID)
	}
	if filter.SLABreached != nil && *filter.SLABreached {
		query = query.Where("sla_status = ?", models.SLABreached)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ? OR complaint_number ILIKE ?", search, search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var complaints []models.Complaint
	err := query.
		Preload("Department").
		Preload("Ward").
		Preload("Citizen").
		Preload("AssignedOfficer").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&complaints).Error
	if err != nil {
		return nil, 0, err
	}

	return complaints, total, nil
}

func (r *complaintRepository) GenerateComplaintNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("CMP-%d-", year)

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Complaint{}).
		Where("complaint_number LIKE ?", prefix+"%").
		Count(&count).Error
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (r *complaintRepository) ApplyTransition(ctx context.Context, id uuid.UUID, from models.ComplaintStatus, updates map[string]interface{}, entry *models.ComplaintHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Complaint{}).
			Where("id = ? AND status = ?", id, from).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Either the complaint is gone or another actor moved it first.
			return workflow.ErrInvalidTransition
		}
		entry.ComplaintID = id
		return tx.Create(entry).Error
	})
}

func (r *complaintRepository) ListHistory(ctx context.Context, complaintID uuid.UUID) ([]models.ComplaintHistory, error) {
	var entries []models.ComplaintHistory
	err := r.db.WithContext(ctx).
		Preload("ChangedBy").
		Where("complaint_id = ?", complaintID).
		Order("changed_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *complaintRepository) CreateEvidence(ctx context.Context, rows []models.ComplaintEvidence) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *complaintRepository) ListEvidence(ctx context.Context, complaintID uuid.UUID) ([]models.ComplaintEvidence, error) {
	var rows []models.ComplaintEvidence
	err := r.db.WithContext(ctx).
		Preload("UploadedBy").
		Where("complaint_id = ?", complaintID).
		Order("uploaded_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *complaintRepository) CountEvidenceByStage(ctx context.Context, complaintID uuid.UUID, stage models.EvidenceStage) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ComplaintEvidence{}).
		Where("complaint_id = ? AND stage = ?", complaintID, stage).
		Count(&count).Error
	return count, err
}

func (r *complaintRepository) SetFeedback(ctx context.Context, id uuid.UUID, rating int, feedback string) error {
	return r.db.WithContext(ctx).Model(&models.Complaint{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating":   rating,
			"feedback": feedback,
		}).Error
}

func (r *complaintRepository) GetStats(ctx context.Context, filter *models.ComplaintFilter) (*models.ComplaintStatsResponse, error) {
	query := r.db.WithContext(ctx).Model(&models.Complaint{})
	if filter != nil {
		if filter.WardID != nil {
			query = query.Where("ward_id = ?", *filter.WardID)
		}
		if filter.DepartmentID != nil {
			query = query.Where("department_id = ?", *filter.DepartmentID)
		}
		if filter.CitizenID != nil {
			query = query.Where("citizen_id = ?", *filter.CitizenID)
		}
	}

	stats := &models.ComplaintStatsResponse{
		ByStatus: make(map[models.ComplaintStatus]int64),
	}

	if err := query.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status models.ComplaintStatus
		Count  int64
	}
	var counts []statusCount
	if err := query.Session(&gorm.Session{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.ByStatus[c.Status] = c.Count
	}

	if err := query.Session(&gorm.Session{}).
		Where("sla_status = ?", models.SLABreached).
		Count(&stats.SLABreached).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *complaintRepository) MarkSLABreached(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Complaint{}).
		Where("status IN ? AND sla_deadline < ? AND sla_status <> ?",
			openStatuses, now, models.SLABreached).
		Updates(map[string]interface{}{"sla_status": models.SLABreached})
	return result.RowsAffected, result.Error
}

func (r *complaintRepository) MarkSLAAtRisk(ctx context.Context, now time.Time, warningWindow time.Duration) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Complaint{}).
		Where("status IN ? AND sla_deadline >= ? AND sla_deadline < ? AND sla_status = ?",
			openStatuses, now, now.Add(warningWindow), models.SLAOnTrack).
		Updates(map[string]interface{}{"sla_status": models.SLAAtRisk})
	return result.RowsAffected, result.Error
}
