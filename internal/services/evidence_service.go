package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/civictrack/backend/internal/models"
	"github.com/civictrack/backend/internal/repository"
	"github.com/civictrack/backend/internal/storage"
	"github.com/civictrack/backend/internal/workflow"
	"github.com/google/uuid"
)

// MaxEvidencePerStage caps both a single upload batch and the running total
// for a stage.
const MaxEvidencePerStage = 5

// EvidenceFile carries one uploaded file into the evidence pipeline without
// tying the service to multipart parsing.
type EvidenceFile struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

type EvidenceService interface {
	// Attach validates, stores and records a batch of evidence images. The
	// batch is all-or-nothing: no rows are written unless every file landed
	// in object storage.
	Attach(ctx context.Context, actor models.Actor, complaintID uuid.UUID, stage models.EvidenceStage, message string, files []EvidenceFile) ([]models.EvidenceResponse, error)
	ListForComplaint(ctx context.Context, complaintID uuid.UUID) ([]models.EvidenceResponse, error)
	FileURL(ctx context.Context, evidence *models.ComplaintEvidence) string
}

type evidenceService struct {
	complaintRepo repository.ComplaintRepository
	store         storage.ObjectStore
}

func NewEvidenceService(complaintRepo repository.ComplaintRepository, store storage.ObjectStore) EvidenceService {
	return &evidenceService{
		complaintRepo: complaintRepo,
		store:         store,
	}
}

func (s *evidenceService) Attach(ctx context.Context, actor models.Actor, complaintID uuid.UUID, stage models.EvidenceStage, message string, files []EvidenceFile) ([]models.EvidenceResponse, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files provided")
	}
	if len(files) > MaxEvidencePerStage {
		return nil, workflow.ErrTooManyImages
	}
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			return nil, fmt.Errorf("%w: %s", workflow.ErrUnsupportedMediaType, f.ContentType)
		}
	}

	complaint, err := s.complaintRepo.FindByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.checkStage(actor, complaint, stage); err != nil {
		return nil, err
	}

	existing, err := s.complaintRepo.CountEvidenceByStage(ctx, complaintID, stage)
	if err != nil {
		return nil, err
	}
	if existing+int64(len(files)) > MaxEvidencePerStage {
		return nil, workflow.ErrTooManyImages
	}

	// Upload everything before writing any rows, so a storage failure never
	// leaves a half-recorded batch.
	uploaded := make([]string, 0, len(files))
	for _, f := range files {
		objectPath, err := s.store.UploadEvidence(ctx, complaintID.String(), f.Name, f.Reader, f.Size, f.ContentType)
		if err != nil {
			for _, path := range uploaded {
				_ = s.store.DeleteFile(ctx, path)
			}
			return nil, fmt.Errorf("%w: %v", workflow.ErrUpstreamStorage, err)
		}
		uploaded = append(uploaded, objectPath)
	}

	now := time.Now()
	rows := make([]models.ComplaintEvidence, 0, len(files))
	for i, f := range files {
		rows = append(rows, models.ComplaintEvidence{
			ComplaintID:  complaintID,
			FileName:     f.Name,
			ObjectPath:   uploaded[i],
			MimeType:     f.ContentType,
			FileSize:     f.Size,
			Stage:        stage,
			Message:      message,
			UploadedByID: actor.UserID,
			UploadedAt:   now,
		})
	}

	if err := s.complaintRepo.CreateEvidence(ctx, rows); err != nil {
		for _, path := range uploaded {
			_ = s.store.DeleteFile(ctx, path)
		}
		return nil, err
	}

	responses := make([]models.EvidenceResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, models.ToEvidenceResponse(&rows[i], s.FileURL(ctx, &rows[i])))
	}
	return responses, nil
}

// checkStage gates evidence by uploader and complaint state: submission
// photos from the filing citizen, progress shots while work is underway,
// resolution shots while resolving or awaiting review.
func (s *evidenceService) checkStage(actor models.Actor, complaint *models.Complaint, stage models.EvidenceStage) error {
	switch stage {
	case models.StageSubmission:
		if actor.Role != models.RoleAdmin && complaint.CitizenID != actor.UserID {
			return workflow.ErrForbidden
		}
		if complaint.Status != models.StatusSubmitted {
			return workflow.ErrInvalidState
		}
	case models.StageProgress, models.StageResolution:
		if actor.Role != models.RoleAdmin {
			if actor.Role != models.RoleDepartmentOfficer {
				return workflow.ErrForbidden
			}
			if complaint.AssignedOfficerID == nil || *complaint.AssignedOfficerID != actor.UserID {
				return workflow.ErrForbidden
			}
		}
		if stage == models.StageProgress && complaint.Status != models.StatusInProgress {
			return workflow.ErrInvalidState
		}
		if stage == models.StageResolution && complaint.Status != models.StatusInProgress && complaint.Status != models.StatusResolved {
			return workflow.ErrInvalidState
		}
	default:
		return fmt.Errorf("unknown evidence stage: %s", stage)
	}
	return nil
}

func (s *evidenceService) ListForComplaint(ctx context.Context, complaintID uuid.UUID) ([]models.EvidenceResponse, error) {
	rows, err := s.complaintRepo.ListEvidence(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	responses := make([]models.EvidenceResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, models.ToEvidenceResponse(&rows[i], s.FileURL(ctx, &rows[i])))
	}
	return responses, nil
}

func (s *evidenceService) FileURL(ctx context.Context, evidence *models.ComplaintEvidence) string {
	url, err := s.store.GetFileURL(ctx, evidence.ObjectPath)
	if err != nil {
		return ""
	}
	return url
}
