package services

import (
	"context"
	"fmt"
	"time"

	"github.com/civictrack/backend/internal/models"
	"github.com/civictrack/backend/internal/repository"
	"github.com/civictrack/backend/internal/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComplaintService interface {
	// Create files the complaint; submission photos, when present, are
	// attached under the SUBMISSION stage.
	Create(ctx context.Context, actor models.Actor, req *models.ComplaintCreateRequest, files []EvidenceFile) (*models.ComplaintResponse, error)
	// Dispatch executes a named workflow action against a complaint on behalf
	// of the actor. The action name is resolved against the transition table;
	// the same table drives the allowed_actions field on responses. The
	// resolve action may carry RESOLUTION evidence images in the same call.
	Dispatch(ctx context.Context, actor models.Actor, complaintID uuid.UUID, action models.ComplaintAction, req *models.ComplaintActionRequest, files []EvidenceFile) (*models.ComplaintResponse, error)
	GetByID(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.ComplaintDetailResponse, error)
	List(ctx context.Context, actor models.Actor, filter *models.ComplaintFilter) ([]models.ComplaintResponse, int64, error)
	ListHistory(ctx context.Context, actor models.Actor, complaintID uuid.UUID) ([]models.HistoryEntryResponse, error)
	SubmitFeedback(ctx context.Context, actor models.Actor, complaintID uuid.UUID, req *models.ComplaintFeedbackRequest) error
	GetStats(ctx context.Context, actor models.Actor) (*models.ComplaintStatsResponse, error)
}

type complaintService struct {
	complaintRepo  repository.ComplaintRepository
	userRepo       repository.UserRepository
	wardRepo       repository.WardRepository
	departmentRepo repository.DepartmentRepository
	slaEngine      *workflow.SLAEngine
	evidenceStore  EvidenceService
}

func NewComplaintService(
	complaintRepo repository.ComplaintRepository,
	userRepo repository.UserRepository,
	wardRepo repository.WardRepository,
	departmentRepo repository.DepartmentRepository,
	slaEngine *workflow.SLAEngine,
	evidenceStore EvidenceService,
) ComplaintService {
	return &complaintService{
		complaintRepo:  complaintRepo,
		userRepo:       userRepo,
		wardRepo:       wardRepo,
		departmentRepo: departmentRepo,
		slaEngine:      slaEngine,
		evidenceStore:  evidenceStore,
	}
}

func (s *complaintService) Create(ctx context.Context, actor models.Actor, req *models.ComplaintCreateRequest, files []EvidenceFile) (*models.ComplaintResponse, error) {
	departmentID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("invalid department id: %w", err)
	}
	wardID, err := uuid.Parse(req.WardID)
	if err != nil {
		return nil, fmt.Errorf("invalid ward id: %w", err)
	}

	department, err := s.departmentRepo.FindByID(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("department not found: %w", err)
	}
	ward, err := s.wardRepo.FindByID(ctx, wardID)
	if err != nil {
		return nil, fmt.Errorf("ward not found: %w", err)
	}

	number, err := s.complaintRepo.GenerateComplaintNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate complaint number: %w", err)
	}

	now := time.Now()
	priority := department.DefaultPriority
	complaint := &models.Complaint{
		ComplaintNumber: number,
		Title:           req.Title,
		Description:     req.Description,
		DepartmentID:    department.ID,
		WardID:          ward.ID,
		Address:         req.Address,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Status:          workflow.InitialStatus,
		Priority:        priority,
		SLADeadline:     s.slaEngine.ComputeDeadline(now, priority),
		SLAStatus:       models.SLAOnTrack,
		CitizenID:       actor.UserID,
		WardOfficerID:   ward.OfficerID,
	}

	initial := &models.ComplaintHistory{
		Status:      workflow.InitialStatus,
		ChangedByID: actor.UserID,
		ChangedRole: actor.Role,
		Remarks:     "Complaint submitted",
		ChangedAt:   now,
	}

	if err := s.complaintRepo.Create(ctx, complaint, initial); err != nil {
		return nil, fmt.Errorf("failed to create complaint: %w", err)
	}

	if len(files) > 0 {
		if _, err := s.evidenceStore.Attach(ctx, actor, complaint.ID, models.StageSubmission, "", files); err != nil {
			return nil, err
		}
	}

	resp := models.ToComplaintResponse(complaint)
	resp.AllowedActions = workflow.AllowedActions(actor.Role, complaint.Status)
	return &resp, nil
}

func (s *complaintService) Dispatch(ctx context.Context, actor models.Actor, complaintID uuid.UUID, action models.ComplaintAction, req *models.ComplaintActionRequest, files []EvidenceFile) (*models.ComplaintResponse, error) {
	if len(files) > 0 && action != models.ActionResolve {
		return nil, fmt.Errorf("%w: only the resolve action accepts images", workflow.ErrInvalidState)
	}

	complaint, err := s.complaintRepo.FindByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnership(actor, complaint, action); err != nil {
		return nil, err
	}

	rule, err := workflow.ResolveAction(action, actor.Role, complaint.Status)
	if err != nil {
		return nil, err
	}
	if err := workflow.CheckRemarks(rule, req.Remarks); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status": rule.To,
	}

	switch action {
	case models.ActionAssign:
		officerID, err := s.resolveOfficer(ctx, complaint, req.OfficerID)
		if err != nil {
			return nil, err
		}
		updates["assigned_officer_id"] = officerID
	case models.ActionResolve:
		updates["resolved_at"] = now
		// The SLA status freezes here. Settle it against the deadline one
		// last time so a late resolution is recorded as BREACHED.
		updates["sla_status"] = s.settleSLA(complaint, now)
	case models.ActionReject:
		updates["resolved_at"] = nil
	case models.ActionClose:
		updates["closed_at"] = now
		if complaint.Status == models.StatusResolved {
			updates["sla_status"] = s.settleSLA(complaint, now)
		}
	case models.ActionReopen:
		updates["resolved_at"] = nil
		updates["closed_at"] = nil
	}

	entry := &models.ComplaintHistory{
		Status:      rule.To,
		ChangedByID: actor.UserID,
		ChangedRole: actor.Role,
		Remarks:     req.Remarks,
		ChangedAt:   now,
	}

	if err := s.complaintRepo.ApplyTransition(ctx, complaint.ID, complaint.Status, updates, entry); err != nil {
		return nil, err
	}

	// Resolution images ride along with the resolve action so officers
	// close out work in one request.
	if action == models.ActionResolve && len(files) > 0 {
		if _, err := s.evidenceStore.Attach(ctx, actor, complaint.ID, models.StageResolution, req.Message, files); err != nil {
			return nil, err
		}
	}

	updated, err := s.complaintRepo.FindByIDWithRelations(ctx, complaint.ID)
	if err != nil {
		return nil, err
	}

	resp := models.ToComplaintResponse(updated)
	resp.AllowedActions = workflow.AllowedActions(actor.Role, updated.Status)
	return &resp, nil
}

// settleSLA returns the final SLA status at the moment a complaint leaves the
// open set. BREACHED is sticky; otherwise late settlement wins.
func (s *complaintService) settleSLA(c *models.Complaint, now time.Time) models.SLAStatus {
	if c.SLAStatus == models.SLABreached || now.After(c.SLADeadline) {
		return models.SLABreached
	}
	return c.SLAStatus
}

// resolveOfficer determines the assignee for an assign action: an explicit
// officer from the request, otherwise the least-loaded active officer in the
// complaint's department.
func (s *complaintService) resolveOfficer(ctx context.Context, complaint *models.Complaint, officerID *string) (uuid.UUID, error) {
	if officerID != nil && *officerID != "" {
		id, err := uuid.Parse(*officerID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid officer id: %w", err)
		}
		officer, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			return uuid.Nil, fmt.Errorf("officer not found: %w", err)
		}
		if officer.Role != models.RoleDepartmentOfficer || !officer.IsActive {
			return uuid.Nil, workflow.ErrForbidden
		}
		return officer.ID, nil
	}

	officer, err := s.userRepo.FindDepartmentOfficer(ctx, complaint.DepartmentID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("no available officer for department: %w", err)
	}
	return officer.ID, nil
}

// checkOwnership enforces record-level scoping on top of the role gate:
// citizens may only act on their own complaints, officers only within their
// department or ward.
func (s *complaintService) checkOwnership(actor models.Actor, complaint *models.Complaint, action models.ComplaintAction) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleSystem:
		return nil
	case models.RoleCitizen:
		if complaint.CitizenID != actor.UserID {
			return workflow.ErrForbidden
		}
	case models.RoleDepartmentOfficer:
		if complaint.AssignedOfficerID == nil || *complaint.AssignedOfficerID != actor.UserID {
			return workflow.ErrForbidden
		}
	case models.RoleWardOfficer:
		if complaint.WardOfficerID != nil && *complaint.WardOfficerID != actor.UserID {
			return workflow.ErrForbidden
		}
	}
	return nil
}

func (s *complaintService) GetByID(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.ComplaintDetailResponse, error) {
	complaint, err := s.complaintRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkViewScope(actor, complaint); err != nil {
		return nil, err
	}

	resp := models.ToComplaintResponse(complaint)
	resp.AllowedActions = workflow.AllowedActions(actor.Role, complaint.Status)

	detail := &models.ComplaintDetailResponse{
		ComplaintResponse: resp,
	}
	for i := range complaint.History {
		detail.History = append(detail.History, models.ToHistoryEntryResponse(&complaint.History[i]))
	}
	for i := range complaint.Evidence {
		url := s.evidenceStore.FileURL(ctx, &complaint.Evidence[i])
		detail.Evidence = append(detail.Evidence, models.ToEvidenceResponse(&complaint.Evidence[i], url))
	}
	return detail, nil
}

func (s *complaintService) checkViewScope(actor models.Actor, complaint *models.Complaint) error {
	switch actor.Role {
	case models.RoleCitizen:
		if complaint.CitizenID != actor.UserID {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (s *complaintService) List(ctx context.Context, actor models.Actor, filter *models.ComplaintFilter) ([]models.ComplaintResponse, int64, error) {
	s.scopeFilter(ctx, actor, filter)

	complaints, total, err := s.complaintRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]models.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		resp := models.ToComplaintResponse(&complaints[i])
		resp.AllowedActions = workflow.AllowedActions(actor.Role, complaints[i].Status)
		responses = append(responses, resp)
	}
	return responses, total, nil
}

// scopeFilter narrows a listing to the records the actor is entitled to see.
func (s *complaintService) scopeFilter(ctx context.Context, actor models.Actor, filter *models.ComplaintFilter) {
	switch actor.Role {
	case models.RoleCitizen:
		filter.CitizenID = &actor.UserID
	case models.RoleDepartmentOfficer:
		filter.AssignedToID = &actor.UserID
	case models.RoleWardOfficer:
		if user, err := s.userRepo.FindByID(ctx, actor.UserID); err == nil && user.WardID != nil {
			filter.WardID = user.WardID
		}
	}
}

func (s *complaintService) ListHistory(ctx context.Context, actor models.Actor, complaintID uuid.UUID) ([]models.HistoryEntryResponse, error) {
	complaint, err := s.complaintRepo.FindByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.checkViewScope(actor, complaint); err != nil {
		return nil, err
	}

	entries, err := s.complaintRepo.ListHistory(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.HistoryEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, models.ToHistoryEntryResponse(&entries[i]))
	}
	return responses, nil
}

func (s *complaintService) SubmitFeedback(ctx context.Context, actor models.Actor, complaintID uuid.UUID, req *models.ComplaintFeedbackRequest) error {
	complaint, err := s.complaintRepo.FindByID(ctx, complaintID)
	if err != nil {
		return err
	}

	if actor.Role != models.RoleCitizen || complaint.CitizenID != actor.UserID {
		return workflow.ErrForbidden
	}
	if complaint.Status != models.StatusClosed {
		return workflow.ErrInvalidState
	}

	return s.complaintRepo.SetFeedback(ctx, complaintID, req.Rating, req.Feedback)
}

func (s *complaintService) GetStats(ctx context.Context, actor models.Actor) (*models.ComplaintStatsResponse, error) {
	filter := &models.ComplaintFilter{}
	s.scopeFilter(ctx, actor, filter)
	return s.complaintRepo.GetStats(ctx, filter)
}
