package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/civictrack/backend/internal/models"
	"github.com/civictrack/backend/internal/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the persistence contracts closely
// enough to exercise the dispatcher: ApplyTransition enforces the same
// expected-status guard the SQL layer does.

type fakeComplaintRepo struct {
	complaints map[uuid.UUID]*models.Complaint
	history    map[uuid.UUID][]models.ComplaintHistory
	evidence   map[uuid.UUID][]models.ComplaintEvidence
	seq        int

	// beforeApply, when set, runs just before ApplyTransition checks the
	// stored status. Used to simulate a concurrent writer.
	beforeApply func()
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{
		complaints: make(map[uuid.UUID]*models.Complaint),
		history:    make(map[uuid.UUID][]models.ComplaintHistory),
		evidence:   make(map[uuid.UUID][]models.ComplaintEvidence),
	}
}

func (r *fakeComplaintRepo) Create(ctx context.Context, complaint *models.Complaint, initial *models.ComplaintHistory) error {
	if complaint.ID == uuid.Nil {
		complaint.ID = uuid.New()
	}
	r.complaints[complaint.ID] = complaint
	initial.ComplaintID = complaint.ID
	r.history[complaint.ID] = append(r.history[complaint.ID], *initial)
	return nil
}

func (r *fakeComplaintRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	c, ok := r.complaints[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeComplaintRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.History = append([]models.ComplaintHistory(nil), r.history[id]...)
	c.Evidence = append([]models.ComplaintEvidence(nil), r.evidence[id]...)
	return c, nil
}

func (r *fakeComplaintRepo) List(ctx context.Context, filter *models.ComplaintFilter) ([]models.Complaint, int64, error) {
	var out []models.Complaint
	for _, c := range r.complaints {
		if filter.CitizenID != nil && c.CitizenID != *filter.CitizenID {
			continue
		}
		if filter.AssignedToID != nil && (c.AssignedOfficerID == nil || *c.AssignedOfficerID != *filter.AssignedToID) {
			continue
		}
		if filter.WardID != nil && c.WardID != *filter.WardID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeComplaintRepo) GenerateComplaintNumber(ctx context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("CMP-%d-%05d", time.Now().Year(), r.seq), nil
}

func (r *fakeComplaintRepo) ApplyTransition(ctx context.Context, id uuid.UUID, from models.ComplaintStatus, updates map[string]interface{}, entry *models.ComplaintHistory) error {
	if r.beforeApply != nil {
		r.beforeApply()
	}
	c, ok := r.complaints[id]
	if !ok || c.Status != from {
		return workflow.ErrInvalidTransition
	}
	for key, val := range updates {
		switch key {
		case "status":
			c.Status = val.(models.ComplaintStatus)
		case "assigned_officer_id":
			officerID := val.(uuid.UUID)
			c.AssignedOfficerID = &officerID
		case "sla_status":
			c.SLAStatus = val.(models.SLAStatus)
		case "resolved_at":
			if val == nil {
				c.ResolvedAt = nil
			} else {
				at := val.(time.Time)
				c.ResolvedAt = &at
			}
		case "closed_at":
			if val == nil {
				c.ClosedAt = nil
			} else {
				at := val.(time.Time)
				c.ClosedAt = &at
			}
		}
	}
	entry.ComplaintID = id
	r.history[id] = append(r.history[id], *entry)
	return nil
}

func (r *fakeComplaintRepo) ListHistory(ctx context.Context, complaintID uuid.UUID) ([]models.ComplaintHistory, error) {
	return append([]models.ComplaintHistory(nil), r.history[complaintID]...), nil
}

func (r *fakeComplaintRepo) CreateEvidence(ctx context.Context, rows []models.ComplaintEvidence) error {
	for _, row := range rows {
		r.evidence[row.ComplaintID] = append(r.evidence[row.ComplaintID], row)
	}
	return nil
}

func (r *fakeComplaintRepo) ListEvidence(ctx context.Context, complaintID uuid.UUID) ([]models.ComplaintEvidence, error) {
	return append([]models.ComplaintEvidence(nil), r.evidence[complaintID]...), nil
}

func (r *fakeComplaintRepo) CountEvidenceByStage(ctx context.Context, complaintID uuid.UUID, stage models.EvidenceStage) (int64, error) {
	var count int64
	for _, row := range r.evidence[complaintID] {
		if row.Stage == stage {
			count++
		}
	}
	return count, nil
}

func (r *fakeComplaintRepo) SetFeedback(ctx context.Context, id uuid.UUID, rating int, feedback string) error {
	c, ok := r.complaints[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Rating = &rating
	c.Feedback = feedback
	return nil
}

func (r *fakeComplaintRepo) GetStats(ctx context.Context, filter *models.ComplaintFilter) (*models.ComplaintStatsResponse, error) {
	stats := &models.ComplaintStatsResponse{ByStatus: make(map[models.ComplaintStatus]int64)}
	for _, c := range r.complaints {
		if filter != nil && filter.CitizenID != nil && c.CitizenID != *filter.CitizenID {
			continue
		}
		stats.Total++
		stats.ByStatus[c.Status]++
		if c.SLAStatus == models.SLABreached {
			stats.SLABreached++
		}
	}
	return stats, nil
}

func (r *fakeComplaintRepo) MarkSLABreached(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for _, c := range r.complaints {
		if c.IsOpen() && c.SLAStatus != models.SLABreached && c.SLADeadline.Before(now) {
			c.SLAStatus = models.SLABreached
			count++
		}
	}
	return count, nil
}

func (r *fakeComplaintRepo) MarkSLAAtRisk(ctx context.Context, now time.Time, warningWindow time.Duration) (int64, error) {
	var count int64
	for _, c := range r.complaints {
		if c.IsOpen() && c.SLAStatus == models.SLAOnTrack &&
			!c.SLADeadline.Before(now) && c.SLADeadline.Before(now.Add(warningWindow)) {
			c.SLAStatus = models.SLAAtRisk
			count++
		}
	}
	return count, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) add(user *models.User) *models.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.IsActive = true
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, filter *models.UserFilter) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range r.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) FindDepartmentOfficer(ctx context.Context, departmentID uuid.UUID) (*models.User, error) {
	for _, u := range r.users {
		if u.Role == models.RoleDepartmentOfficer && u.IsActive &&
			u.DepartmentID != nil && *u.DepartmentID == departmentID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsActive = active
	return nil
}

func (r *fakeUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	if user, ok := r.users[id]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

type fakeWardRepo struct {
	wards map[uuid.UUID]*models.Ward
}

func newFakeWardRepo() *fakeWardRepo {
	return &fakeWardRepo{wards: make(map[uuid.UUID]*models.Ward)}
}

func (r *fakeWardRepo) add(ward *models.Ward) *models.Ward {
	if ward.ID == uuid.Nil {
		ward.ID = uuid.New()
	}
	r.wards[ward.ID] = ward
	return ward
}

func (r *fakeWardRepo) Create(ctx context.Context, ward *models.Ward) error {
	r.add(ward)
	return nil
}

func (r *fakeWardRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Ward, error) {
	w, ok := r.wards[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return w, nil
}

func (r *fakeWardRepo) List(ctx context.Context) ([]models.Ward, error) {
	var out []models.Ward
	for _, w := range r.wards {
		out = append(out, *w)
	}
	return out, nil
}

type fakeDepartmentRepo struct {
	departments map[uuid.UUID]*models.Department
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{departments: make(map[uuid.UUID]*models.Department)}
}

func (r *fakeDepartmentRepo) add(department *models.Department) *models.Department {
	if department.ID == uuid.Nil {
		department.ID = uuid.New()
	}
	r.departments[department.ID] = department
	return department
}

func (r *fakeDepartmentRepo) Create(ctx context.Context, department *models.Department) error {
	r.add(department)
	return nil
}

func (r *fakeDepartmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	d, ok := r.departments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *fakeDepartmentRepo) List(ctx context.Context) ([]models.Department, error) {
	var out []models.Department
	for _, d := range r.departments {
		out = append(out, *d)
	}
	return out, nil
}

// fakeObjectStore records uploads and can be primed to fail partway through
// a batch.
type fakeObjectStore struct {
	uploads   []string
	deleted   []string
	failAfter int // fail the (failAfter+1)th upload; -1 never fails
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{failAfter: -1}
}

func (s *fakeObjectStore) UploadEvidence(ctx context.Context, complaintID string, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	if s.failAfter >= 0 && len(s.uploads) >= s.failAfter {
		return "", errors.New("connection reset")
	}
	path := fmt.Sprintf("evidence/%s/%s", complaintID, fileName)
	s.uploads = append(s.uploads, path)
	return path, nil
}

func (s *fakeObjectStore) GetFileURL(ctx context.Context, objectName string) (string, error) {
	return "https://storage.local/" + objectName, nil
}

func (s *fakeObjectStore) DeleteFile(ctx context.Context, objectName string) error {
	s.deleted = append(s.deleted, objectName)
	return nil
}
