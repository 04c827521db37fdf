package services

import (
	"context"
	"testing"
	"time"

	"github.com/civictrack/backend/internal/models"
	"github.com/civictrack/backend/internal/workflow"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedComplaint(repo *fakeComplaintRepo, status models.ComplaintStatus, slaStatus models.SLAStatus, deadline time.Time) uuid.UUID {
	c := &models.Complaint{
		ID:          uuid.New(),
		Status:      status,
		SLAStatus:   slaStatus,
		SLADeadline: deadline,
	}
	repo.complaints[c.ID] = c
	return c.ID
}

func TestCheckSLABreaches(t *testing.T) {
	repo := newFakeComplaintRepo()
	engine := workflow.NewSLAEngine(12, 24, 48, 72, 6)
	monitor := NewSLAMonitor(repo, engine, time.Minute)
	now := time.Now()

	overdue := seedComplaint(repo, models.StatusInProgress, models.SLAOnTrack, now.Add(-time.Hour))
	nearDeadline := seedComplaint(repo, models.StatusAssigned, models.SLAOnTrack, now.Add(2*time.Hour))
	comfortable := seedComplaint(repo, models.StatusSubmitted, models.SLAOnTrack, now.Add(20*time.Hour))
	resolvedLate := seedComplaint(repo, models.StatusResolved, models.SLAOnTrack, now.Add(-time.Hour))

	require.NoError(t, monitor.CheckSLABreaches(context.Background()))

	assert.Equal(t, models.SLABreached, repo.complaints[overdue].SLAStatus)
	assert.Equal(t, models.SLAAtRisk, repo.complaints[nearDeadline].SLAStatus)
	assert.Equal(t, models.SLAOnTrack, repo.complaints[comfortable].SLAStatus)

	// SLA status froze when the complaint was resolved; the sweep leaves it
	// alone even though the deadline has passed.
	assert.Equal(t, models.SLAOnTrack, repo.complaints[resolvedLate].SLAStatus)
}

func TestCheckSLABreachesIsIdempotent(t *testing.T) {
	repo := newFakeComplaintRepo()
	engine := workflow.NewSLAEngine(12, 24, 48, 72, 6)
	monitor := NewSLAMonitor(repo, engine, time.Minute)
	now := time.Now()

	seedComplaint(repo, models.StatusInProgress, models.SLAOnTrack, now.Add(-time.Hour))

	require.NoError(t, monitor.CheckSLABreaches(context.Background()))

	breached, err := repo.MarkSLABreached(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, breached)
}
