package workflow

import (
	"time"

	"github.com/civictrack/backend/internal/models"
)

// SLAEngine computes deadlines and evaluates breach status. It is pure:
// every method is idempotent and side-effect-free; callers persist results.
type SLAEngine struct {
	criticalHours int
	highHours     int
	mediumHours   int
	lowHours      int
	warningWindow time.Duration
}

func NewSLAEngine(criticalHours, highHours, mediumHours, lowHours, warningHours int) *SLAEngine {
	return &SLAEngine{
		criticalHours: criticalHours,
		highHours:     highHours,
		mediumHours:   mediumHours,
		lowHours:      lowHours,
		warningWindow: time.Duration(warningHours) * time.Hour,
	}
}

// ComputeDeadline is a deterministic function of creation time and priority.
// It is called exactly once per complaint, at creation; the result is stored
// and never recomputed.
func (e *SLAEngine) ComputeDeadline(createdAt time.Time, priority models.Priority) time.Time {
	hours := e.mediumHours
	switch priority {
	case models.PriorityCritical:
		hours = e.criticalHours
	case models.PriorityHigh:
		hours = e.highHours
	case models.PriorityMedium:
		hours = e.mediumHours
	case models.PriorityLow:
		hours = e.lowHours
	}
	return createdAt.Add(time.Duration(hours) * time.Hour)
}

// Evaluate returns the SLA status of the complaint at the given instant.
// Once the complaint reaches RESOLVED or later the breach clock stops and
// the stored value is frozen. While open, the result is monotonic toward
// BREACHED: a breached complaint never reverts to ON_TRACK or AT_RISK.
func (e *SLAEngine) Evaluate(c *models.Complaint, now time.Time) models.SLAStatus {
	if !c.IsOpen() {
		return c.SLAStatus
	}
	if c.SLAStatus == models.SLABreached {
		return models.SLABreached
	}
	if now.After(c.SLADeadline) {
		return models.SLABreached
	}
	if now.After(c.SLADeadline.Add(-e.warningWindow)) {
		return models.SLAAtRisk
	}
	return models.SLAOnTrack
}

// WarningWindow exposes the configured AT_RISK window for persistence
// sweeps.
func (e *SLAEngine) WarningWindow() time.Duration {
	return e.warningWindow
}
