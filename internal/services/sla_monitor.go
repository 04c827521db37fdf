package services

import (
	"context"
	"log"
	"time"

	"github.com/civictrack/backend/internal/repository"
	"github.com/civictrack/backend/internal/workflow"
)

// SLAMonitor handles background SLA breach detection
type SLAMonitor interface {
	Start(ctx context.Context)
	Stop()
	CheckSLABreaches(ctx context.Context) error
}

type slaMonitor struct {
	complaintRepo repository.ComplaintRepository
	slaEngine     *workflow.SLAEngine
	interval      time.Duration
	stopChan      chan struct{}
	running       bool
}

// NewSLAMonitor creates a new SLA monitor
func NewSLAMonitor(complaintRepo repository.ComplaintRepository, slaEngine *workflow.SLAEngine, checkInterval time.Duration) SLAMonitor {
	if checkInterval == 0 {
		checkInterval = 5 * time.Minute
	}

	return &slaMonitor{
		complaintRepo: complaintRepo,
		slaEngine:     slaEngine,
		interval:      checkInterval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the background SLA monitoring
func (m *slaMonitor) Start(ctx context.Context) {
	if m.running {
		return
	}

	m.running = true
	log.Printf("SLA Monitor started with interval: %v", m.interval)

	go func() {
		// Initial check
		if err := m.CheckSLABreaches(ctx); err != nil {
			log.Printf("Initial SLA check failed: %v", err)
		}

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := m.CheckSLABreaches(ctx); err != nil {
					log.Printf("SLA check failed: %v", err)
				}
			case <-m.stopChan:
				log.Println("SLA Monitor stopped")
				return
			case <-ctx.Done():
				log.Println("SLA Monitor context cancelled")
				return
			}
		}
	}()
}

// Stop halts the background monitoring
func (m *slaMonitor) Stop() {
	if !m.running {
		return
	}

	m.running = false
	close(m.stopChan)
}

// CheckSLABreaches sweeps open complaints, promoting deadline-passed ones to
// BREACHED and near-deadline ones to AT_RISK. Complaints past RESOLVED are
// never touched; their SLA status froze at resolution.
func (m *slaMonitor) CheckSLABreaches(ctx context.Context) error {
	now := time.Now()

	breachedCount, err := m.complaintRepo.MarkSLABreached(ctx, now)
	if err != nil {
		return err
	}
	if breachedCount > 0 {
		log.Printf("Marked %d complaints as SLA breached", breachedCount)
	}

	atRiskCount, err := m.complaintRepo.MarkSLAAtRisk(ctx, now, m.slaEngine.WarningWindow())
	if err != nil {
		return err
	}
	if atRiskCount > 0 {
		log.Printf("Marked %d complaints as SLA at-risk", atRiskCount)
	}

	return nil
}
