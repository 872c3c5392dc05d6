package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/sla"
)

// SLAMonitor periodically scans open complaints for deadlines that are near
// or past due. Near-breach complaints only produce a warning event; breached
// ones are escalated in place, regardless of their current non-terminal
// status.
type SLAMonitor struct {
	complaints    repository.ComplaintRepository
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
	warningWindow time.Duration
	now           func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SLAMonitorDependencies bundles collaborators for the monitor.
type SLAMonitorDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	WarningWindow time.Duration
	Clock         func() time.Time
}

// ScanReport summarizes one scan pass.
type ScanReport struct {
	Warnings int
	Breaches int
	Failures int
}

// ComplianceStatistics aggregates SLA health across open complaints.
type ComplianceStatistics struct {
	TotalActive    int     `json:"total_active"`
	OnTrack        int     `json:"on_track"`
	NearBreach     int     `json:"near_breach"`
	Breached       int     `json:"breached"`
	ComplianceRate float64 `json:"compliance_rate"`
}

// NewSLAMonitor constructs the monitor.
func NewSLAMonitor(deps SLAMonitorDependencies) *SLAMonitor {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	window := deps.WarningWindow
	if window <= 0 {
		window = 2 * time.Hour
	}
	return &SLAMonitor{
		complaints:    deps.ComplaintRepo,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        logger,
		warningWindow: window,
		now:           now,
	}
}

// Start launches the scan loop at the given interval. An initial scan runs
// immediately.
func (m *SLAMonitor) Start(ctx context.Context, interval time.Duration) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runScanLogged(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.runScanLogged(ctx)
			}
		}
	}()
	m.logger.Info("sla monitor started", zap.Duration("interval", interval))
}

// Stop cancels the loop and waits for an in-flight scan to finish.
func (m *SLAMonitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.logger.Info("sla monitor stopped")
}

func (m *SLAMonitor) runScanLogged(ctx context.Context) {
	report, err := m.RunScan(ctx, m.now())
	if err != nil {
		m.logger.Error("sla scan failed", zap.Error(err))
		return
	}
	if report.Warnings > 0 || report.Breaches > 0 || report.Failures > 0 {
		m.logger.Info("sla scan complete",
			zap.Int("warnings", report.Warnings),
			zap.Int("breaches", report.Breaches),
			zap.Int("failures", report.Failures),
		)
	}
}

// RunScan executes one scan pass at the given instant. Warning emission never
// mutates complaints; breach handling escalates each candidate independently
// so one failure does not stop the rest of the batch.
func (m *SLAMonitor) RunScan(ctx context.Context, now time.Time) (*ScanReport, error) {
	report := &ScanReport{}

	nearing, err := m.complaints.ListNonTerminalDeadlineBetween(ctx, now, now.Add(m.warningWindow))
	if err != nil {
		return nil, err
	}
	for i := range nearing {
		m.emitWarning(ctx, &nearing[i], now)
		report.Warnings++
	}

	breached, err := m.complaints.ListNonTerminalDeadlineBefore(ctx, now)
	if err != nil {
		return nil, err
	}
	for i := range breached {
		if err := m.escalate(ctx, &breached[i], now); err != nil {
			// A guard rejection means the complaint reached a terminal
			// state after the breach query; nothing to do.
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			m.logger.Error("escalation failed",
				zap.String("complaint_id", breached[i].ID),
				zap.Error(err),
			)
			report.Failures++
			continue
		}
		report.Breaches++
	}

	if m.metrics != nil {
		m.metrics.RecordScan(now, report.Warnings, report.Breaches, report.Failures)
	}
	return report, nil
}

func (m *SLAMonitor) emitWarning(ctx context.Context, complaint *domain.Complaint, now time.Time) {
	remaining := sla.TimeUntilBreach(complaint.SLADeadline, now)
	m.logger.Warn("sla warning",
		zap.String("complaint_id", complaint.ID),
		zap.String("priority", string(complaint.Priority)),
		zap.Int64("remaining_minutes", int64(remaining.Minutes())),
	)
	m.publish(ctx, events.Event{
		Type:        events.EventSLAWarning,
		ComplaintID: complaint.ID,
		Timestamp:   now,
		Payload: events.SLAWarningPayload{
			Priority:         complaint.Priority,
			RemainingMinutes: int64(remaining.Minutes()),
			AssignedStaffID:  complaint.AssignedStaffID,
		},
	})
}

func (m *SLAMonitor) escalate(ctx context.Context, complaint *domain.Complaint, now time.Time) error {
	level, err := m.complaints.Escalate(ctx, complaint.ID)
	if err != nil {
		return err
	}
	m.logger.Warn("sla breach escalated",
		zap.String("complaint_id", complaint.ID),
		zap.String("priority", string(complaint.Priority)),
		zap.Int("escalation_level", level),
	)
	m.publish(ctx, events.Event{
		Type:        events.EventSLABreach,
		ComplaintID: complaint.ID,
		Timestamp:   now,
		Payload: events.SLABreachPayload{
			Priority:        complaint.Priority,
			EscalationLevel: level,
			AssignedStaffID: complaint.AssignedStaffID,
		},
	})
	return nil
}

// Statistics computes SLA compliance across open complaints. With no open
// complaints the compliance rate is 100.
func (m *SLAMonitor) Statistics(ctx context.Context, now time.Time) (*ComplianceStatistics, error) {
	open, err := m.complaints.ListNonTerminal(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ComplianceStatistics{TotalActive: len(open)}
	for i := range open {
		c := &open[i]
		switch {
		case sla.IsBreached(c.SLADeadline, c.Status, now):
			stats.Breached++
		case sla.IsNearBreach(c.CreatedAt, c.SLADeadline, c.Status, now):
			stats.NearBreach++
		default:
			stats.OnTrack++
		}
	}
	if stats.TotalActive == 0 {
		stats.ComplianceRate = 100.0
	} else {
		stats.ComplianceRate = float64(stats.OnTrack) / float64(stats.TotalActive) * 100.0
	}
	return stats, nil
}

func (m *SLAMonitor) publish(ctx context.Context, event events.Event) {
	if m.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	_ = m.dispatcher.Publish(ctx, event)
}
