package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/sentiment"
	"github.com/spec-kit/complaint-service/internal/sla"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// allowedTransitions is the lifecycle transition table. CLOSED has no outgoing
// edges; escalation by the SLA monitor bypasses this table deliberately.
var allowedTransitions = map[domain.ComplaintStatus][]domain.ComplaintStatus{
	domain.ComplaintStatusNew:        {domain.ComplaintStatusAssigned, domain.ComplaintStatusClosed},
	domain.ComplaintStatusAssigned:   {domain.ComplaintStatusInProgress, domain.ComplaintStatusEscalated, domain.ComplaintStatusClosed},
	domain.ComplaintStatusInProgress: {domain.ComplaintStatusResolved, domain.ComplaintStatusEscalated},
	domain.ComplaintStatusEscalated:  {domain.ComplaintStatusInProgress, domain.ComplaintStatusResolved},
	domain.ComplaintStatusResolved:   {domain.ComplaintStatusClosed},
	domain.ComplaintStatusClosed:     {},
}

// IsValidTransition reports whether the edge exists in the transition table.
func IsValidTransition(current, next domain.ComplaintStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ComplaintService coordinates the complaint lifecycle: intake, assignment,
// status transitions and the resolution hook into gamification.
type ComplaintService struct {
	complaints   repository.ComplaintRepository
	users        repository.UserRepository
	gamification *GamificationService
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	locks        *keyedMutex
	now          func() time.Time
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	UserRepo      repository.UserRepository
	Gamification  *GamificationService
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Clock         func() time.Time
}

// ComplaintCreateInput describes the intake payload.
type ComplaintCreateInput struct {
	Title       string
	Description string
	Category    domain.ComplaintCategory
	Priority    domain.ComplaintPriority
}

// TransitionResult reports a committed status change. Scoring is nil unless
// the transition resolved an assigned complaint; ScoringErr carries a scoring
// failure that did not roll back the transition.
type TransitionResult struct {
	Complaint  *domain.Complaint
	Scoring    *domain.PointsAwarded
	ScoringErr error
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &ComplaintService{
		complaints:   deps.ComplaintRepo,
		users:        deps.UserRepo,
		gamification: deps.Gamification,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		locks:        newKeyedMutex(),
		now:          now,
	}
}

// Create registers a complaint for a customer. Sentiment is scored from the
// description and the SLA deadline is fixed from priority, both exactly once.
func (s *ComplaintService) Create(ctx context.Context, customerID string, input ComplaintCreateInput) (*domain.Complaint, error) {
	if _, err := s.users.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"customer_id": customerID})
		}
		return nil, apperrors.MapError(err)
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.ComplaintPriorityMedium
	}
	category := input.Category
	if category == "" {
		category = domain.CategoryGeneral
	}

	now := s.now()
	complaint := &domain.Complaint{
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		Status:      domain.ComplaintStatusNew,
		Sentiment:   sentiment.Analyze(description),
		CustomerID:  customerID,
		SLADeadline: sla.Deadline(priority, now),
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("complaint created",
		zap.String("complaint_id", complaint.ID),
		zap.String("priority", string(complaint.Priority)),
		zap.String("sentiment", string(complaint.Sentiment)),
		zap.Time("sla_deadline", complaint.SLADeadline),
	)
	s.publish(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		Payload: events.ComplaintCreatedPayload{
			CustomerID:  complaint.CustomerID,
			Title:       complaint.Title,
			Category:    complaint.Category,
			Priority:    complaint.Priority,
			Sentiment:   complaint.Sentiment,
			SLADeadline: complaint.SLADeadline,
		},
	})
	return complaint, nil
}

// Assign places a complaint with a staff member. The target must hold a
// staff-capable role. Assignment always re-arms the pipeline at ASSIGNED:
// the status override is unconditional and intentionally skips the
// transition table.
func (s *ComplaintService) Assign(ctx context.Context, complaintID, staffID string) (*domain.Complaint, error) {
	staff, err := s.users.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": staffID})
		}
		return nil, apperrors.MapError(err)
	}
	if !staff.Role.CanBeAssigned() {
		return nil, apperrors.NewInvalidRole("assignment target is not a staff member")
	}

	unlock := s.locks.Lock(complaintID)
	defer unlock()

	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}

	complaint.AssignedStaffID = &staff.ID
	complaint.Status = domain.ComplaintStatusAssigned
	complaint.UpdatedAt = s.now()

	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("complaint assigned",
		zap.String("complaint_id", complaint.ID),
		zap.String("staff_id", staff.ID),
	)
	s.publish(ctx, events.Event{
		Type:        events.EventComplaintAssigned,
		ComplaintID: complaint.ID,
		Payload: events.ComplaintAssignedPayload{
			StaffID:    staff.ID,
			StaffEmail: staff.Email,
		},
	})
	return complaint, nil
}

// Transition applies a validated status change. On a transition to RESOLVED
// with an assigned staff member it additionally triggers the resolution
// award; a scoring failure is reported in the result but never rolls back
// the committed status change.
func (s *ComplaintService) Transition(ctx context.Context, complaintID string, target domain.ComplaintStatus) (*TransitionResult, error) {
	unlock := s.locks.Lock(complaintID)
	defer unlock()

	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}

	oldStatus := complaint.Status
	if !IsValidTransition(oldStatus, target) {
		return nil, apperrors.NewInvalidTransition(string(oldStatus), string(target))
	}

	now := s.now()
	complaint.Status = target
	complaint.UpdatedAt = now

	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	result := &TransitionResult{Complaint: complaint}
	if target == domain.ComplaintStatusResolved && complaint.AssignedStaffID != nil {
		withinSLA := now.Before(complaint.SLADeadline)
		scoring, scoringErr := s.gamification.AwardResolution(ctx, *complaint.AssignedStaffID, complaint.Priority, withinSLA)
		if scoringErr != nil {
			// Lifecycle progress is primary; reward bookkeeping is
			// best-effort.
			s.logger.Error("resolution scoring failed",
				zap.String("complaint_id", complaint.ID),
				zap.String("staff_id", *complaint.AssignedStaffID),
				zap.Error(scoringErr),
			)
			result.ScoringErr = scoringErr
		} else {
			result.Scoring = scoring
		}
	}

	s.logger.Info("complaint status changed",
		zap.String("complaint_id", complaint.ID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(target)),
	)
	s.publish(ctx, events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: complaint.ID,
		Payload: events.ComplaintStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: target,
		},
	})
	return result, nil
}

// Rate records a customer rating for a resolved complaint and forwards it to
// gamification.
func (s *ComplaintService) Rate(ctx context.Context, complaintID string, rating int) (int, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return 0, apperrors.MapError(err)
	}
	if !complaint.Status.IsTerminal() {
		return 0, apperrors.NewConflict("complaint is not resolved", map[string]any{"status": complaint.Status})
	}
	if complaint.AssignedStaffID == nil {
		return 0, apperrors.NewConflict("complaint has no assigned staff", nil)
	}
	return s.gamification.AwardRating(ctx, *complaint.AssignedStaffID, rating)
}

// GetByID fetches one complaint.
func (s *ComplaintService) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return complaint, nil
}

// List returns complaints matching the filter.
func (s *ComplaintService) List(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	complaints, err := s.complaints.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// DashboardStats aggregates complaint counters for the dashboard view.
func (s *ComplaintService) DashboardStats(ctx context.Context, now time.Time, warningWindow time.Duration) (map[string]any, error) {
	byStatus, err := s.complaints.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byPriority, err := s.complaints.CountByPriority(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	breached, err := s.complaints.ListNonTerminalDeadlineBefore(ctx, now)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	nearBreach, err := s.complaints.ListNonTerminalDeadlineBetween(ctx, now, now.Add(warningWindow))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	avgHours, err := s.complaints.AverageResolutionHours(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	total := 0
	for _, count := range byStatus {
		total += count
	}
	return map[string]any{
		"byStatus":           byStatus,
		"byPriority":         byPriority,
		"slaBreached":        len(breached),
		"slaNearBreach":      len(nearBreach),
		"totalComplaints":    total,
		"avgResolutionHours": avgHours,
	}, nil
}

func (s *ComplaintService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
