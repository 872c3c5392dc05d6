package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
)

// NotificationSink delivers a single message to a recipient. Delivery is
// best-effort; a failed send never interrupts the lifecycle that triggered
// it.
type NotificationSink interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}

// LogSink writes notifications to the structured log. It stands in for a
// real mail or messaging transport.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink constructs a sink over the given logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(_ context.Context, recipient, subject, body string) error {
	s.logger.Info("notification sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

// NotificationService turns domain events into outbound messages.
type NotificationService struct {
	sink           NotificationSink
	logger         *zap.Logger
	escalationList []string
}

// NewNotificationService constructs the service.
func NewNotificationService(sink NotificationSink, cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		sink:           sink,
		logger:         logger,
		escalationList: cfg.EscalationList,
	}
}

// RegisterHandlers subscribes the service to every event type it renders.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventComplaintCreated, s.onComplaintCreated)
	dispatcher.Subscribe(events.EventComplaintAssigned, s.onComplaintAssigned)
	dispatcher.Subscribe(events.EventComplaintStatusChanged, s.onStatusChanged)
	dispatcher.Subscribe(events.EventSLAWarning, s.onSLAWarning)
	dispatcher.Subscribe(events.EventSLABreach, s.onSLABreach)
}

func (s *NotificationService) onComplaintCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintCreatedPayload)
	if !ok {
		return nil
	}
	subject := fmt.Sprintf("Complaint received: %s", payload.Title)
	body := fmt.Sprintf(
		"Your complaint %s has been registered with %s priority. We will respond before %s.",
		event.ComplaintID, payload.Priority, payload.SLADeadline.Format("2006-01-02 15:04 MST"),
	)
	s.send(ctx, payload.CustomerID, subject, body)
	return nil
}

func (s *NotificationService) onComplaintAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintAssignedPayload)
	if !ok {
		return nil
	}
	subject := "Complaint assigned to you"
	body := fmt.Sprintf("Complaint %s has been assigned to you.", event.ComplaintID)
	s.send(ctx, payload.StaffEmail, subject, body)
	return nil
}

func (s *NotificationService) onStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintStatusChangedPayload)
	if !ok {
		return nil
	}
	subject := "Complaint status updated"
	body := fmt.Sprintf("Complaint %s moved from %s to %s.",
		event.ComplaintID, payload.OldStatus, payload.NewStatus)
	s.send(ctx, event.ComplaintID, subject, body)
	return nil
}

func (s *NotificationService) onSLAWarning(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SLAWarningPayload)
	if !ok {
		return nil
	}
	// Warnings address the assignee; with nobody assigned there is no one
	// to warn.
	if payload.AssignedStaffID == nil {
		return nil
	}
	subject := fmt.Sprintf("SLA warning: complaint %s", event.ComplaintID)
	body := fmt.Sprintf("Complaint %s (%s priority) breaches its SLA in %d minutes.",
		event.ComplaintID, payload.Priority, payload.RemainingMinutes)
	s.send(ctx, *payload.AssignedStaffID, subject, body)
	return nil
}

func (s *NotificationService) onSLABreach(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SLABreachPayload)
	if !ok {
		return nil
	}
	subject := fmt.Sprintf("SLA BREACH: complaint %s escalated", event.ComplaintID)
	body := fmt.Sprintf("Complaint %s (%s priority) breached its SLA and was escalated to level %d.",
		event.ComplaintID, payload.Priority, payload.EscalationLevel)
	s.send(ctx, strings.Join(s.escalationList, ","), subject, body)
	if payload.AssignedStaffID != nil {
		s.send(ctx, *payload.AssignedStaffID, subject, body)
	}
	return nil
}

func (s *NotificationService) send(ctx context.Context, recipient, subject, body string) {
	if err := s.sink.Notify(ctx, recipient, subject, body); err != nil {
		s.logger.Error("notification delivery failed",
			zap.String("recipient", recipient),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
