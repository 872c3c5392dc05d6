package events

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated       EventType = "complaint_created"
	EventComplaintAssigned      EventType = "complaint_assigned"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventSLAWarning             EventType = "sla_warning"
	EventSLABreach              EventType = "sla_breach"
	EventPointsAwarded          EventType = "points_awarded"
)

// Event represents a domain event emitted by services and the SLA monitor.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	CustomerID  string                   `json:"customer_id"`
	Title       string                   `json:"title"`
	Category    domain.ComplaintCategory `json:"category"`
	Priority    domain.ComplaintPriority `json:"priority"`
	Sentiment   domain.Sentiment         `json:"sentiment"`
	SLADeadline time.Time                `json:"sla_deadline"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	StaffID    string `json:"staff_id"`
	StaffEmail string `json:"staff_email"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// SLAWarningPayload payload for complaints nearing breach.
type SLAWarningPayload struct {
	Priority         domain.ComplaintPriority `json:"priority"`
	RemainingMinutes int64                    `json:"remaining_minutes"`
	AssignedStaffID  *string                  `json:"assigned_staff_id,omitempty"`
}

// SLABreachPayload payload for breached complaints.
type SLABreachPayload struct {
	Priority        domain.ComplaintPriority `json:"priority"`
	EscalationLevel int                      `json:"escalation_level"`
	AssignedStaffID *string                  `json:"assigned_staff_id,omitempty"`
}

// PointsAwardedPayload payload.
type PointsAwardedPayload struct {
	StaffID     string   `json:"staff_id"`
	BasePoints  int      `json:"base_points"`
	BonusPoints int      `json:"bonus_points"`
	NewBadges   []string `json:"new_badges,omitempty"`
}
