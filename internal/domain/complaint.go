package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusNew        ComplaintStatus = "NEW"
	ComplaintStatusAssigned   ComplaintStatus = "ASSIGNED"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusEscalated  ComplaintStatus = "ESCALATED"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
	ComplaintStatusClosed     ComplaintStatus = "CLOSED"
)

// IsTerminal reports whether the status ends SLA tracking.
func (s ComplaintStatus) IsTerminal() bool {
	return s == ComplaintStatusResolved || s == ComplaintStatusClosed
}

// ComplaintPriority enumerates SLA urgency.
type ComplaintPriority string

const (
	ComplaintPriorityLow      ComplaintPriority = "LOW"
	ComplaintPriorityMedium   ComplaintPriority = "MEDIUM"
	ComplaintPriorityHigh     ComplaintPriority = "HIGH"
	ComplaintPriorityCritical ComplaintPriority = "CRITICAL"
)

// ComplaintCategory enumerates complaint subject areas.
type ComplaintCategory string

const (
	CategoryTechnical      ComplaintCategory = "TECHNICAL"
	CategoryBilling        ComplaintCategory = "BILLING"
	CategoryProduct        ComplaintCategory = "PRODUCT"
	CategoryService        ComplaintCategory = "SERVICE"
	CategorySecurity       ComplaintCategory = "SECURITY"
	CategoryHardware       ComplaintCategory = "HARDWARE"
	CategoryFeatureRequest ComplaintCategory = "FEATURE_REQUEST"
	CategoryGeneral        ComplaintCategory = "GENERAL"
)

// Sentiment classifies the emotional tone of complaint text.
type Sentiment string

const (
	SentimentAngry      Sentiment = "ANGRY"
	SentimentFrustrated Sentiment = "FRUSTRATED"
	SentimentNeutral    Sentiment = "NEUTRAL"
	SentimentSatisfied  Sentiment = "SATISFIED"
)

// Complaint is the aggregate for customer complaints.
//
// Status and EscalationLevel are owned by the lifecycle service and the SLA
// monitor; SLADeadline is fixed at creation from priority and never
// recalculated, even if priority later changes.
type Complaint struct {
	ID              string
	Title           string
	Description     string
	Category        ComplaintCategory
	Priority        ComplaintPriority
	Status          ComplaintStatus
	Sentiment       Sentiment
	CustomerID      string
	AssignedStaffID *string
	EscalationLevel int
	SLADeadline     time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
