package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ComplaintCreateRequest payload for complaint intake.
type ComplaintCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// ComplaintAssignRequest payload for assignment.
type ComplaintAssignRequest struct {
	StaffID string `json:"staff_id"`
}

// ComplaintStatusRequest payload for a status transition.
type ComplaintStatusRequest struct {
	Status string `json:"status"`
}

// ComplaintRateRequest payload for a customer rating.
type ComplaintRateRequest struct {
	Rating int `json:"rating"`
}

// ComplaintResponse is the public complaint representation.
type ComplaintResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Priority        string    `json:"priority"`
	Status          string    `json:"status"`
	Sentiment       string    `json:"sentiment"`
	CustomerID      string    `json:"customer_id"`
	AssignedStaffID *string   `json:"assigned_staff_id,omitempty"`
	EscalationLevel int       `json:"escalation_level"`
	SLADeadline     time.Time `json:"sla_deadline"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewComplaintResponse maps a domain complaint to its API shape.
func NewComplaintResponse(c *domain.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Category:        string(c.Category),
		Priority:        string(c.Priority),
		Status:          string(c.Status),
		Sentiment:       string(c.Sentiment),
		CustomerID:      c.CustomerID,
		AssignedStaffID: c.AssignedStaffID,
		EscalationLevel: c.EscalationLevel,
		SLADeadline:     c.SLADeadline,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// NewComplaintListResponse maps a complaint slice.
func NewComplaintListResponse(complaints []domain.Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		out = append(out, NewComplaintResponse(&complaints[i]))
	}
	return out
}
