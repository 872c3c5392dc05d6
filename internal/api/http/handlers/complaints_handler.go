package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
)

// ComplaintsHandler exposes the complaint lifecycle over HTTP.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
	slaCfg     config.SLAConfig
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService, slaCfg config.SLAConfig) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints, slaCfg: slaCfg}
}

// Create handles POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	var req dto.ComplaintCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	complaint, err := h.complaints.Create(c.UserContext(), auth.UserID(c), service.ComplaintCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.ComplaintCategory(strings.ToUpper(req.Category)),
		Priority:    domain.ComplaintPriority(strings.ToUpper(req.Priority)),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// Get handles GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	complaint, err := h.complaints.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// List handles GET /complaints with optional status, priority, search,
// customer_id, staff_id, limit and offset query parameters.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	filter := repository.ComplaintFilter{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if status := c.Query("status"); status != "" {
		filter.Statuses = append(filter.Statuses, domain.ComplaintStatus(strings.ToUpper(status)))
	}
	if priority := c.Query("priority"); priority != "" {
		filter.Priorities = append(filter.Priorities, domain.ComplaintPriority(strings.ToUpper(priority)))
	}
	if term := c.Query("search"); term != "" {
		filter.SearchTerm = &term
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		filter.CustomerID = &customerID
	}
	if staffID := c.Query("staff_id"); staffID != "" {
		filter.AssignedStaffID = &staffID
	}

	complaints, err := h.complaints.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintListResponse(complaints)})
}

// Assign handles POST /complaints/:id/assign.
func (h *ComplaintsHandler) Assign(c *fiber.Ctx) error {
	var req dto.ComplaintAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.StaffID == "" {
		return fiber.NewError(http.StatusBadRequest, "staff_id required")
	}

	complaint, err := h.complaints.Assign(c.UserContext(), c.Params("id"), req.StaffID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// UpdateStatus handles PATCH /complaints/:id/status.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.ComplaintStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Status == "" {
		return fiber.NewError(http.StatusBadRequest, "status required")
	}

	result, err := h.complaints.Transition(c.UserContext(), c.Params("id"),
		domain.ComplaintStatus(strings.ToUpper(req.Status)))
	if err != nil {
		return err
	}

	response := fiber.Map{"complaint": dto.NewComplaintResponse(result.Complaint)}
	if result.Scoring != nil {
		response["points_awarded"] = dto.NewPointsAwardedResponse(result.Scoring)
	}
	if result.ScoringErr != nil {
		response["scoring_error"] = result.ScoringErr.Error()
	}
	return c.JSON(fiber.Map{"data": response})
}

// Rate handles POST /complaints/:id/rate.
func (h *ComplaintsHandler) Rate(c *fiber.Ctx) error {
	var req dto.ComplaintRateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	points, err := h.complaints.Rate(c.UserContext(), c.Params("id"), req.Rating)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"rating": req.Rating, "points_awarded": points}})
}

// Dashboard handles GET /complaints/dashboard.
func (h *ComplaintsHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.complaints.DashboardStats(c.UserContext(), nowUTC(), h.slaCfg.WarningWindow())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
