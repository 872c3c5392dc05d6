package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/service"
)

// GamificationHandler exposes leaderboard and per-staff statistics.
type GamificationHandler struct {
	gamification *service.GamificationService
}

// NewGamificationHandler constructs handler.
func NewGamificationHandler(gamification *service.GamificationService) *GamificationHandler {
	return &GamificationHandler{gamification: gamification}
}

// Leaderboard handles GET /gamification/leaderboard.
func (h *GamificationHandler) Leaderboard(c *fiber.Ctx) error {
	limit := parseIntQuery(c, "limit", 10)
	entries, err := h.gamification.Leaderboard(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}

// StaffStats handles GET /gamification/staff/:id.
func (h *GamificationHandler) StaffStats(c *fiber.Ctx) error {
	stats, err := h.gamification.StaffStats(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
