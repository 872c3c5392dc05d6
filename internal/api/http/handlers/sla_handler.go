package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/worker"
)

// SLAHandler exposes SLA compliance statistics.
type SLAHandler struct {
	monitor *worker.SLAMonitor
}

// NewSLAHandler constructs handler.
func NewSLAHandler(monitor *worker.SLAMonitor) *SLAHandler {
	return &SLAHandler{monitor: monitor}
}

// Statistics handles GET /sla/statistics.
func (h *SLAHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.monitor.Statistics(c.UserContext(), nowUTC())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
