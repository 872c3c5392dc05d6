package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Users        *handlers.UsersHandler
	Complaints   *handlers.ComplaintsHandler
	Gamification *handlers.GamificationHandler
	SLA          *handlers.SLAHandler
	Tokens       *auth.TokenManager
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	authenticated := auth.Middleware(cfg.Tokens)
	staffOnly := auth.RequireRole(domain.RoleStaff, domain.RoleAdmin)

	complaints := app.Group("/complaints", authenticated)
	complaints.Post("/", cfg.Complaints.Create)
	complaints.Get("/dashboard", staffOnly, cfg.Complaints.Dashboard)
	complaints.Get("/", cfg.Complaints.List)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Post("/:id/assign", staffOnly, cfg.Complaints.Assign)
	complaints.Patch("/:id/status", staffOnly, cfg.Complaints.UpdateStatus)
	complaints.Post("/:id/rate", cfg.Complaints.Rate)

	gamification := app.Group("/gamification", authenticated, staffOnly)
	gamification.Get("/leaderboard", cfg.Gamification.Leaderboard)
	gamification.Get("/staff/:id", cfg.Gamification.StaffStats)

	sla := app.Group("/sla", authenticated, staffOnly)
	sla.Get("/statistics", cfg.SLA.Statistics)
}
