package routes

import (
	"github.com/gofiber/fiber/v2"

	"workbridge/internal/handlers"
	"workbridge/internal/middleware"
)

func SetupProjectRoutes(app *fiber.App, h *handlers.Handler, jwtSecret string) {
	projects := app.Group("/api/projects", middleware.Protected(jwtSecret))

	// Browse open projects
	projects.Get("/open", h.ListOpenProjects)

	// Projects I own
	projects.Get("/mine", h.MyProjects)

	// Post a new project (client)
	projects.Post("/", h.CreateProject)

	// Edit a project before a contract exists
	projects.Put("/:id", h.UpdateProject)

	// Get specific project
	projects.Get("/:id", h.GetProject)

	// Bids on my project (owner or admin)
	projects.Get("/:id/bids", h.ListProjectBids)
}
