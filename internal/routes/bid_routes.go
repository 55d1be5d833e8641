package routes

import (
	"github.com/gofiber/fiber/v2"

	"workbridge/internal/handlers"
	"workbridge/internal/middleware"
)

func SetupBidRoutes(app *fiber.App, h *handlers.Handler, jwtSecret string) {
	bids := app.Group("/api/bids", middleware.Protected(jwtSecret))

	// Place a bid on a project (freelancer)
	bids.Post("/projects/:id", h.PlaceBid)

	// Approve or reject a bid (project owner)
	bids.Post("/:id/decide", h.DecideBid)

	// Get all my bids
	bids.Get("/mine", h.MyBids)
}
