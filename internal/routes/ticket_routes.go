package routes

import (
	"github.com/gofiber/fiber/v2"

	"workbridge/internal/handlers"
	"workbridge/internal/middleware"
)

func SetupTicketRoutes(app *fiber.App, h *handlers.Handler, jwtSecret string) {
	tickets := app.Group("/api/tickets", middleware.Protected(jwtSecret))

	// Raise a dispute on a contract
	tickets.Post("/contracts/:id", h.RaiseTicket)

	// Withdraw my own ticket
	tickets.Post("/:id/cancel", h.CancelTicket)

	// Get all my tickets
	tickets.Get("/mine", h.MyTickets)
}
