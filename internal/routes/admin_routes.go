package routes

import (
	"github.com/gofiber/fiber/v2"

	"workbridge/internal/handlers"
	"workbridge/internal/middleware"
)

func SetupAdminRoutes(app *fiber.App, h *handlers.Handler, jwtSecret string) {
	admin := app.Group("/api/admin", middleware.Protected(jwtSecret), middleware.AdminOnly())

	// Dispute queue
	admin.Get("/tickets/open", h.OpenTickets)
	admin.Post("/tickets/:id/resolve", h.ResolveTicket)

	// Transaction management
	admin.Get("/transactions", h.AllTransactions)
}
