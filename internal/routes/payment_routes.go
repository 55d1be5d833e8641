package routes

import (
	"github.com/gofiber/fiber/v2"

	"workbridge/internal/handlers"
	"workbridge/internal/middleware"
)

func SetupPaymentRoutes(app *fiber.App, h *handlers.Handler, jwtSecret string) {
	payments := app.Group("/api/payments", middleware.Protected(jwtSecret))

	// Initialize a checkpoint payment (client)
	payments.Post("/contracts/:id/orders", h.CreateOrder)

	// Confirm a payment after gateway redirect
	payments.Post("/confirm/:reference", h.ConfirmPayment)

	// Gateway callback, authenticated by signature instead of JWT
	app.Post("/api/payments/webhook", h.GatewayWebhook)
}
