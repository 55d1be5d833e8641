package routes

import (
	"github.com/gofiber/fiber/v2"

	"workbridge/internal/handlers"
	"workbridge/internal/middleware"
)

func SetupContractRoutes(app *fiber.App, h *handlers.Handler, jwtSecret string) {
	contracts := app.Group("/api/contracts", middleware.Protected(jwtSecret))

	// Get all my contracts
	contracts.Get("/mine", h.MyContracts)

	// Submit work for the next checkpoint (freelancer)
	contracts.Post("/:id/submissions", h.SubmitMilestone)

	// Approve or reject the pending submission (client)
	contracts.Post("/:id/submissions/decide", h.DecideSubmission)

	// Upload a deliverable file before submitting
	contracts.Post("/:id/attachments", h.UploadAttachment)

	// Files attached at a checkpoint
	contracts.Get("/:id/attachments/:percentage", h.ListCheckpointAttachments)

	// Submission history
	contracts.Get("/:id/approvals", h.ContractApprovalLogs)

	// Payments on this contract
	contracts.Get("/:id/transactions", h.ContractTransactions)

	// Get specific contract
	contracts.Get("/:id", h.GetContract)
}
