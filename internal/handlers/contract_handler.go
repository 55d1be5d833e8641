package handlers

import (
	"github.com/gofiber/fiber/v2"

	"workbridge/internal/engine"
	"workbridge/internal/models"
)

type DecideSubmissionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Remark   string `json:"remark"`
}

// DecideSubmission applies the client's approve/reject to the pending
// submission.
func (h *Handler) DecideSubmission(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	req := new(DecideSubmissionRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	contract, err := h.Engine.DecideSubmission(c.Context(), contractID, engine.Decision(req.Decision), req.Remark, actorFromCtx(c))
	if err != nil {
		return h.respondError(c, err)
	}

	msg := "Submission rejected. The freelancer must rework this checkpoint."
	if engine.Decision(req.Decision) == engine.DecisionApprove {
		msg = "Submission approved."
		if contract.Status == models.ContractCompleted {
			msg = "Submission approved. Contract is complete."
		}
	}
	return c.JSON(fiber.Map{
		"message":  msg,
		"contract": contract,
	})
}

// MyContracts returns every contract the authenticated user is a party to.
func (h *Handler) MyContracts(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	contracts, err := h.Store.ListUserContracts(c.Context(), actor.ID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"contracts": contracts,
		"count":     len(contracts),
	})
}

// GetContract returns one contract for a party or an admin.
func (h *Handler) GetContract(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	actor := actorFromCtx(c)
	contract, err := h.Store.GetContract(c.Context(), contractID)
	if err != nil {
		return h.respondError(c, err)
	}
	if contract.ClientID != actor.ID && contract.FreelancerID != actor.ID && actor.Role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have access to this contract",
		})
	}

	return c.JSON(fiber.Map{
		"contract": contract,
	})
}

// ContractApprovalLogs returns the contract's immutable audit trail.
func (h *Handler) ContractApprovalLogs(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	actor := actorFromCtx(c)
	contract, err := h.Store.GetContract(c.Context(), contractID)
	if err != nil {
		return h.respondError(c, err)
	}
	if contract.ClientID != actor.ID && contract.FreelancerID != actor.ID && actor.Role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have access to this contract",
		})
	}

	logs, err := h.Store.ListApprovalLogs(c.Context(), contractID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"approval_logs": logs,
		"count":         len(logs),
	})
}

// ContractTransactions returns the contract's ledger entries.
func (h *Handler) ContractTransactions(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	actor := actorFromCtx(c)
	contract, err := h.Store.GetContract(c.Context(), contractID)
	if err != nil {
		return h.respondError(c, err)
	}
	if contract.ClientID != actor.ID && contract.FreelancerID != actor.ID && actor.Role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have access to this contract",
		})
	}

	txns, err := h.Store.ListContractTransactions(c.Context(), contractID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"transactions": txns,
		"count":        len(txns),
	})
}

// AllTransactions returns the full transaction ledger for admins.
func (h *Handler) AllTransactions(c *fiber.Ctx) error {
	txns, err := h.Store.ListAllTransactions(c.Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"transactions": txns,
		"count":        len(txns),
	})
}
