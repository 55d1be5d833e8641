package handlers

import (
	"github.com/gofiber/fiber/v2"

	"workbridge/internal/engine"
	"workbridge/internal/models"
)

type PlaceBidRequest struct {
	AmountMinor int64  `json:"amount_minor" validate:"required,gt=0"`
	Message     string `json:"message" validate:"required"`
}

type DecideBidRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Reason   string `json:"reason"`
}

// PlaceBid creates a pending bid on an open project.
func (h *Handler) PlaceBid(c *fiber.Ctx) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	req := new(PlaceBidRequest)
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

	bid, err := h.Engine.PlaceBid(c.Context(), projectID, actorFromCtx(c), req.AmountMinor, req.Message)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Bid placed. Waiting for the client's decision.",
		"bid":     bid,
	})
}

// DecideBid approves or rejects a pending bid. Approval creates the contract
// and rejects every other pending bid in the same write.
func (h *Handler) DecideBid(c *fiber.Ctx) error {
	bidID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	req := new(DecideBidRequest)
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

	contract, err := h.Engine.DecideBid(c.Context(), bidID, engine.Decision(req.Decision), req.Reason, actorFromCtx(c))
	if err != nil {
		return h.respondError(c, err)
	}

	if contract == nil {
		return c.JSON(fiber.Map{
			"message": "Bid rejected",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Bid approved. Contract created and awaiting the first payment.",
		"contract": contract,
	})
}

// ListProjectBids returns all bids on a project for its owner or an admin.
func (h *Handler) ListProjectBids(c *fiber.Ctx) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor := actorFromCtx(c)

	project, err := h.Store.GetProject(c.Context(), projectID)
	if err != nil {
		return h.respondError(c, err)
	}
	if project.ClientID != actor.ID && !isAdmin(actor) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only the project owner can view its bids",
		})
	}

	bids, err := h.Store.ListBidsForProject(c.Context(), projectID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"bids":  bids,
		"count": len(bids),
	})
}

// MyBids returns the authenticated freelancer's bids across projects.
func (h *Handler) MyBids(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	bids, err := h.Store.ListUserBids(c.Context(), actor.ID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"bids":  bids,
		"count": len(bids),
	})
}

func isAdmin(a engine.Actor) bool {
	return a.Role == models.RoleAdmin
}
