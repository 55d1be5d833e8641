package handlers

import (
	"github.com/gofiber/fiber/v2"

	"workbridge/internal/models"
)

type RaiseTicketRequest struct {
	Reason string `json:"reason" validate:"required"`
	Remark string `json:"remark" validate:"required"`
}

type ResolveTicketRequest struct {
	ClientPercent     int `json:"client_percent"`
	FreelancerPercent int `json:"freelancer_percent"`
}

// RaiseTicket opens a dispute against a contract.
func (h *Handler) RaiseTicket(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	req := new(RaiseTicketRequest)
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

	ticket, err := h.Engine.RaiseTicket(c.Context(), contractID, models.TicketReason(req.Reason), req.Remark, actorFromCtx(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Ticket raised. An admin will review the dispute.",
		"ticket":  ticket,
	})
}

// CancelTicket withdraws an open ticket.
func (h *Handler) CancelTicket(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ticket, err := h.Engine.CancelTicket(c.Context(), ticketID, actorFromCtx(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Ticket cancelled",
		"ticket":  ticket,
	})
}

// ResolveTicket closes a dispute with an admin-assigned refund split.
func (h *Handler) ResolveTicket(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	req := new(ResolveTicketRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ticket, err := h.Engine.ResolveTicket(c.Context(), ticketID, req.ClientPercent, req.FreelancerPercent, actorFromCtx(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Ticket resolved. Settlement entries recorded.",
		"ticket":  ticket,
	})
}

// MyTickets returns the tickets the authenticated user raised.
func (h *Handler) MyTickets(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	tickets, err := h.Store.ListUserTickets(c.Context(), actor.ID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"tickets": tickets,
		"count":   len(tickets),
	})
}

// OpenTickets returns the admin review queue.
func (h *Handler) OpenTickets(c *fiber.Ctx) error {
	tickets, err := h.Store.ListOpenTickets(c.Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"tickets": tickets,
		"count":   len(tickets),
	})
}
