package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"workbridge/internal/engine"
	"workbridge/internal/models"
)

type CreateOrderRequest struct {
	Percentage int `json:"percentage" validate:"required"`
}

// CreateOrder opens a gateway checkout covering the contract up to the
// requested checkpoint. Nothing is written to the ledger until the capture is
// verified.
func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	req := new(CreateOrderRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	pct, ok := models.ParseCheckpoint(req.Percentage)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Percentage must be one of 25, 50, 75, 100",
		})
	}

	order, err := h.Engine.CreateOrder(c.Context(), contractID, pct, actorFromCtx(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created. Complete the checkout to fund the contract.",
		"order":   order,
	})
}

// ConfirmPayment lets the payer's return flow trigger verification of a
// reference. Safe to call any number of times; replays are dropped.
func (h *Handler) ConfirmPayment(c *fiber.Ctx) error {
	reference := c.Params("reference")

	contract, err := h.Engine.ConfirmPayment(c.Context(), reference)
	if err != nil {
		if engine.HasCode(err, engine.CodeDuplicatePayment) {
			return c.JSON(fiber.Map{
				"message": "Payment already processed",
			})
		}
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Payment captured",
		"contract": contract,
	})
}

// GatewayWebhook handles the gateway's asynchronous charge notification. The
// HMAC signature is checked against the raw body before anything else;
// everything after that is the same verified-capture path as ConfirmPayment.
func (h *Handler) GatewayWebhook(c *fiber.Ctx) error {
	signature := c.Get("x-paystack-signature")
	body := c.Body()
	if h.Gateway == nil || !h.Gateway.VerifyWebhookSignature(body, signature) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid webhook signature",
		})
	}

	var payload struct {
		Event string `json:"event"`
		Data  struct {
			Reference string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}
	if payload.Event != "charge.success" {
		// Not a capture; acknowledge and move on.
		return c.SendStatus(fiber.StatusOK)
	}

	_, err := h.Engine.ConfirmPayment(c.Context(), payload.Data.Reference)
	if err != nil {
		// Duplicate deliveries are acknowledged so the gateway stops
		// retrying; real failures are surfaced for redelivery.
		if engine.HasCode(err, engine.CodeDuplicatePayment) {
			return c.SendStatus(fiber.StatusOK)
		}
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
