package handlers

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"workbridge/internal/engine"
	"workbridge/internal/models"
)

const maxAttachmentBytes = 10 * 1024 * 1024

type AttachmentRequest struct {
	FileName        string `json:"file_name" validate:"required"`
	StorageKey      string `json:"storage_key" validate:"required"`
	StoragePublicID string `json:"storage_public_id"`
}

type SubmitMilestoneRequest struct {
	Percentage  int                 `json:"percentage" validate:"required"`
	Attachments []AttachmentRequest `json:"attachments" validate:"required,min=1,max=5,dive"`
	RemoveIDs   []uint              `json:"remove_ids"`
	Remark      string              `json:"remark" validate:"required"`
}

// SubmitMilestone records the freelancer's delivery at a checkpoint and hands
// the contract to the client for decision.
func (h *Handler) SubmitMilestone(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	req := new(SubmitMilestoneRequest)
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

	pct, ok := models.ParseCheckpoint(req.Percentage)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Percentage must be one of 25, 50, 75, 100",
		})
	}

	in := engine.SubmissionInput{
		Percentage: pct,
		Remark:     req.Remark,
		RemoveIDs:  req.RemoveIDs,
	}
	for _, a := range req.Attachments {
		in.Attachments = append(in.Attachments, engine.AttachmentInput{
			FileName:        a.FileName,
			StorageKey:      a.StorageKey,
			StoragePublicID: a.StoragePublicID,
		})
	}

	contract, err := h.Engine.SubmitMilestone(c.Context(), contractID, in, actorFromCtx(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Work submitted. Waiting for the client's decision.",
		"contract": contract,
	})
}

// UploadAttachment pushes one delivered file to the blob store and returns
// the descriptor to reference in a milestone submission.
func (h *Handler) UploadAttachment(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if h.Uploads == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "File storage is not configured",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}
	if !engine.AllowedExtension(filepath.Ext(file.Filename)) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File type is not allowed",
		})
	}
	if file.Size > maxAttachmentBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File size exceeds 10MB limit",
		})
	}

	actor := actorFromCtx(c)
	contract, err := h.Store.GetContract(c.Context(), contractID)
	if err != nil {
		return h.respondError(c, err)
	}
	if contract.FreelancerID != actor.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only the contract's freelancer can upload deliverables",
		})
	}

	result, err := h.Uploads.UploadAttachment(c.Context(), file, contractID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store file",
		})
	}

	return c.JSON(fiber.Map{
		"message":    "File uploaded",
		"attachment": result,
	})
}

// ListCheckpointAttachments returns the attachment history at one checkpoint
// for either party. Approved checkpoints remain readable as audit history.
func (h *Handler) ListCheckpointAttachments(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	rawPct, err := parseID(c, "percentage")
	if err != nil {
		return err
	}
	pct, ok := models.ParseCheckpoint(int(rawPct))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Percentage must be one of 25, 50, 75, 100",
		})
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

	attachments, err := h.Store.ListAttachments(c.Context(), contractID, pct)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"attachments": attachments,
		"count":       len(attachments),
	})
}
