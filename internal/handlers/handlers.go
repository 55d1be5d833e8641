package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"workbridge/internal/engine"
	"workbridge/internal/models"
	"workbridge/internal/services"
	"workbridge/internal/store"
)

var validate = validator.New()

type Handler struct {
	Engine  *engine.Engine
	Store   store.Store
	Uploads *services.UploadService
	Gateway *services.PaystackGateway
	Log     *zap.Logger
}

func New(eng *engine.Engine, st store.Store, uploads *services.UploadService, gateway *services.PaystackGateway, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Engine: eng, Store: st, Uploads: uploads, Gateway: gateway, Log: log}
}

func actorFromCtx(c *fiber.Ctx) engine.Actor {
	id, _ := c.Locals("user_id").(uint)
	role, _ := c.Locals("role").(models.Role)
	return engine.Actor{ID: id, Role: role}
}

// respondError maps engine error kinds onto HTTP statuses. Validation and
// authorization failures surface verbatim; conflicts tell the caller to
// re-fetch; external gateway failures surface as bad gateway.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		status := fiber.StatusInternalServerError
		switch engErr.Kind {
		case engine.KindValidation:
			status = fiber.StatusBadRequest
		case engine.KindAuthorization:
			status = fiber.StatusForbidden
		case engine.KindStateConflict:
			status = fiber.StatusConflict
			if engErr.Code == engine.CodeNotFound {
				status = fiber.StatusNotFound
			}
		case engine.KindConcurrency:
			status = fiber.StatusConflict
		case engine.KindExternal:
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(fiber.Map{
			"error": engErr.Message,
			"code":  engErr.Code,
		})
	}

	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Record not found",
		})
	}

	h.Log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+param)
	}
	return uint(id), nil
}
