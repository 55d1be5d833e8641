package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"workbridge/internal/engine"
)

type ProjectRequest struct {
	Title               string    `json:"title" validate:"required"`
	Description         string    `json:"description" validate:"required"`
	BudgetMinor         int64     `json:"budget_minor" validate:"required,gt=0"`
	Currency            string    `json:"currency"`
	Deadline            time.Time `json:"deadline" validate:"required"`
	RequiredFreelancers int       `json:"required_freelancers"`
}

func (r *ProjectRequest) toInput() engine.ProjectInput {
	return engine.ProjectInput{
		Title:               r.Title,
		Description:         r.Description,
		BudgetMinor:         r.BudgetMinor,
		Currency:            r.Currency,
		Deadline:            r.Deadline,
		RequiredFreelancers: r.RequiredFreelancers,
	}
}

// CreateProject posts a new project open for bidding.
func (h *Handler) CreateProject(c *fiber.Ctx) error {
	req := new(ProjectRequest)
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

	project, err := h.Engine.CreateProject(c.Context(), actorFromCtx(c), req.toInput())
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Project posted. Freelancers can now bid on it.",
		"project": project,
	})
}

// UpdateProject applies an owner/admin edit while the project has no contract.
func (h *Handler) UpdateProject(c *fiber.Ctx) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	req := new(ProjectRequest)
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

	project, err := h.Engine.UpdateProject(c.Context(), projectID, actorFromCtx(c), req.toInput())
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Project updated",
		"project": project,
	})
}

// ListOpenProjects returns every project still accepting bids.
func (h *Handler) ListOpenProjects(c *fiber.Ctx) error {
	projects, err := h.Store.ListOpenProjects(c.Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"projects": projects,
		"count":    len(projects),
	})
}

// MyProjects returns the authenticated client's projects.
func (h *Handler) MyProjects(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	projects, err := h.Store.ListProjectsByClient(c.Context(), actor.ID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"projects": projects,
		"count":    len(projects),
	})
}

// GetProject returns one project.
func (h *Handler) GetProject(c *fiber.Ctx) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	project, err := h.Store.GetProject(c.Context(), projectID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"project": project,
	})
}
