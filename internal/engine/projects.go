package engine

import (
	"context"
	"errors"
	"time"

	"workbridge/internal/models"
	"workbridge/internal/store"
)

type ProjectInput struct {
	Title               string
	Description         string
	BudgetMinor         int64
	Currency            string
	Deadline            time.Time
	RequiredFreelancers int
}

func (in *ProjectInput) validate() error {
	if in.Title == "" {
		return validationf("InvalidProject", "title is required")
	}
	if in.Description == "" {
		return validationf("InvalidProject", "description is required")
	}
	if in.BudgetMinor <= 0 {
		return validationf("InvalidProject", "budget must be positive")
	}
	if in.Deadline.Before(time.Now()) {
		return validationf("InvalidProject", "deadline must be in the future")
	}
	if in.RequiredFreelancers <= 0 {
		in.RequiredFreelancers = 1
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	return nil
}

// CreateProject posts a new project for bidding. Only clients post projects.
func (e *Engine) CreateProject(ctx context.Context, actor Actor, in ProjectInput) (*models.Project, error) {
	if actor.Role != models.RoleClient {
		return nil, authorizationf("NotClient", "only clients can post projects")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	project := &models.Project{
		ClientID:            actor.ID,
		Title:               in.Title,
		Description:         in.Description,
		BudgetMinor:         in.BudgetMinor,
		Currency:            in.Currency,
		Deadline:            in.Deadline,
		RequiredFreelancers: in.RequiredFreelancers,
		Status:              models.ProjectOpen,
	}
	if err := e.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject applies an administrative edit by the owner or an admin. A
// project is immutable once a contract exists for it.
func (e *Engine) UpdateProject(ctx context.Context, projectID uint, actor Actor, in ProjectInput) (*models.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var project *models.Project
	err := e.atomicRetry(ctx, func(s store.Store) error {
		var err error
		project, err = s.GetProject(ctx, projectID)
		if errors.Is(err, store.ErrNotFound) {
			return notFound("project")
		}
		if err != nil {
			return err
		}

		if project.ClientID != actor.ID && actor.Role != models.RoleAdmin {
			return authorizationf("NotProjectOwner", "only the project owner or an admin can edit the project")
		}
		if _, err := s.GetContractByProject(ctx, projectID); err == nil {
			return conflictf(CodeProjectLocked, "project already has a contract and can no longer be edited")
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		project.Title = in.Title
		project.Description = in.Description
		project.BudgetMinor = in.BudgetMinor
		project.Currency = in.Currency
		project.Deadline = in.Deadline
		project.RequiredFreelancers = in.RequiredFreelancers
		return s.UpdateProject(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}
