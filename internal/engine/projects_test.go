package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"workbridge/internal/engine"
	"workbridge/internal/models"
)

func TestCreateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("client posts an open project", func(t *testing.T) {
		h := newHarness(t, engine.Options{})

		p, err := h.engine.CreateProject(ctx, h.clientActor(), engine.ProjectInput{
			Title:       "API integration",
			Description: "Wire our CRM to the billing system",
			BudgetMinor: 250_000,
			Deadline:    time.Now().Add(14 * 24 * time.Hour),
		})
		require.NoError(t, err)
		require.Equal(t, models.ProjectOpen, p.Status)
		require.Equal(t, "USD", p.Currency)
		require.Equal(t, 1, p.RequiredFreelancers)
	})

	t.Run("freelancer cannot post", func(t *testing.T) {
		h := newHarness(t, engine.Options{})

		_, err := h.engine.CreateProject(ctx, h.freelancerActor(), engine.ProjectInput{
			Title:       "API integration",
			Description: "desc",
			BudgetMinor: 250_000,
			Deadline:    time.Now().Add(time.Hour),
		})
		require.Equal(t, engine.KindAuthorization, engine.KindOf(err))
	})

	t.Run("past deadline is rejected", func(t *testing.T) {
		h := newHarness(t, engine.Options{})

		_, err := h.engine.CreateProject(ctx, h.clientActor(), engine.ProjectInput{
			Title:       "API integration",
			Description: "desc",
			BudgetMinor: 250_000,
			Deadline:    time.Now().Add(-time.Hour),
		})
		require.Equal(t, engine.KindValidation, engine.KindOf(err))
	})
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("owner edits while no contract exists", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		p := h.openProject(t, 100_000)

		got, err := h.engine.UpdateProject(ctx, p.ID, h.clientActor(), engine.ProjectInput{
			Title:       "Landing page v2",
			Description: "Scope grew",
			BudgetMinor: 150_000,
			Deadline:    time.Now().Add(45 * 24 * time.Hour),
		})
		require.NoError(t, err)
		require.Equal(t, int64(150_000), got.BudgetMinor)
	})

	t.Run("contracted project is immutable", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)

		_, err := h.engine.UpdateProject(ctx, c.ProjectID, h.clientActor(), engine.ProjectInput{
			Title:       "Changing the deal",
			Description: "Pray I do not alter it further",
			BudgetMinor: 1,
			Deadline:    time.Now().Add(time.Hour),
		})
		require.True(t, engine.HasCode(err, engine.CodeProjectLocked))
	})

	t.Run("non-owner cannot edit", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		p := h.openProject(t, 100_000)

		_, err := h.engine.UpdateProject(ctx, p.ID, h.freelancerActor(), engine.ProjectInput{
			Title:       "Hijack",
			Description: "not mine",
			BudgetMinor: 1_000,
			Deadline:    time.Now().Add(time.Hour),
		})
		require.Equal(t, engine.KindAuthorization, engine.KindOf(err))
	})
}
