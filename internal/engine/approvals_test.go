package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"workbridge/internal/engine"
	"workbridge/internal/models"
)

func TestDecideSubmission(t *testing.T) {
	ctx := context.Background()

	t.Run("approval advances completion", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)
		h.submitAt(t, c.ID, models.Checkpoint25)

		got, err := h.engine.DecideSubmission(ctx, c.ID, engine.DecisionApprove, "looks good", h.clientActor())
		require.NoError(t, err)
		require.Equal(t, models.ContractWorking, got.Status)
		require.Equal(t, 25, got.CompletionPercentage)
		require.Nil(t, got.PendingPercentage)

		attachments, err := h.store.ListAttachments(ctx, c.ID, models.Checkpoint25)
		require.NoError(t, err)
		require.Equal(t, "looks good", attachments[0].ClientRemark)
	})

	t.Run("approving the final checkpoint completes the contract", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)

		for _, pct := range models.Checkpoints {
			h.submitAt(t, c.ID, pct)
			_, err := h.engine.DecideSubmission(ctx, c.ID, engine.DecisionApprove, "approved", h.clientActor())
			require.NoError(t, err)
		}

		got, err := h.store.GetContract(ctx, c.ID)
		require.NoError(t, err)
		require.Equal(t, models.ContractCompleted, got.Status)
		require.Equal(t, 100, got.CompletionPercentage)
	})

	t.Run("rejection preserves completion and pending", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)
		h.submitAt(t, c.ID, models.Checkpoint25)

		got, err := h.engine.DecideSubmission(ctx, c.ID, engine.DecisionReject, "not there yet", h.clientActor())
		require.NoError(t, err)
		require.Equal(t, models.ContractReworkNeeded, got.Status)
		require.Zero(t, got.CompletionPercentage)
		require.NotNil(t, got.PendingPercentage)
		require.Equal(t, models.Checkpoint25, *got.PendingPercentage)

		// Resubmit and approve the same checkpoint.
		h.submitAt(t, c.ID, models.Checkpoint25)
		got, err = h.engine.DecideSubmission(ctx, c.ID, engine.DecisionApprove, "better", h.clientActor())
		require.NoError(t, err)
		require.Equal(t, models.ContractWorking, got.Status)
		require.Equal(t, 25, got.CompletionPercentage)
	})

	t.Run("rejection requires a remark", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)
		h.submitAt(t, c.ID, models.Checkpoint25)

		_, err := h.engine.DecideSubmission(ctx, c.ID, engine.DecisionReject, "", h.clientActor())
		require.Equal(t, engine.KindValidation, engine.KindOf(err))
	})

	t.Run("second decision on the same submission fails", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)
		h.submitAt(t, c.ID, models.Checkpoint25)

		_, err := h.engine.DecideSubmission(ctx, c.ID, engine.DecisionApprove, "ok", h.clientActor())
		require.NoError(t, err)
		_, err = h.engine.DecideSubmission(ctx, c.ID, engine.DecisionApprove, "ok again", h.clientActor())
		require.True(t, engine.HasCode(err, engine.CodeNoPendingSubmission))
	})

	t.Run("freelancer cannot decide", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)
		h.submitAt(t, c.ID, models.Checkpoint25)

		_, err := h.engine.DecideSubmission(ctx, c.ID, engine.DecisionApprove, "ok", h.freelancerActor())
		require.Equal(t, engine.KindAuthorization, engine.KindOf(err))
	})

	t.Run("audit log records the full history", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)

		h.submitAt(t, c.ID, models.Checkpoint25)
		_, err := h.engine.DecideSubmission(ctx, c.ID, engine.DecisionReject, "redo", h.clientActor())
		require.NoError(t, err)
		h.submitAt(t, c.ID, models.Checkpoint25)
		_, err = h.engine.DecideSubmission(ctx, c.ID, engine.DecisionApprove, "fine", h.clientActor())
		require.NoError(t, err)

		logs, err := h.store.ListApprovalLogs(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, logs, 4)
		actions := []models.ApprovalAction{logs[0].Action, logs[1].Action, logs[2].Action, logs[3].Action}
		require.Equal(t, []models.ApprovalAction{
			models.ActionSubmitted, models.ActionRejected, models.ActionSubmitted, models.ActionApproved,
		}, actions)
	})
}
