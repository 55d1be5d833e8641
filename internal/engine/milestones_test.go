package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"workbridge/internal/engine"
	"workbridge/internal/models"
)

func TestSubmitMilestone(t *testing.T) {
	ctx := context.Background()

	t.Run("first submission targets 25", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)

		got, err := h.engine.SubmitMilestone(ctx, c.ID, engine.SubmissionInput{
			Percentage:  models.Checkpoint25,
			Attachments: []engine.AttachmentInput{{FileName: "draft.pdf", StorageKey: "https://files.test/draft.pdf"}},
			Remark:      "first quarter done",
		}, h.freelancerActor())
		require.NoError(t, err)
		require.Equal(t, models.ContractProjectSubmitted, got.Status)
		require.NotNil(t, got.PendingPercentage)
		require.Equal(t, models.Checkpoint25, *got.PendingPercentage)
		require.Zero(t, got.CompletionPercentage)

		logs, err := h.store.ListApprovalLogs(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		require.Equal(t, models.ActionSubmitted, logs[0].Action)
	})

	t.Run("skipping a checkpoint is rejected", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)

		_, err := h.engine.SubmitMilestone(ctx, c.ID, engine.SubmissionInput{
			Percentage:  models.Checkpoint50,
			Attachments: []engine.AttachmentInput{{FileName: "half.pdf", StorageKey: "https://files.test/half.pdf"}},
			Remark:      "half done",
		}, h.freelancerActor())
		require.True(t, engine.HasCode(err, engine.CodeInvalidCheckpoint))
	})

	t.Run("only the freelancer submits", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)

		_, err := h.engine.SubmitMilestone(ctx, c.ID, engine.SubmissionInput{
			Percentage:  models.Checkpoint25,
			Attachments: []engine.AttachmentInput{{FileName: "draft.pdf", StorageKey: "https://files.test/draft.pdf"}},
			Remark:      "done",
		}, h.clientActor())
		require.Equal(t, engine.KindAuthorization, engine.KindOf(err))
	})

	t.Run("payment pending contract does not accept submissions", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractPaymentPending)

		_, err := h.engine.SubmitMilestone(ctx, c.ID, engine.SubmissionInput{
			Percentage:  models.Checkpoint25,
			Attachments: []engine.AttachmentInput{{FileName: "draft.pdf", StorageKey: "https://files.test/draft.pdf"}},
			Remark:      "done",
		}, h.freelancerActor())
		require.Equal(t, engine.KindStateConflict, engine.KindOf(err))
	})

	t.Run("rework must resubmit the pending checkpoint", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)
		h.submitAt(t, c.ID, models.Checkpoint25)
		_, err := h.engine.DecideSubmission(ctx, c.ID, engine.DecisionReject, "needs polish", h.clientActor())
		require.NoError(t, err)

		_, err = h.engine.SubmitMilestone(ctx, c.ID, engine.SubmissionInput{
			Percentage:  models.Checkpoint50,
			Attachments: []engine.AttachmentInput{{FileName: "v2.pdf", StorageKey: "https://files.test/v2.pdf"}},
			Remark:      "skipped ahead",
		}, h.freelancerActor())
		require.True(t, engine.HasCode(err, engine.CodeInvalidCheckpoint))

		got, err := h.engine.SubmitMilestone(ctx, c.ID, engine.SubmissionInput{
			Percentage:  models.Checkpoint25,
			Attachments: []engine.AttachmentInput{{FileName: "v2.pdf", StorageKey: "https://files.test/v2.pdf"}},
			Remark:      "polished",
		}, h.freelancerActor())
		require.NoError(t, err)
		require.Equal(t, models.ContractProjectSubmitted, got.Status)
	})

	t.Run("disallowed file type", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)

		_, err := h.engine.SubmitMilestone(ctx, c.ID, engine.SubmissionInput{
			Percentage:  models.Checkpoint25,
			Attachments: []engine.AttachmentInput{{FileName: "payload.exe", StorageKey: "https://files.test/payload.exe"}},
			Remark:      "done",
		}, h.freelancerActor())
		require.Equal(t, engine.KindValidation, engine.KindOf(err))
	})

	t.Run("live attachments are capped per checkpoint", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)

		var files []engine.AttachmentInput
		for i := 0; i < 6; i++ {
			files = append(files, engine.AttachmentInput{FileName: "part.pdf", StorageKey: "https://files.test/part.pdf"})
		}
		_, err := h.engine.SubmitMilestone(ctx, c.ID, engine.SubmissionInput{
			Percentage:  models.Checkpoint25,
			Attachments: files,
			Remark:      "everything",
		}, h.freelancerActor())
		require.Equal(t, engine.KindValidation, engine.KindOf(err))
	})

	t.Run("removing an old attachment frees a slot", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		c := h.contractAt(t, 100_000, models.ContractWorking)

		var files []engine.AttachmentInput
		for i := 0; i < 5; i++ {
			files = append(files, engine.AttachmentInput{FileName: "part.pdf", StorageKey: "https://files.test/part.pdf"})
		}
		_, err := h.engine.SubmitMilestone(ctx, c.ID, engine.SubmissionInput{
			Percentage:  models.Checkpoint25,
			Attachments: files,
			Remark:      "full set",
		}, h.freelancerActor())
		require.NoError(t, err)
		_, err = h.engine.DecideSubmission(ctx, c.ID, engine.DecisionReject, "replace part 1", h.clientActor())
		require.NoError(t, err)

		existing, err := h.store.ListAttachments(ctx, c.ID, models.Checkpoint25)
		require.NoError(t, err)
		require.Len(t, existing, 5)

		_, err = h.engine.SubmitMilestone(ctx, c.ID, engine.SubmissionInput{
			Percentage:  models.Checkpoint25,
			Attachments: []engine.AttachmentInput{{FileName: "part1-v2.pdf", StorageKey: "https://files.test/part1-v2.pdf"}},
			RemoveIDs:   []uint{existing[0].ID},
			Remark:      "replaced part 1",
		}, h.freelancerActor())
		require.NoError(t, err)

		live, err := h.store.CountLiveAttachments(ctx, c.ID, models.Checkpoint25)
		require.NoError(t, err)
		require.Equal(t, 5, live)
	})
}
