package engine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"workbridge/internal/engine"
	"workbridge/internal/models"
)

func TestPlaceBid(t *testing.T) {
	ctx := context.Background()

	t.Run("freelancer places a pending bid", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		p := h.openProject(t, 100_000)

		bid, err := h.engine.PlaceBid(ctx, p.ID, h.freelancerActor(), 90_000, "I can do this")
		require.NoError(t, err)
		require.Equal(t, models.BidPending, bid.Status)
		require.Equal(t, h.freelancer.ID, bid.BidderID)
	})

	t.Run("client cannot bid", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		p := h.openProject(t, 100_000)

		_, err := h.engine.PlaceBid(ctx, p.ID, h.clientActor(), 90_000, "hire me")
		require.Equal(t, engine.KindAuthorization, engine.KindOf(err))
	})

	t.Run("second active bid is rejected", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		p := h.openProject(t, 100_000)

		_, err := h.engine.PlaceBid(ctx, p.ID, h.freelancerActor(), 90_000, "first")
		require.NoError(t, err)

		_, err = h.engine.PlaceBid(ctx, p.ID, h.freelancerActor(), 85_000, "second")
		require.True(t, engine.HasCode(err, engine.CodeDuplicateBid))
	})

	t.Run("one re-bid after rejection, not two", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		p := h.openProject(t, 100_000)

		bid, err := h.engine.PlaceBid(ctx, p.ID, h.freelancerActor(), 90_000, "first")
		require.NoError(t, err)
		_, err = h.engine.DecideBid(ctx, bid.ID, engine.DecisionReject, "too expensive", h.clientActor())
		require.NoError(t, err)

		rebid, err := h.engine.PlaceBid(ctx, p.ID, h.freelancerActor(), 80_000, "lowered my rate")
		require.NoError(t, err)

		_, err = h.engine.DecideBid(ctx, rebid.ID, engine.DecisionReject, "still too expensive", h.clientActor())
		require.NoError(t, err)

		_, err = h.engine.PlaceBid(ctx, p.ID, h.freelancerActor(), 70_000, "third try")
		require.True(t, engine.HasCode(err, engine.CodeReBidNotAllowed))
	})

	t.Run("closed project rejects bids", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		p := h.openProject(t, 100_000)
		p.Status = models.ProjectContracted
		require.NoError(t, h.store.UpdateProject(ctx, p))

		_, err := h.engine.PlaceBid(ctx, p.ID, h.freelancerActor(), 90_000, "late")
		require.True(t, engine.HasCode(err, engine.CodeProjectLocked))
	})
}

func TestDecideBid(t *testing.T) {
	ctx := context.Background()

	t.Run("approval creates contract and rejects siblings", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		p := h.openProject(t, 100_000)
		other := h.store.SeedUser("fatima", models.RoleFreelancer)

		winner, err := h.engine.PlaceBid(ctx, p.ID, h.freelancerActor(), 90_000, "pick me")
		require.NoError(t, err)
		loser, err := h.engine.PlaceBid(ctx, p.ID, actorFor(other), 95_000, "or me")
		require.NoError(t, err)

		contract, err := h.engine.DecideBid(ctx, winner.ID, engine.DecisionApprove, "", h.clientActor())
		require.NoError(t, err)
		require.NotNil(t, contract)
		require.Equal(t, models.ContractPaymentPending, contract.Status)
		require.Equal(t, winner.AmountMinor, contract.BudgetMinor)

		got, err := h.store.GetBid(ctx, loser.ID)
		require.NoError(t, err)
		require.Equal(t, models.BidRejected, got.Status)

		project, err := h.store.GetProject(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, models.ProjectContracted, project.Status)

		require.Len(t, h.notifier.byType(engine.EventBidApproved), 1)
	})

	t.Run("rejection requires a reason", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		p := h.openProject(t, 100_000)
		bid, err := h.engine.PlaceBid(ctx, p.ID, h.freelancerActor(), 90_000, "pick me")
		require.NoError(t, err)

		_, err = h.engine.DecideBid(ctx, bid.ID, engine.DecisionReject, "", h.clientActor())
		require.Equal(t, engine.KindValidation, engine.KindOf(err))
	})

	t.Run("only owner or admin decides", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		p := h.openProject(t, 100_000)
		bid, err := h.engine.PlaceBid(ctx, p.ID, h.freelancerActor(), 90_000, "pick me")
		require.NoError(t, err)

		_, err = h.engine.DecideBid(ctx, bid.ID, engine.DecisionApprove, "", h.freelancerActor())
		require.True(t, engine.HasCode(err, engine.CodeNotBidOwner))

		contract, err := h.engine.DecideBid(ctx, bid.ID, engine.DecisionApprove, "", h.adminActor())
		require.NoError(t, err)
		require.NotNil(t, contract)
	})

	t.Run("decided bid cannot be decided again", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		p := h.openProject(t, 100_000)
		bid, err := h.engine.PlaceBid(ctx, p.ID, h.freelancerActor(), 90_000, "pick me")
		require.NoError(t, err)

		_, err = h.engine.DecideBid(ctx, bid.ID, engine.DecisionReject, "no", h.clientActor())
		require.NoError(t, err)
		_, err = h.engine.DecideBid(ctx, bid.ID, engine.DecisionApprove, "", h.clientActor())
		require.True(t, engine.HasCode(err, engine.CodeBidAlreadyDecided))
	})

	t.Run("concurrent approvals yield exactly one contract", func(t *testing.T) {
		h := newHarness(t, engine.Options{})
		p := h.openProject(t, 100_000)

		var bids []*models.Bid
		for i := 0; i < 5; i++ {
			u := h.store.SeedUser("bidder", models.RoleFreelancer)
			bid, err := h.engine.PlaceBid(ctx, p.ID, actorFor(u), int64(90_000+i), "bid")
			require.NoError(t, err)
			bids = append(bids, bid)
		}

		var wg sync.WaitGroup
		results := make([]error, len(bids))
		for i, bid := range bids {
			wg.Add(1)
			go func(i int, bidID uint) {
				defer wg.Done()
				_, results[i] = h.engine.DecideBid(ctx, bidID, engine.DecisionApprove, "", h.clientActor())
			}(i, bid.ID)
		}
		wg.Wait()

		wins := 0
		for _, err := range results {
			if err == nil {
				wins++
			}
		}
		require.Equal(t, 1, wins)

		contract, err := h.store.GetContractByProject(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, contract)

		approved := 0
		all, err := h.store.ListBidsForProject(ctx, p.ID)
		require.NoError(t, err)
		for _, b := range all {
			if b.Status == models.BidApproved {
				approved++
			}
		}
		require.Equal(t, 1, approved)
	})
}
