package engine

import (
	"context"
	"errors"

	"workbridge/internal/metrics"
	"workbridge/internal/models"
	"workbridge/internal/store"
)

const siblingRejectionReason = "Another bid was approved for this project"

// PlaceBid creates a pending bid by a freelancer against an open project.
// A bidder may hold at most one pending or approved bid per project, and
// after a rejection gets exactly one re-bid.
func (e *Engine) PlaceBid(ctx context.Context, projectID uint, actor Actor, amountMinor int64, message string) (*models.Bid, error) {
	if actor.Role != models.RoleFreelancer {
		return nil, authorizationf("NotFreelancer", "only freelancers can bid")
	}
	if amountMinor <= 0 {
		return nil, validationf("InvalidBid", "bid amount must be positive")
	}
	if message == "" {
		return nil, validationf("InvalidBid", "bid message is required")
	}

	var bid *models.Bid
	err := e.atomicRetry(ctx, func(s store.Store) error {
		project, err := s.GetProject(ctx, projectID)
		if errors.Is(err, store.ErrNotFound) {
			return notFound("project")
		}
		if err != nil {
			return err
		}
		if project.Status != models.ProjectOpen {
			return conflictf(CodeProjectLocked, "project is no longer open for bidding")
		}
		if project.ClientID == actor.ID {
			return authorizationf("NotFreelancer", "cannot bid on your own project")
		}

		prior, err := s.ListBidderBids(ctx, projectID, actor.ID)
		if err != nil {
			return err
		}
		for i := range prior {
			if prior[i].Open() {
				return conflictf(CodeDuplicateBid, "an active bid already exists on this project")
			}
		}
		// All prior bids are rejected; a single re-bid is allowed.
		if len(prior) >= 2 {
			return conflictf(CodeReBidNotAllowed, "re-bid already used on this project")
		}

		bid = &models.Bid{
			ProjectID:   projectID,
			BidderID:    actor.ID,
			AmountMinor: amountMinor,
			Message:     message,
			Status:      models.BidPending,
		}
		return s.CreateBid(ctx, bid)
	})
	if err != nil {
		return nil, err
	}
	return bid, nil
}

// DecideBid approves or rejects a pending bid. Approval atomically rejects
// every other pending bid on the project and creates the single contract; the
// precondition "no contract exists yet" is checked inside the transaction and
// backed by the unique index on contracts.project_id, so two concurrent
// approvals cannot both win.
func (e *Engine) DecideBid(ctx context.Context, bidID uint, decision Decision, reason string, actor Actor) (*models.Contract, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, validationf("InvalidDecision", "decision must be approve or reject")
	}
	if decision == DecisionReject && reason == "" {
		return nil, validationf("InvalidDecision", "a reason is required when rejecting a bid")
	}

	var contract *models.Contract
	var projectID uint
	err := e.atomicRetry(ctx, func(s store.Store) error {
		contract = nil

		bid, err := s.GetBid(ctx, bidID)
		if errors.Is(err, store.ErrNotFound) {
			return notFound("bid")
		}
		if err != nil {
			return err
		}
		project, err := s.GetProject(ctx, bid.ProjectID)
		if err != nil {
			return err
		}
		projectID = project.ID

		if project.ClientID != actor.ID && actor.Role != models.RoleAdmin {
			return authorizationf(CodeNotBidOwner, "only the project owner or an admin can decide bids")
		}
		if bid.Status != models.BidPending {
			return conflictf(CodeBidAlreadyDecided, "bid is already %s", bid.Status)
		}

		if decision == DecisionReject {
			bid.Status = models.BidRejected
			bid.RejectionReason = reason
			return s.UpdateBid(ctx, bid)
		}

		if _, err := s.GetContractByProject(ctx, project.ID); err == nil {
			return conflictf(CodeProjectLocked, "project already has a contract")
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		bid.Status = models.BidApproved
		if err := s.UpdateBid(ctx, bid); err != nil {
			return err
		}

		siblings, err := s.ListBidsForProject(ctx, project.ID)
		if err != nil {
			return err
		}
		for i := range siblings {
			sib := siblings[i]
			if sib.ID == bid.ID || sib.Status != models.BidPending {
				continue
			}
			sib.Status = models.BidRejected
			sib.RejectionReason = siblingRejectionReason
			if err := s.UpdateBid(ctx, &sib); err != nil {
				return err
			}
		}

		contract = &models.Contract{
			ProjectID:    project.ID,
			BidID:        bid.ID,
			ClientID:     project.ClientID,
			FreelancerID: bid.BidderID,
			BudgetMinor:  bid.AmountMinor,
			Currency:     project.Currency,
			Status:       models.ContractPaymentPending,
		}
		if err := s.CreateContract(ctx, contract); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return conflictf(CodeProjectLocked, "project already has a contract")
			}
			return err
		}

		project.Status = models.ProjectContracted
		return s.UpdateProject(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	metrics.BidsDecided.WithLabelValues(string(decision)).Inc()
	if contract != nil {
		e.emit(ctx, Event{
			Type:       EventBidApproved,
			ProjectID:  projectID,
			ContractID: contract.ID,
			ActorID:    actor.ID,
			Data:       map[string]any{"bid_id": bidID, "freelancer_id": contract.FreelancerID},
		})
	}
	return contract, nil
}
