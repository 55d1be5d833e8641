package engine

import (
	"context"
	"errors"
	"time"

	"workbridge/internal/metrics"
	"workbridge/internal/models"
	"workbridge/internal/store"
)

// RaiseTicket opens a dispute against a contract. At most one ticket may be
// open per contract at any instant; the check runs inside the same
// transaction that flips the contract to TicketRaised.
func (e *Engine) RaiseTicket(ctx context.Context, contractID uint, reason models.TicketReason, remark string, actor Actor) (*models.Ticket, error) {
	if !models.ValidTicketReason(reason) {
		return nil, validationf("InvalidTicket", "unknown ticket reason %q", reason)
	}
	if remark == "" {
		return nil, validationf("InvalidTicket", "a remark is required")
	}

	var ticket *models.Ticket
	var contract *models.Contract
	err := e.atomicRetry(ctx, func(s store.Store) error {
		var err error
		contract, err = s.GetContract(ctx, contractID)
		if errors.Is(err, store.ErrNotFound) {
			return notFound("contract")
		}
		if err != nil {
			return err
		}

		if contract.ClientID != actor.ID && contract.FreelancerID != actor.ID && actor.Role != models.RoleAdmin {
			return authorizationf("NotContractParty", "only a party to the contract can raise a ticket")
		}
		if !contract.Disputable() {
			return conflictf("ContractNotDisputable", "contract is %s and cannot be disputed", contract.Status)
		}
		if _, err := s.GetOpenTicketByContract(ctx, contractID); err == nil {
			return conflictf(CodeTicketAlreadyOpen, "an open ticket already exists for this contract")
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		ticket = &models.Ticket{
			ContractID:  contractID,
			ProjectID:   contract.ProjectID,
			RaisedBy:    actor.ID,
			Reason:      reason,
			Remarks:     remark,
			Status:      models.TicketRefundPending,
			PriorStatus: contract.Status,
		}
		if err := s.CreateTicket(ctx, ticket); err != nil {
			return err
		}

		contract.Status = models.ContractTicketRaised
		return s.UpdateContract(ctx, contract)
	})
	if err != nil {
		return nil, err
	}

	metrics.TicketsOpened.Inc()
	e.emit(ctx, Event{
		Type:       EventTicketRaised,
		ProjectID:  contract.ProjectID,
		ContractID: contractID,
		ActorID:    actor.ID,
		Data:       map[string]any{"ticket_id": ticket.ID, "reason": string(reason)},
	})
	return ticket, nil
}

// CancelTicket withdraws an open ticket. Only the raiser may cancel; the
// contract returns to the status it held when the ticket was raised.
func (e *Engine) CancelTicket(ctx context.Context, ticketID uint, actor Actor) (*models.Ticket, error) {
	var ticket *models.Ticket
	err := e.atomicRetry(ctx, func(s store.Store) error {
		var err error
		ticket, err = s.GetTicket(ctx, ticketID)
		if errors.Is(err, store.ErrNotFound) {
			return notFound("ticket")
		}
		if err != nil {
			return err
		}
		if ticket.RaisedBy != actor.ID && actor.Role != models.RoleAdmin {
			return authorizationf("NotTicketRaiser", "only the raiser or an admin can cancel a ticket")
		}
		if !ticket.OpenTicket() {
			return conflictf(CodeTicketNotOpen, "ticket is already %s", ticket.Status)
		}

		contract, err := s.GetContract(ctx, ticket.ContractID)
		if err != nil {
			return err
		}

		ticket.Status = models.TicketCancelled
		if err := s.UpdateTicket(ctx, ticket); err != nil {
			return err
		}

		contract.Status = ticket.PriorStatus
		return s.UpdateContract(ctx, contract)
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// ResolveTicket closes a dispute with an admin-assigned refund split and
// writes the settlement entries against the captured funds. The post-closure
// contract status follows the ReopenAfterDispute policy: terminal
// TicketClosed by default, or back to Working/Completed by completion level.
func (e *Engine) ResolveTicket(ctx context.Context, ticketID uint, clientPercent, freelancerPercent int, actor Actor) (*models.Ticket, error) {
	if actor.Role != models.RoleAdmin {
		return nil, authorizationf("NotAdmin", "only an admin can resolve tickets")
	}
	if clientPercent < 0 || freelancerPercent < 0 || clientPercent+freelancerPercent != 100 {
		return nil, validationf("InvalidSplit", "refund split must be non-negative and sum to 100")
	}

	var ticket *models.Ticket
	err := e.atomicRetry(ctx, func(s store.Store) error {
		var err error
		ticket, err = s.GetTicket(ctx, ticketID)
		if errors.Is(err, store.ErrNotFound) {
			return notFound("ticket")
		}
		if err != nil {
			return err
		}
		if !ticket.OpenTicket() {
			return conflictf(CodeTicketNotOpen, "ticket is already %s", ticket.Status)
		}

		contract, err := s.GetContract(ctx, ticket.ContractID)
		if err != nil {
			return err
		}

		// Under the reopen policy a contract can be disputed again; earlier
		// resolutions have already settled part of the captured funds. Only
		// the unsettled remainder is split.
		txns, err := s.ListContractTransactions(ctx, contract.ID)
		if err != nil {
			return err
		}
		pool := contract.PaidMinor
		for _, txn := range txns {
			if txn.Type == models.PaymentSent {
				pool -= txn.AmountMinor
			}
		}
		if pool < 0 {
			pool = 0
		}

		clientShare := pool * int64(clientPercent) / 100
		freelancerShare := pool - clientShare
		if err := settle(ctx, s, contract, clientShare, freelancerShare, ticket.ID); err != nil {
			return err
		}

		now := time.Now()
		cp, fp := clientPercent, freelancerPercent
		ticket.Status = models.TicketClosed
		ticket.ClientPercent = &cp
		ticket.FreelancerPercent = &fp
		ticket.ResolvedBy = &actor.ID
		ticket.ResolvedAt = &now
		if err := s.UpdateTicket(ctx, ticket); err != nil {
			return err
		}

		contract.Status = models.ContractTicketClosed
		if e.opts.ReopenAfterDispute {
			if contract.CompletionPercentage == 100 {
				contract.Status = models.ContractCompleted
			} else {
				contract.Status = models.ContractWorking
			}
		}
		return s.UpdateContract(ctx, contract)
	})
	if err != nil {
		return nil, err
	}

	metrics.TicketsResolved.Inc()
	e.emit(ctx, Event{
		Type:       EventTicketResolved,
		ProjectID:  ticket.ProjectID,
		ContractID: ticket.ContractID,
		ActorID:    actor.ID,
		Data: map[string]any{
			"ticket_id":          ticket.ID,
			"client_percent":     clientPercent,
			"freelancer_percent": freelancerPercent,
		},
	})
	return ticket, nil
}
