package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"workbridge/internal/metrics"
	"workbridge/internal/models"
	"workbridge/internal/store"
)

const (
	metaContractID = "contract_id"
	metaPercentage = "percentage"
)

// payableAmount is the minor-unit charge for moving paid coverage from
// paidPct up to pct. Integer math; budget is already in minor units.
func payableAmount(budgetMinor int64, paidPct int, pct models.Checkpoint) int64 {
	return budgetMinor * int64(int(pct)-paidPct) / 100
}

// CreateOrder opens a gateway checkout covering the contract up to the given
// checkpoint. No ledger state changes here; an abandoned order needs no
// compensation. Transient gateway failures are retried with backoff.
func (e *Engine) CreateOrder(ctx context.Context, contractID uint, pct models.Checkpoint, actor Actor) (*GatewayOrder, error) {
	if !pct.Valid() {
		return nil, validationf(CodeInvalidCheckpoint, "percentage must be one of 25, 50, 75, 100")
	}

	contract, err := e.store.GetContract(ctx, contractID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("contract")
	}
	if err != nil {
		return nil, err
	}
	if contract.ClientID != actor.ID && actor.Role != models.RoleAdmin {
		return nil, authorizationf("NotContractClient", "only the client or an admin can pay for a contract")
	}
	if contract.UnderDispute() {
		return nil, conflictf("ContractUnderDispute", "contract is %s and cannot accept captures", contract.Status)
	}

	amount := payableAmount(contract.BudgetMinor, contract.PaidPercentage, pct)
	if amount <= 0 || amount < e.opts.MinOrderMinor {
		return nil, validationf(CodeInvalidAmount, "payable amount %d is below the gateway minimum", amount)
	}

	client, err := e.store.GetUser(ctx, contract.ClientID)
	if err != nil {
		return nil, err
	}

	req := OrderRequest{
		AmountMinor:   amount,
		Currency:      contract.Currency,
		CustomerEmail: client.Email,
		Metadata: map[string]string{
			metaContractID: strconv.FormatUint(uint64(contractID), 10),
			metaPercentage: strconv.Itoa(int(pct)),
		},
	}

	var order *GatewayOrder
	for attempt := 0; attempt < e.opts.MaxRetries; attempt++ {
		order, err = e.gateway.CreateOrder(ctx, req)
		if err == nil {
			return order, nil
		}
		e.log.Warn("gateway order creation failed",
			zap.Uint("contract_id", contractID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if attempt < e.opts.MaxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.opts.RetryBackoff << attempt):
			}
		}
	}
	return nil, externalErr(CodeGatewayUnavailable, "gateway order creation failed", err)
}

// ConfirmPayment reconciles a gateway capture with the ledger. Verification
// fails closed: any mismatch or gateway error leaves the ledger untouched.
// Replays of the same reference are dropped by the redis fast path, confirmed
// against the ledger, and, as the authority, by the unique transaction
// reference checked inside the same transaction that credits the contract.
func (e *Engine) ConfirmPayment(ctx context.Context, reference string) (*models.Contract, error) {
	if reference == "" {
		return nil, validationf(CodeVerificationFailed, "payment reference is required")
	}

	capture, err := e.gateway.VerifyCapture(ctx, reference)
	if err != nil {
		return nil, externalErr(CodeVerificationFailed, "capture verification failed", err)
	}
	if !capture.Verified {
		return nil, externalErr(CodeVerificationFailed, "gateway did not verify the capture", nil)
	}

	contractID, err := strconv.ParseUint(capture.Metadata[metaContractID], 10, 64)
	if err != nil {
		return nil, externalErr(CodeVerificationFailed, "capture metadata is missing the contract binding", err)
	}
	rawPct, err := strconv.Atoi(capture.Metadata[metaPercentage])
	if err != nil {
		return nil, externalErr(CodeVerificationFailed, "capture metadata is missing the checkpoint binding", err)
	}
	pct, ok := models.ParseCheckpoint(rawPct)
	if !ok {
		return nil, externalErr(CodeVerificationFailed, "capture metadata carries an invalid checkpoint", nil)
	}

	// The deduper runs only after verification succeeds, so a failed attempt
	// never burns the key. A burned key with no ledger row means an earlier
	// attempt died before recording; the confirmation proceeds to the ledger.
	if e.deduper != nil && !e.deduper.AcquireOnce(ctx, "payment", reference) {
		if _, err := e.store.GetTransactionByReference(ctx, reference); err == nil {
			return nil, conflictf(CodeDuplicatePayment, "payment %s is already processed", reference)
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	var contract *models.Contract
	err = e.atomicRetry(ctx, func(s store.Store) error {
		if _, err := s.GetTransactionByReference(ctx, capture.Reference); err == nil {
			return conflictf(CodeDuplicatePayment, "payment %s is already recorded", capture.Reference)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		contract, err = s.GetContract(ctx, uint(contractID))
		if errors.Is(err, store.ErrNotFound) {
			return notFound("contract")
		}
		if err != nil {
			return err
		}

		if contract.UnderDispute() {
			return conflictf("ContractUnderDispute", "contract is %s and cannot accept captures", contract.Status)
		}

		expected := payableAmount(contract.BudgetMinor, contract.PaidPercentage, pct)
		if expected <= 0 || capture.AmountMinor != expected {
			return externalErr(CodeVerificationFailed,
				fmt.Sprintf("captured amount %d does not match expected %d", capture.AmountMinor, expected), nil)
		}

		txn := &models.Transaction{
			ContractID:  contract.ID,
			ProjectID:   contract.ProjectID,
			PayerID:     contract.ClientID,
			PayeeID:     contract.FreelancerID,
			Type:        models.PaymentReceived,
			AmountMinor: capture.AmountMinor,
			Currency:    contract.Currency,
			Reference:   capture.Reference,
			Description: fmt.Sprintf("Payment captured up to %d%%", int(pct)),
		}
		if err := s.CreateTransaction(ctx, txn); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return conflictf(CodeDuplicatePayment, "payment %s is already recorded", capture.Reference)
			}
			return err
		}

		contract.PaidMinor += capture.AmountMinor
		contract.PaidPercentage = int(pct)
		if contract.Status == models.ContractPaymentPending {
			contract.Status = models.ContractWorking
		}
		return s.UpdateContract(ctx, contract)
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsCaptured.Inc()
	metrics.PaymentsCapturedAmount.Add(float64(capture.AmountMinor))
	e.emit(ctx, Event{
		Type:       EventPaymentCaptured,
		ProjectID:  contract.ProjectID,
		ContractID: contract.ID,
		ActorID:    contract.ClientID,
		Data: map[string]any{
			"reference":       capture.Reference,
			"amount_minor":    capture.AmountMinor,
			"paid_percentage": contract.PaidPercentage,
		},
	})
	return contract, nil
}

// settle writes the two outbound settlement entries for a resolved ticket
// against the already-captured funds. Zero shares write no row. Runs inside
// the resolver's transaction.
func settle(ctx context.Context, s store.Store, contract *models.Contract, clientShare, freelancerShare int64, ticketID uint) error {
	if clientShare > 0 {
		err := s.CreateTransaction(ctx, &models.Transaction{
			ContractID:  contract.ID,
			ProjectID:   contract.ProjectID,
			PayerID:     contract.FreelancerID,
			PayeeID:     contract.ClientID,
			Type:        models.PaymentSent,
			AmountMinor: clientShare,
			Currency:    contract.Currency,
			Reference:   settlementReference(),
			Description: fmt.Sprintf("Refund for ticket #%d", ticketID),
		})
		if err != nil {
			return err
		}
	}
	if freelancerShare > 0 {
		err := s.CreateTransaction(ctx, &models.Transaction{
			ContractID:  contract.ID,
			ProjectID:   contract.ProjectID,
			PayerID:     contract.ClientID,
			PayeeID:     contract.FreelancerID,
			Type:        models.PaymentSent,
			AmountMinor: freelancerShare,
			Currency:    contract.Currency,
			Reference:   settlementReference(),
			Description: fmt.Sprintf("Payout for ticket #%d", ticketID),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func settlementReference() string {
	return "SETTLE-" + uuid.NewString()
}
