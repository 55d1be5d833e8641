// Package engine implements the engagement lifecycle: bidding, contract
// formation, milestone submission and approval, gateway payments and dispute
// tickets. Every state change is an atomic read-modify-write against its
// aggregate through the store; domain events and metrics are side effects
// after commit.
package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"workbridge/internal/models"
	"workbridge/internal/store"
)

// Actor identifies the caller of an operation. ID and Role come from the
// external auth provider's claims.
type Actor struct {
	ID   uint
	Role models.Role
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Deduper is a fast-path idempotency check for webhook replays. The unique
// transaction reference in the store stays authoritative; a deduper that
// fails open is safe.
type Deduper interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
}

type Options struct {
	// MinOrderMinor is the gateway's minimum chargeable amount in minor units.
	MinOrderMinor int64
	// MaxRetries bounds internal retries on version conflicts.
	MaxRetries int
	// ReopenAfterDispute reverts a contract to Working/Completed after ticket
	// resolution instead of leaving it in TicketClosed.
	ReopenAfterDispute bool
	// RetryBackoff is the base delay between gateway retries.
	RetryBackoff time.Duration
}

func (o *Options) withDefaults() {
	if o.MinOrderMinor <= 0 {
		o.MinOrderMinor = 100
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 200 * time.Millisecond
	}
}

type Engine struct {
	store    store.Store
	gateway  Gateway
	notifier Notifier
	deduper  Deduper
	log      *zap.Logger
	opts     Options
}

func New(s store.Store, gw Gateway, notifier Notifier, deduper Deduper, log *zap.Logger, opts Options) *Engine {
	opts.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: s, gateway: gw, notifier: notifier, deduper: deduper, log: log, opts: opts}
}

// atomicRetry runs fn in a store transaction, re-running it a bounded number
// of times when the write loses an optimistic version race. fn must re-read
// the aggregates it touches on every attempt.
func (e *Engine) atomicRetry(ctx context.Context, fn func(store.Store) error) error {
	var err error
	for attempt := 0; attempt < e.opts.MaxRetries; attempt++ {
		err = e.store.Atomic(ctx, fn)
		if !errors.Is(err, store.ErrVersionConflict) {
			return err
		}
		e.log.Debug("retrying after version conflict", zap.Int("attempt", attempt+1))
	}
	return concurrencyErr(err)
}

func notFound(entity string) *Error {
	return &Error{Kind: KindStateConflict, Code: CodeNotFound, Message: entity + " not found"}
}
