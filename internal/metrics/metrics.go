// Package metrics holds the engine's prometheus instruments. They are
// registered on the default registry and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BidsDecided = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workbridge_bids_decided_total",
		Help: "Bid decisions by outcome.",
	}, []string{"decision"})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workbridge_submissions_total",
		Help: "Milestone submission lifecycle actions.",
	}, []string{"action"})

	PaymentsCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workbridge_payments_captured_total",
		Help: "Verified gateway captures credited to the ledger.",
	})

	PaymentsCapturedAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workbridge_payments_captured_amount_minor_total",
		Help: "Sum of captured amounts in currency minor units.",
	})

	TicketsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workbridge_tickets_opened_total",
		Help: "Dispute tickets raised.",
	})

	TicketsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workbridge_tickets_resolved_total",
		Help: "Dispute tickets closed with a refund split.",
	})
)
