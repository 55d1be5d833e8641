package models

import (
	"time"
)

type PaymentType string

const (
	// PaymentReceived is a gateway capture credited against the contract.
	PaymentReceived PaymentType = "received"
	// PaymentSent is an outbound settlement (freelancer payout or client
	// refund) against already-captured funds.
	PaymentSent PaymentType = "sent"
)

// Transaction is one immutable ledger entry, created only by the payment
// coordinator. Reference carries the gateway order/payment identifier (or a
// generated settlement reference) and is unique, which is what makes webhook
// replays harmless.
type Transaction struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	ContractID  uint        `gorm:"not null;index" json:"contract_id"`
	ProjectID   uint        `gorm:"not null;index" json:"project_id"`
	PayerID     uint        `gorm:"not null;index" json:"payer_id"`
	PayeeID     uint        `gorm:"not null;index" json:"payee_id"`
	Type        PaymentType `gorm:"type:varchar(20);not null" json:"type"`
	AmountMinor int64       `gorm:"not null" json:"amount_minor"`
	Currency    string      `gorm:"type:varchar(3);not null" json:"currency"`
	Reference   string      `gorm:"uniqueIndex;not null" json:"reference"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
