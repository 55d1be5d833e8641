package models

import (
	"time"

	"gorm.io/gorm"
)

type TicketStatus string
type TicketReason string

const (
	TicketRefundPending TicketStatus = "refund_pending"
	TicketClosed        TicketStatus = "closed"
	TicketCancelled     TicketStatus = "cancelled"
)

const (
	ReasonQualityDispute TicketReason = "quality_dispute"
	ReasonNonDelivery    TicketReason = "non_delivery"
	ReasonLateDelivery   TicketReason = "late_delivery"
	ReasonPaymentIssue   TicketReason = "payment_issue"
	ReasonOther          TicketReason = "other"
)

// ValidTicketReason reports whether the reason code is one of the enumerated
// dispute reasons.
func ValidTicketReason(r TicketReason) bool {
	switch r {
	case ReasonQualityDispute, ReasonNonDelivery, ReasonLateDelivery, ReasonPaymentIssue, ReasonOther:
		return true
	}
	return false
}

type Ticket struct {
	ID         uint         `gorm:"primarykey" json:"id"`
	ContractID uint         `gorm:"not null;index" json:"contract_id"`
	ProjectID  uint         `gorm:"not null;index" json:"project_id"`
	RaisedBy   uint         `gorm:"not null;index" json:"raised_by"`
	Reason     TicketReason `gorm:"type:varchar(30);not null" json:"reason"`
	Remarks    string       `gorm:"type:text;not null" json:"remarks"`
	Status     TicketStatus `gorm:"type:varchar(20);not null;default:'refund_pending'" json:"status"`

	// Refund split, set on resolution; the two always sum to 100.
	ClientPercent     *int `json:"client_percent,omitempty"`
	FreelancerPercent *int `json:"freelancer_percent,omitempty"`

	// PriorStatus remembers the contract status at raise time so a cancelled
	// ticket can put the contract back where it was.
	PriorStatus ContractStatus `gorm:"type:varchar(20);not null" json:"-"`

	ResolvedBy *uint          `gorm:"index" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
	Version    uint           `gorm:"not null;default:0" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Contract Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
	Raiser   User     `gorm:"foreignKey:RaisedBy" json:"raiser,omitempty"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// OpenTicket reports whether the ticket still blocks a new dispute on its
// contract.
func (t *Ticket) OpenTicket() bool {
	return t.Status == TicketRefundPending
}
