package models

import (
	"time"

	"gorm.io/gorm"
)

type ContractStatus string

const (
	ContractPaymentPending   ContractStatus = "payment_pending"
	ContractWorking          ContractStatus = "working"
	ContractProjectSubmitted ContractStatus = "project_submitted"
	ContractReworkNeeded     ContractStatus = "rework_needed"
	ContractCompleted        ContractStatus = "completed"
	ContractTicketRaised     ContractStatus = "ticket_raised"
	ContractTicketClosed     ContractStatus = "ticket_closed"
)

// Checkpoint is one of the four fixed completion percentages at which work is
// submitted, approved and paid. Keeping it a closed type makes an out-of-range
// percentage unrepresentable past the parse boundary.
type Checkpoint int

const (
	Checkpoint25  Checkpoint = 25
	Checkpoint50  Checkpoint = 50
	Checkpoint75  Checkpoint = 75
	Checkpoint100 Checkpoint = 100
)

// Checkpoints lists all checkpoints in ascending order.
var Checkpoints = []Checkpoint{Checkpoint25, Checkpoint50, Checkpoint75, Checkpoint100}

func (c Checkpoint) Valid() bool {
	switch c {
	case Checkpoint25, Checkpoint50, Checkpoint75, Checkpoint100:
		return true
	}
	return false
}

// ParseCheckpoint converts a raw percentage into a Checkpoint.
func ParseCheckpoint(pct int) (Checkpoint, bool) {
	c := Checkpoint(pct)
	return c, c.Valid()
}

// NextCheckpoint returns the checkpoint that follows the given completion
// percentage. completion must be 0 or a valid checkpoint below 100.
func NextCheckpoint(completion int) (Checkpoint, bool) {
	c := Checkpoint(completion + 25)
	return c, c.Valid()
}

type Contract struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	ProjectID    uint           `gorm:"not null;uniqueIndex" json:"project_id"`
	BidID        uint           `gorm:"not null;index" json:"bid_id"`
	ClientID     uint           `gorm:"not null;index" json:"client_id"`
	FreelancerID uint           `gorm:"not null;index" json:"freelancer_id"`
	BudgetMinor  int64          `gorm:"not null" json:"budget_minor"`
	Currency     string         `gorm:"type:varchar(3);not null" json:"currency"`
	PaidMinor    int64          `gorm:"not null;default:0" json:"paid_minor"`

	// Percentages only ever take values in {0,25,50,75,100}; paid and
	// completion are monotonically non-decreasing for the contract's lifetime.
	PaidPercentage       int         `gorm:"not null;default:0" json:"paid_percentage"`
	CompletionPercentage int         `gorm:"not null;default:0" json:"completion_percentage"`
	PendingPercentage    *Checkpoint `gorm:"type:int" json:"pending_percentage,omitempty"`

	Status    ContractStatus `gorm:"type:varchar(20);not null;default:'payment_pending'" json:"status"`
	Version   uint           `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Project      Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Client       User          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Freelancer   User          `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
	Attachments  []Attachment  `gorm:"foreignKey:ContractID" json:"attachments,omitempty"`
	ApprovalLogs []ApprovalLog `gorm:"foreignKey:ContractID" json:"approval_logs,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:ContractID" json:"transactions,omitempty"`
}

func (Contract) TableName() string {
	return "contracts"
}

// AcceptsSubmission reports whether the freelancer may submit work right now.
func (c *Contract) AcceptsSubmission() bool {
	return c.Status == ContractWorking || c.Status == ContractReworkNeeded
}

// Disputable reports whether a ticket may be raised against the contract.
func (c *Contract) Disputable() bool {
	return c.Status == ContractWorking || c.Status == ContractProjectSubmitted
}

// UnderDispute reports whether the contract is frozen or closed by a ticket.
// Frozen contracts accept no captures; their funds are the dispute pool.
func (c *Contract) UnderDispute() bool {
	return c.Status == ContractTicketRaised || c.Status == ContractTicketClosed
}
