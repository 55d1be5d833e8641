package models

import (
	"time"
)

type ApprovalAction string

const (
	ActionSubmitted ApprovalAction = "submitted"
	ActionApproved  ApprovalAction = "approved"
	ActionRejected  ApprovalAction = "rejected"
)

// ApprovalLog is the immutable audit trail of every submit/approve/reject on a
// contract. Rows are only ever inserted; contract state is reconstructable
// from this table alone.
type ApprovalLog struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	ContractID      uint           `gorm:"not null;index" json:"contract_id"`
	Percentage      Checkpoint     `gorm:"not null" json:"percentage"`
	Action          ApprovalAction `gorm:"type:varchar(20);not null" json:"action"`
	Remarks         string         `gorm:"type:text" json:"remarks,omitempty"`
	ActorID         uint           `gorm:"not null" json:"actor_id"`
	ActorRole       Role           `gorm:"type:varchar(20);not null" json:"actor_role"`
	AttachmentCount int            `gorm:"not null;default:0" json:"attachment_count"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (ApprovalLog) TableName() string {
	return "approval_logs"
}
