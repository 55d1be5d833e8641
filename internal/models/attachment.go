package models

import (
	"time"
)

// Attachment is the opaque descriptor of one delivered file at a checkpoint.
// File bytes live in the blob store; the ledger keeps only name, extension and
// storage key. Rows are append-only: a resubmission may tombstone an entry via
// Removed but never rewrites history at an approved checkpoint.
type Attachment struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	ContractID       uint       `gorm:"not null;index" json:"contract_id"`
	Percentage       Checkpoint `gorm:"not null;index" json:"percentage"`
	FileName         string     `gorm:"not null" json:"file_name"`
	Extension        string     `gorm:"type:varchar(10);not null" json:"extension"`
	StorageKey       string     `gorm:"type:text;not null" json:"storage_key"`
	StoragePublicID  string     `gorm:"type:text" json:"storage_public_id,omitempty"`
	FreelancerRemark string     `gorm:"type:text" json:"freelancer_remark,omitempty"`
	ClientRemark     string     `gorm:"type:text" json:"client_remark,omitempty"`
	Removed          bool       `gorm:"not null;default:false" json:"removed"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Attachment) TableName() string {
	return "attachments"
}
