package models

import (
	"time"

	"gorm.io/gorm"
)

type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidApproved BidStatus = "approved"
	BidRejected BidStatus = "rejected"
)

type Bid struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	ProjectID       uint           `gorm:"not null;index" json:"project_id"`
	BidderID        uint           `gorm:"not null;index" json:"bidder_id"`
	AmountMinor     int64          `gorm:"not null" json:"amount_minor"`
	Message         string         `gorm:"type:text;not null" json:"message"`
	Status          BidStatus      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	RejectionReason string         `gorm:"type:text" json:"rejection_reason,omitempty"`
	Version         uint           `gorm:"not null;default:0" json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Bidder  User    `gorm:"foreignKey:BidderID" json:"bidder,omitempty"`
}

func (Bid) TableName() string {
	return "bids"
}

// Open reports whether the bid still blocks the bidder from placing another
// bid on the same project.
func (b *Bid) Open() bool {
	return b.Status == BidPending || b.Status == BidApproved
}
