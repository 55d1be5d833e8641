package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "open"
	ProjectContracted ProjectStatus = "contracted"
	ProjectClosed     ProjectStatus = "closed"
)

type Project struct {
	ID                  uint           `gorm:"primarykey" json:"id"`
	ClientID            uint           `gorm:"not null;index" json:"client_id"`
	Title               string         `gorm:"not null" json:"title"`
	Description         string         `gorm:"type:text;not null" json:"description"`
	BudgetMinor         int64          `gorm:"not null" json:"budget_minor"`
	Currency            string         `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Deadline            time.Time      `gorm:"not null" json:"deadline"`
	RequiredFreelancers int            `gorm:"not null;default:1" json:"required_freelancers"`
	Status              ProjectStatus  `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	Client User  `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Bids   []Bid `gorm:"foreignKey:ProjectID" json:"bids,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}
