package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

// User is the minimal identity record the engine needs for foreign keys and
// role checks. Credential management and session issuance live in an external
// auth provider; this service only consumes the JWT claims it issues.
type User struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	FullName    string         `gorm:"not null" json:"full_name"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	Role        Role           `gorm:"type:varchar(20);not null;default:'client'" json:"role"`
	IsSuspended bool           `gorm:"default:false" json:"is_suspended"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
