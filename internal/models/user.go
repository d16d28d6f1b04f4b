package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values. SUPERADMIN sees every account, ADMIN only its own.
const (
	RoleSuperAdmin = "SUPERADMIN"
	RoleAdmin      = "ADMIN"
)

// User belongs to exactly one Account. AccountID is nullable for the
// bootstrap superadmin created by cmd/seed.
type User struct {
	ID                  string     `gorm:"type:char(36);primaryKey" json:"id"`
	Name                string     `gorm:"size:50;not null" json:"name"`
	Email               string     `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password            string     `gorm:"size:100;not null" json:"-"`
	Role                string     `gorm:"size:20;not null;default:'ADMIN'" json:"role"`
	AccountID           *string    `gorm:"type:char(36);index" json:"accountId"`
	Account             *Account   `json:"account,omitempty"`
	CreatedByID         *string    `gorm:"type:char(36)" json:"createdById,omitempty"`
	ResetToken          *string    `gorm:"size:512" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
