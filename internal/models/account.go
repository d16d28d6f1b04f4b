package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is the tenant entity. Users and Forms hang off it.
type Account struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	BusinessName string    `gorm:"size:100;not null" json:"businessName"`
	Email        string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Location     string    `gorm:"size:100" json:"location"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Users        []User    `gorm:"constraint:OnDelete:CASCADE" json:"users,omitempty"`
	Forms        []Form    `gorm:"constraint:OnDelete:CASCADE" json:"forms,omitempty"`
}

// TableName overrides the table name for Account
func (Account) TableName() string {
	return "accounts"
}

// BeforeCreate assigns a UUID primary key
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
