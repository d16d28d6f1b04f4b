package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Internal lifecycle states derived from the business status.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusSkipped   = "SKIPPED"
)

// Follow-up interaction types.
var FollowUpTypes = []string{
	"CALL", "EMAIL", "WHATSAPP", "MEETING", "NOTE", "STATUS_CHANGE",
}

// FollowUp records one lead-interaction event against a Response.
// Follow-ups accumulate append-only; the chronologically latest one
// determines the lead's current status.
type FollowUp struct {
	ID               string     `gorm:"type:char(36);primaryKey" json:"id"`
	ResponseID       string     `gorm:"type:char(36);not null;index:idx_followups_response_created,priority:1" json:"responseId"`
	Response         *Response  `json:"response,omitempty"`
	AddedByUserID    string     `gorm:"type:char(36);not null;index" json:"addedByUserId"`
	AddedBy          *User      `gorm:"foreignKey:AddedByUserID" json:"addedBy,omitempty"`
	Type             string     `gorm:"size:20;not null" json:"type"`
	Note             *string    `gorm:"type:text" json:"note"`
	BusinessStatus   string     `gorm:"size:50;not null" json:"businessStatus"`
	Status           string     `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	NextFollowUpDate *time.Time `json:"nextFollowUpDate"`
	CreatedAt        time.Time  `gorm:"index:idx_followups_response_created,priority:2" json:"createdAt"`
}

// TableName overrides the table name for FollowUp
func (FollowUp) TableName() string {
	return "follow_ups"
}

// BeforeCreate assigns a UUID primary key
func (f *FollowUp) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// ValidFollowUpType reports whether t is one of the accepted interaction types.
func ValidFollowUpType(t string) bool {
	for _, ft := range FollowUpTypes {
		if ft == t {
			return true
		}
	}
	return false
}
