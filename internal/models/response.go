package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Response is one form submission, the anchor entity for follow-up
// tracking. It is created once at submission time and never mutated.
type Response struct {
	ID          string           `gorm:"type:char(36);primaryKey" json:"id"`
	FormID      string           `gorm:"type:char(36);not null;index" json:"formId"`
	Form        *Form            `json:"form,omitempty"`
	SubmittedAt time.Time        `gorm:"autoCreateTime" json:"submittedAt"`
	Answers     []ResponseAnswer `gorm:"constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	FollowUps   []FollowUp       `gorm:"constraint:OnDelete:CASCADE" json:"followUps,omitempty"`
}

// ResponseAnswer holds one submitted value as text. Multi-valued answers
// are stored as a JSON array string, file answers as uploaded-asset URLs.
type ResponseAnswer struct {
	ID         string     `gorm:"type:char(36);primaryKey" json:"id"`
	ResponseID string     `gorm:"type:char(36);not null;index" json:"responseId"`
	FieldID    string     `gorm:"type:char(36);not null;index" json:"fieldId"`
	Field      *FormField `json:"field,omitempty"`
	Value      string     `gorm:"type:text" json:"value"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// TableName overrides the table name for Response
func (Response) TableName() string {
	return "responses"
}

// TableName overrides the table name for ResponseAnswer
func (ResponseAnswer) TableName() string {
	return "response_answers"
}

// BeforeCreate assigns a UUID primary key
func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a UUID primary key
func (a *ResponseAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
