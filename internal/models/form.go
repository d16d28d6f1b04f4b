package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FormField types accepted by the form builder.
var FieldTypes = []string{
	"text", "email", "textarea", "select", "radio", "checkbox",
	"number", "date", "file",
}

// Form is a tenant-owned dynamic form definition. FormsID is the
// human-meaningful identifier shown in the UI, distinct from the primary key.
type Form struct {
	ID          string      `gorm:"type:char(36);primaryKey" json:"id"`
	FormsID     string      `gorm:"uniqueIndex;size:150;not null" json:"formsId"`
	Title       string      `gorm:"size:100;not null" json:"title"`
	Slug        string      `gorm:"uniqueIndex;size:150;not null" json:"slug"`
	Description string      `gorm:"size:500" json:"description"`
	UserID      string      `gorm:"type:char(36);not null;index" json:"userId"`
	User        *User       `json:"user,omitempty"`
	AccountID   *string     `gorm:"type:char(36);index" json:"accountId"`
	Fields      []FormField `gorm:"constraint:OnDelete:CASCADE" json:"fields,omitempty"`
	Responses   []Response  `gorm:"constraint:OnDelete:CASCADE" json:"responses,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// FormField is one typed field of a form. Options holds the serialized
// choice list for select/radio/checkbox fields.
type FormField struct {
	ID        string         `gorm:"type:char(36);primaryKey" json:"id"`
	FormID    string         `gorm:"type:char(36);not null;index" json:"formId"`
	Label     string         `gorm:"size:100;not null" json:"label"`
	Type      string         `gorm:"size:20;not null" json:"type"`
	Required  bool           `gorm:"not null;default:false" json:"required"`
	Options   datatypes.JSON `json:"options,omitempty"`
	Order     int            `gorm:"column:display_order;not null;default:0" json:"order"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// TableName overrides the table name for Form
func (Form) TableName() string {
	return "forms"
}

// TableName overrides the table name for FormField
func (FormField) TableName() string {
	return "form_fields"
}

// BeforeCreate assigns a UUID primary key
func (f *Form) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a UUID primary key
func (f *FormField) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// ValidFieldType reports whether t is one of the accepted field types.
func ValidFieldType(t string) bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}
