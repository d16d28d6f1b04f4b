package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wizardlabs/leadforms/internal/models"
	"github.com/wizardlabs/leadforms/internal/types"
	"github.com/wizardlabs/leadforms/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FieldInput is one field definition in a create/update form payload.
type FieldInput struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options"`
	Order    *int     `json:"order"`
}

// FormInput is the create/update form payload.
type FormInput struct {
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Fields      types.FlexList[FieldInput] `json:"fields"`
}

// choiceTypes are the field types that require an option list.
var choiceTypes = map[string]bool{"select": true, "radio": true, "checkbox": true}

func validateFormInput(in *FormInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if len(in.Title) < 3 {
		return types.Validation("Title must be at least 3 characters long")
	}
	if len(in.Title) > 100 {
		return types.Validation("Title too long")
	}
	if len(in.Description) > 500 {
		return types.Validation("Description too long")
	}
	if len(in.Fields) > 100 {
		return types.Validation("Too many fields in one form")
	}

	for i := range in.Fields {
		f := &in.Fields[i]
		f.Label = strings.TrimSpace(f.Label)
		if f.Label == "" {
			return types.Validation("Label cannot be empty")
		}
		if len(f.Label) > 100 {
			return types.Validation("Label too long")
		}
		if !models.ValidFieldType(f.Type) {
			return types.Validation("Invalid field type %q", f.Type)
		}
		if choiceTypes[f.Type] && len(f.Options) == 0 {
			return types.Validation("Options are required for select, radio, and checkbox fields")
		}
		for _, opt := range f.Options {
			opt = strings.TrimSpace(opt)
			if opt == "" {
				return types.Validation("Option cannot be empty")
			}
			if len(opt) > 50 {
				return types.Validation("Option too long")
			}
		}
	}
	return nil
}

// newSlug derives a unique slug from the title. The timestamp keeps it
// roughly sortable, the uuid fragment rules out collisions between
// identical titles.
func newSlug(title string) string {
	return fmt.Sprintf("%s-%d-%s", utils.Slugify(title), time.Now().UnixMilli(), uuid.NewString()[:6])
}

func encodeOptions(options []string) (datatypes.JSON, error) {
	if len(options) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(encoded), nil
}

// CreateForm creates a form with its fields in one transaction. The
// human-facing FormsID is derived from the owner name, the owner's form
// sequence number, and the creation timestamp.
func CreateForm(db *gorm.DB, owner *models.User, in FormInput) (*models.Form, error) {
	if err := validateFormInput(&in); err != nil {
		return nil, err
	}

	var existing int64
	if err := db.Model(&models.Form{}).
		Where("user_id = ? AND title = ?", owner.ID, in.Title).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, types.Conflict("A form with this title already exists")
	}

	var sequence int64
	if err := db.Model(&models.Form{}).
		Where("user_id = ?", owner.ID).
		Count(&sequence).Error; err != nil {
		return nil, err
	}

	// The uuid fragment keeps FormsID unique even when two owners share
	// a display name and sequence number.
	form := models.Form{
		FormsID:     fmt.Sprintf("%s-%03d-%s", utils.Slugify(owner.Name), sequence+1, uuid.NewString()[:8]),
		Title:       in.Title,
		Slug:        newSlug(in.Title),
		Description: in.Description,
		UserID:      owner.ID,
		AccountID:   owner.AccountID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&form).Error; err != nil {
			return err
		}
		for idx, f := range in.Fields {
			options, err := encodeOptions(f.Options)
			if err != nil {
				return err
			}
			order := idx + 1
			if f.Order != nil {
				order = *f.Order
			}
			field := models.FormField{
				FormID:   form.ID,
				Label:    f.Label,
				Type:     f.Type,
				Required: f.Required,
				Options:  options,
				Order:    order,
			}
			if err := tx.Create(&field).Error; err != nil {
				return err
			}
			form.Fields = append(form.Fields, field)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// ListForms returns the owner's forms newest first, with fields.
func ListForms(db *gorm.DB, userID string) ([]models.Form, error) {
	var forms []models.Form
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Find(&forms).Error
	return forms, err
}

// GetForm returns one form scoped to its owner.
func GetForm(db *gorm.DB, userID, formID string) (*models.Form, error) {
	var form models.Form
	err := db.Where("id = ? AND user_id = ?", formID, userID).
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("form: %w", types.ErrNotFound)
		}
		return nil, err
	}
	return &form, nil
}

// UpdateForm rewrites the form's metadata and reconciles its fields:
// incoming fields with an ID are updated, fields without one are
// created, and existing fields missing from the payload are deleted.
func UpdateForm(db *gorm.DB, userID, formID string, in FormInput) (*models.Form, error) {
	if err := validateFormInput(&in); err != nil {
		return nil, err
	}

	form, err := GetForm(db, userID, formID)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(form).Updates(map[string]interface{}{
			"title":       in.Title,
			"description": in.Description,
			"slug":        newSlug(in.Title),
		}).Error; err != nil {
			return err
		}

		incoming := make(map[string]bool, len(in.Fields))
		for _, f := range in.Fields {
			if f.ID != "" {
				incoming[f.ID] = true
			}
		}
		for _, existing := range form.Fields {
			if !incoming[existing.ID] {
				if err := tx.Delete(&models.FormField{}, "id = ?", existing.ID).Error; err != nil {
					return err
				}
			}
		}

		for idx, f := range in.Fields {
			options, err := encodeOptions(f.Options)
			if err != nil {
				return err
			}
			order := idx + 1
			if f.Order != nil {
				order = *f.Order
			}

			if f.ID != "" {
				err = tx.Model(&models.FormField{}).Where("id = ? AND form_id = ?", f.ID, form.ID).
					Updates(map[string]interface{}{
						"label":         f.Label,
						"type":          f.Type,
						"required":      f.Required,
						"options":       options,
						"display_order": order,
					}).Error
			} else {
				err = tx.Create(&models.FormField{
					FormID:   form.ID,
					Label:    f.Label,
					Type:     f.Type,
					Required: f.Required,
					Options:  options,
					Order:    order,
				}).Error
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetForm(db, userID, formID)
}

// DeleteForm removes a form and its fields.
func DeleteForm(db *gorm.DB, userID, formID string) error {
	form, err := GetForm(db, userID, formID)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.FormField{}, "form_id = ?", form.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Form{}, "id = ?", form.ID).Error
	})
}
