package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/wizardlabs/leadforms/internal/logger"
	"github.com/wizardlabs/leadforms/internal/mailer"
	"github.com/wizardlabs/leadforms/internal/models"
	"github.com/wizardlabs/leadforms/internal/storage"
	"github.com/wizardlabs/leadforms/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxFileSize is the per-file upload limit.
const MaxFileSize = 20 * 1024 * 1024

// allowedMIME is the upload allow-list: images, PDF, and Word documents.
var allowedMIME = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// SubmittedFile is one uploaded file from a multipart submission.
type SubmittedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Submission carries the parsed multipart body, keyed by field ID.
type Submission struct {
	Values map[string][]string
	Files  map[string][]SubmittedFile
}

// SubmitResponse validates a submission against the form's field schema,
// uploads file answers, and persists the Response with one answer per
// field in a single transaction. Nothing is persisted when any step
// fails; uploaded assets are removed best-effort on rollback.
func SubmitResponse(ctx context.Context, db *gorm.DB, store storage.Storage, sender mailer.Sender, formID string, sub Submission) (string, error) {
	var form models.Form
	if err := db.Preload("Fields", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).Where("id = ?", formID).First(&form).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("form: %w", types.ErrNotFound)
		}
		return "", err
	}

	// Required-field check before anything is written or uploaded.
	for _, field := range form.Fields {
		if !field.Required {
			continue
		}
		if len(sub.Values[field.ID]) == 0 && len(sub.Files[field.ID]) == 0 {
			return "", types.Validation("Field %q is required", field.Label)
		}
	}

	var uploaded []string
	var responseID string

	err := db.Transaction(func(tx *gorm.DB) error {
		response := models.Response{FormID: form.ID}
		if err := tx.Create(&response).Error; err != nil {
			return err
		}
		responseID = response.ID

		for _, field := range form.Fields {
			value, assets, err := buildAnswerValue(ctx, store, field, sub)
			uploaded = append(uploaded, assets...)
			if err != nil {
				return err
			}

			answer := models.ResponseAnswer{
				ResponseID: response.ID,
				FieldID:    field.ID,
				Value:      value,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// The DB rolled back; clean up any assets that made it to storage.
		for _, assetID := range uploaded {
			if derr := store.Delete(ctx, assetID); derr != nil {
				logger.L().Warn("failed to delete orphaned upload",
					zap.String("asset", assetID), zap.Error(derr))
			}
		}
		return "", err
	}

	notifyAccount(db, sender, form)
	return responseID, nil
}

// buildAnswerValue encodes one field's submitted value. File fields
// upload each file and store the URL (or a JSON array of URLs); text
// fields store the raw string or a JSON array for multi-valued input.
func buildAnswerValue(ctx context.Context, store storage.Storage, field models.FormField, sub Submission) (string, []string, error) {
	files := sub.Files[field.ID]
	if len(files) > 0 {
		urls := make([]string, 0, len(files))
		assets := make([]string, 0, len(files))
		for _, file := range files {
			if !allowedMIME[file.ContentType] {
				return "", assets, types.Validation("File type %s not allowed", file.ContentType)
			}
			if file.Size > MaxFileSize {
				return "", assets, types.Validation("File %s exceeds 20MB limit", file.Filename)
			}

			r, err := file.Open()
			if err != nil {
				return "", assets, fmt.Errorf("failed to open upload %s: %w", file.Filename, err)
			}
			obj, err := store.Upload(ctx, r, "forms/"+field.ID, file.Filename)
			r.Close()
			if err != nil {
				return "", assets, fmt.Errorf("failed to store upload %s: %w", file.Filename, err)
			}
			urls = append(urls, obj.URL)
			assets = append(assets, obj.AssetID)
		}

		if len(urls) == 1 {
			return urls[0], assets, nil
		}
		encoded, err := json.Marshal(urls)
		return string(encoded), assets, err
	}

	texts := sub.Values[field.ID]
	switch len(texts) {
	case 0:
		return "", nil, nil
	case 1:
		return texts[0], nil, nil
	default:
		encoded, err := json.Marshal(texts)
		return string(encoded), nil, err
	}
}

// notifyAccount fires the "new response" alert to the owning account's
// contact email. Best-effort: failures are logged, never surfaced.
func notifyAccount(db *gorm.DB, sender mailer.Sender, form models.Form) {
	if form.AccountID == nil {
		return
	}
	var account models.Account
	if err := db.Select("id", "business_name", "email").
		Where("id = ?", *form.AccountID).
		First(&account).Error; err != nil || account.Email == "" {
		return
	}
	mailer.SendAsync(sender, account.Email,
		fmt.Sprintf("New response received for %q", form.Title),
		mailer.ResponseAlertHTML(account.BusinessName, form.Title),
	)
}
