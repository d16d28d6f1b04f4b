package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/wizardlabs/leadforms/internal/models"
	"github.com/wizardlabs/leadforms/internal/types"
	"gorm.io/gorm"
)

// ResponseEntry is one lead row in the per-form listing, annotated with
// its follow-up history and derived status.
type ResponseEntry struct {
	Index            int                    `json:"index"`
	ResponseID       string                 `json:"responseId"`
	SubmittedAt      time.Time              `json:"submittedAt"`
	Answers          map[string]interface{} `json:"answers"`
	FollowUps        []models.FollowUp      `json:"followUps"`
	FollowUpCount    int                    `json:"followUpCount"`
	LastFollowUp     *models.FollowUp       `json:"lastFollowUp"`
	NextFollowUpDate *time.Time             `json:"nextFollowUpDate"`
	LeadStatus       string                 `json:"leadStatus"`
}

// FormResponses is the annotated, paginated per-form listing.
// ResponseCount is the filtered total, duplicated from the pagination
// block under the name the dashboard reads.
type FormResponses struct {
	ID            string          `json:"id"`
	FormID        string          `json:"formId"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	ResponseCount int             `json:"responseCount"`
	Responses     []ResponseEntry `json:"responses"`
	Pagination
}

// ListFormResponses returns a form's leads newest first, each annotated
// with its current lead status. Responses without any follow-up only
// surface under state "all".
func ListFormResponses(db *gorm.DB, formID, state string, page, limit int) (*FormResponses, error) {
	if state == "" {
		state = StateAll
	}
	switch state {
	case StateAll, StatePending, StateCompleted, StateCancelled:
	default:
		return nil, types.Validation("Invalid state %q", state)
	}
	page, limit = clampPaging(page, limit)

	var form models.Form
	if err := db.Preload("Fields").Where("id = ?", formID).First(&form).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("form: %w", types.ErrNotFound)
		}
		return nil, err
	}

	var responses []models.Response
	if err := db.Where("form_id = ?", formID).
		Order("submitted_at DESC").
		Preload("Answers").
		Preload("FollowUps", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Find(&responses).Error; err != nil {
		return nil, err
	}

	labels := make(map[string]string, len(form.Fields))
	for _, f := range form.Fields {
		labels[f.ID] = f.Label
	}

	eod := endOfToday()
	filtered := make([]models.Response, 0, len(responses))
	for _, r := range responses {
		if len(r.FollowUps) == 0 {
			// Leads never followed up are only visible unfiltered.
			if state == StateAll {
				filtered = append(filtered, r)
			}
			continue
		}
		if matchesState(r.FollowUps[0], state, eod) {
			filtered = append(filtered, r)
		}
	}

	paged := pageSlice(filtered, page, limit)
	skip := (page - 1) * limit
	entries := make([]ResponseEntry, 0, len(paged))
	for i, r := range paged {
		entries = append(entries, buildResponseEntry(r, labels, skip+i+1))
	}

	return &FormResponses{
		ID:            form.ID,
		FormID:        form.FormsID,
		Title:         form.Title,
		Description:   form.Description,
		ResponseCount: len(filtered),
		Responses:     entries,
		Pagination:    newPagination(page, limit, len(filtered)),
	}, nil
}

// buildResponseEntry projects one Response into its listing row.
// FollowUps are already ordered newest first.
func buildResponseEntry(r models.Response, labels map[string]string, index int) ResponseEntry {
	answers := make(map[string]interface{}, len(r.Answers))
	for _, ans := range r.Answers {
		label := labels[ans.FieldID]
		if label == "" {
			label = ans.FieldID
		}
		answers[label] = decodeAnswerValue(ans.Value)
	}

	entry := ResponseEntry{
		Index:         index,
		ResponseID:    r.ID,
		SubmittedAt:   r.SubmittedAt,
		Answers:       answers,
		FollowUps:     r.FollowUps,
		FollowUpCount: len(r.FollowUps),
		LeadStatus:    models.StatusPending,
	}
	if len(r.FollowUps) > 0 {
		entry.LastFollowUp = &r.FollowUps[0]
		entry.LeadStatus = r.FollowUps[0].Status
		for i := range r.FollowUps {
			if r.FollowUps[i].NextFollowUpDate != nil {
				entry.NextFollowUpDate = r.FollowUps[i].NextFollowUpDate
				break
			}
		}
	}
	return entry
}

// ResponseDetail is a single submission with its answers keyed by label.
type ResponseDetail struct {
	ResponseID  string                 `json:"responseId"`
	SubmittedAt time.Time              `json:"submittedAt"`
	Answers     map[string]interface{} `json:"answers"`
}

// GetResponse returns one submission with its field-label answer map.
// The response must belong to the given form so callers cannot reach
// across forms they do not own.
func GetResponse(db *gorm.DB, formID, responseID string) (*ResponseDetail, error) {
	var response models.Response
	err := db.Where("id = ? AND form_id = ?", responseID, formID).
		Preload("Answers").
		Preload("Form.Fields").
		First(&response).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("response: %w", types.ErrNotFound)
		}
		return nil, err
	}

	labels := make(map[string]string)
	if response.Form != nil {
		for _, f := range response.Form.Fields {
			labels[f.ID] = f.Label
		}
	}

	answers := make(map[string]interface{}, len(response.Answers))
	for _, ans := range response.Answers {
		label := labels[ans.FieldID]
		if label == "" {
			label = ans.FieldID
		}
		answers[label] = decodeAnswerValue(ans.Value)
	}

	return &ResponseDetail{
		ResponseID:  response.ID,
		SubmittedAt: response.SubmittedAt,
		Answers:     answers,
	}, nil
}
