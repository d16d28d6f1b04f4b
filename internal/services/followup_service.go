package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/wizardlabs/leadforms/internal/models"
	"github.com/wizardlabs/leadforms/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Allowed businessStatus vocabulary (closed set, validated on input).
var BusinessStatuses = []string{
	"Client Converted",
	"Client will Call",
	"Client will Visit",
	"Client will Message",
	"Call Client",
	"Message Client",
	"Visit Client",
	"Put on Backburner",
	"Client not Interested",
}

// Terminal statuses: once the latest follow-up carries one of these,
// no further follow-ups may be appended to the lead.
var terminalStatuses = map[string]bool{
	"Client Converted":      true,
	"Client not Interested": true,
}

// ValidBusinessStatus reports whether s is in the allowed vocabulary.
func ValidBusinessStatus(s string) bool {
	for _, v := range BusinessStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether s closes a lead.
func IsTerminalStatus(s string) bool {
	return terminalStatuses[s]
}

// MapBusinessStatus derives the internal lifecycle state from the
// human-facing business status. Total over the allowed vocabulary.
func MapBusinessStatus(businessStatus string) string {
	switch businessStatus {
	case "Client Converted":
		return models.StatusCompleted
	case "Client not Interested":
		return models.StatusCancelled
	case "Put on Backburner":
		return models.StatusSkipped
	default:
		return models.StatusPending
	}
}

// CreateFollowUpInput is the create-follow-up request payload.
type CreateFollowUpInput struct {
	ResponseID       string  `json:"responseId"`
	Type             string  `json:"type"`
	Note             *string `json:"note"`
	NextFollowUpDate *string `json:"nextFollowUpDate"`
	BusinessStatus   string  `json:"businessStatus"`
}

// CreateFollowUp appends a follow-up event to a lead. The terminal-state
// guard and the insert run in one transaction holding a row lock on the
// parent Response, so concurrent writers cannot both pass the guard.
func CreateFollowUp(db *gorm.DB, userID string, in CreateFollowUpInput) (*models.FollowUp, error) {
	if in.ResponseID == "" {
		return nil, types.Validation("responseId is required")
	}
	if in.BusinessStatus == "" {
		return nil, types.Validation("businessStatus is required")
	}
	if !ValidBusinessStatus(in.BusinessStatus) {
		return nil, types.Validation("Invalid business status")
	}
	if !models.ValidFollowUpType(in.Type) {
		return nil, types.Validation("Invalid follow-up type")
	}

	nextDate, err := parseFollowUpDate(in.NextFollowUpDate)
	if err != nil {
		return nil, types.Validation("Invalid nextFollowUpDate")
	}

	followUp := models.FollowUp{
		ResponseID:       in.ResponseID,
		AddedByUserID:    userID,
		Type:             in.Type,
		Note:             in.Note,
		BusinessStatus:   in.BusinessStatus,
		Status:           MapBusinessStatus(in.BusinessStatus),
		NextFollowUpDate: nextDate,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Lock the parent lead so the guard and the insert are serialized
		// per response under concurrent writers.
		var response models.Response
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", in.ResponseID).
			First(&response).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("lead response: %w", types.ErrNotFound)
			}
			return err
		}

		var last models.FollowUp
		err := tx.Where("response_id = ?", in.ResponseID).
			Order("created_at DESC").
			First(&last).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && IsTerminalStatus(last.BusinessStatus) {
			return types.Policy(
				"This lead is already marked as %q. No further follow-ups can be added.",
				last.BusinessStatus,
			)
		}

		return tx.Create(&followUp).Error
	})
	if err != nil {
		return nil, err
	}

	// Attach the acting user for display.
	var addedBy models.User
	if err := db.Select("id", "name", "email").
		Where("id = ?", userID).
		First(&addedBy).Error; err == nil {
		followUp.AddedBy = &addedBy
	}

	return &followUp, nil
}

// parseFollowUpDate accepts a calendar date or an RFC3339 timestamp.
func parseFollowUpDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date: %s", *s)
}

// FollowUpFeed is the per-user dashboard feed: the latest follow-up per
// lead, bucket-filtered and paginated.
type FollowUpFeed struct {
	Today []models.FollowUp `json:"today"`
	Pagination
}

// Feed state filters.
const (
	StateAll       = "all"
	StatePending   = "pending"
	StateCompleted = "completed"
	StateCancelled = "cancelled"
)

// ListUserFollowUps returns the calling user's leads, one entry per
// Response (its chronologically latest follow-up), filtered by lifecycle
// bucket. Leads without any follow-up never appear here.
func ListUserFollowUps(db *gorm.DB, userID, state string, page, limit int) (*FollowUpFeed, error) {
	if state == "" {
		state = StatePending
	}
	switch state {
	case StateAll, StatePending, StateCompleted, StateCancelled:
	default:
		return nil, types.Validation("Invalid state %q", state)
	}
	page, limit = clampPaging(page, limit)

	var followUps []models.FollowUp
	if err := db.Where("added_by_user_id = ?", userID).
		Order("created_at DESC").
		Preload("Response").
		Preload("Response.Answers").
		Preload("Response.Answers.Field").
		Find(&followUps).Error; err != nil {
		return nil, err
	}

	// Newest-first, so the first follow-up seen per response is the
	// authoritative current state of that lead.
	seen := make(map[string]bool, len(followUps))
	latest := make([]models.FollowUp, 0, len(followUps))
	for _, fu := range followUps {
		if seen[fu.ResponseID] {
			continue
		}
		seen[fu.ResponseID] = true
		latest = append(latest, fu)
	}

	filtered := latest[:0:0]
	eod := endOfToday()
	for _, fu := range latest {
		if matchesState(fu, state, eod) {
			filtered = append(filtered, fu)
		}
	}

	feed := &FollowUpFeed{
		Today:      pageSlice(filtered, page, limit),
		Pagination: newPagination(page, limit, len(filtered)),
	}
	return feed, nil
}

// matchesState applies the lifecycle bucket filter to a lead's latest
// follow-up. Pending additionally requires the next follow-up to be due
// or overdue by end of today.
func matchesState(fu models.FollowUp, state string, endOfToday time.Time) bool {
	switch state {
	case StateAll:
		return true
	case StatePending:
		return fu.Status == models.StatusPending &&
			fu.NextFollowUpDate != nil &&
			!fu.NextFollowUpDate.After(endOfToday)
	case StateCompleted:
		return fu.Status == models.StatusCompleted
	case StateCancelled:
		return fu.Status == models.StatusCancelled
	}
	return false
}

func endOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), now.Location())
}
