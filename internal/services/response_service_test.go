package services

import (
	"errors"
	"testing"
	"time"

	"github.com/wizardlabs/leadforms/internal/models"
	"github.com/wizardlabs/leadforms/internal/types"
)

func TestListFormResponsesUnknownForm(t *testing.T) {
	db := setupTestDB(t)

	_, err := ListFormResponses(db, "missing", "", 1, 0)
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestListFormResponsesAnnotatesLeads(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "owner@example.com")
	form := createTestForm(t, db, user.ID,
		models.FormField{Label: "Full Name", Type: "text", Required: true, Order: 1},
	)

	response := createTestResponse(t, db, form.ID)
	if err := db.Create(&models.ResponseAnswer{
		ResponseID: response.ID,
		FieldID:    form.Fields[0].ID,
		Value:      "Ada Lovelace",
	}).Error; err != nil {
		t.Fatalf("failed to create answer: %v", err)
	}

	base := time.Now().Add(-2 * time.Hour)
	createFollowUpAt(t, db, response.ID, user.ID, "Call Client", nil, base)
	createFollowUpAt(t, db, response.ID, user.ID, "Client Converted", timePtr(base.Add(48*time.Hour)), base.Add(time.Hour))

	list, err := ListFormResponses(db, form.ID, "", 1, 0)
	if err != nil {
		t.Fatalf("ListFormResponses failed: %v", err)
	}
	if list.FormID != form.FormsID || list.Title != form.Title {
		t.Errorf("listing should carry the form identity, got %s / %s", list.FormID, list.Title)
	}
	if list.ResponseCount != 1 {
		t.Errorf("responseCount must carry the filtered total, got %d", list.ResponseCount)
	}
	if len(list.Responses) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(list.Responses))
	}

	entry := list.Responses[0]
	if entry.Index != 1 {
		t.Errorf("expected running index 1, got %d", entry.Index)
	}
	if entry.Answers["Full Name"] != "Ada Lovelace" {
		t.Errorf("answers must be keyed by field label: %v", entry.Answers)
	}
	if entry.FollowUpCount != 2 {
		t.Errorf("expected 2 follow-ups, got %d", entry.FollowUpCount)
	}
	if entry.LeadStatus != models.StatusCompleted {
		t.Errorf("lead status must come from the latest follow-up, got %s", entry.LeadStatus)
	}
	if entry.LastFollowUp == nil || entry.LastFollowUp.BusinessStatus != "Client Converted" {
		t.Errorf("lastFollowUp wrong: %+v", entry.LastFollowUp)
	}
	if entry.NextFollowUpDate == nil {
		t.Errorf("nextFollowUpDate should surface the first dated follow-up")
	}
}

func TestListFormResponsesZeroFollowUpVisibility(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "owner@example.com")
	form := createTestForm(t, db, user.ID)

	fresh := createTestResponse(t, db, form.ID)

	tracked := createTestResponse(t, db, form.ID)
	createFollowUpAt(t, db, tracked.ID, user.ID, "Call Client", timePtr(time.Now()), time.Now().Add(-time.Hour))

	all, err := ListFormResponses(db, form.ID, StateAll, 1, 0)
	if err != nil {
		t.Fatalf("state all failed: %v", err)
	}
	if len(all.Responses) != 2 {
		t.Fatalf("state all should include untracked leads, got %d", len(all.Responses))
	}
	for _, entry := range all.Responses {
		if entry.ResponseID == fresh.ID && entry.LeadStatus != models.StatusPending {
			t.Errorf("untracked lead defaults to PENDING, got %s", entry.LeadStatus)
		}
	}

	pending, err := ListFormResponses(db, form.ID, StatePending, 1, 0)
	if err != nil {
		t.Fatalf("state pending failed: %v", err)
	}
	if len(pending.Responses) != 1 || pending.Responses[0].ResponseID != tracked.ID {
		t.Errorf("untracked leads must not match a state filter: %+v", pending.Responses)
	}
}

func TestPerFormAndPerUserStatusAgree(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "owner@example.com")
	form := createTestForm(t, db, user.ID)
	response := createTestResponse(t, db, form.ID)

	createFollowUpAt(t, db, response.ID, user.ID, "Client not Interested", nil, time.Now().Add(-time.Hour))

	list, err := ListFormResponses(db, form.ID, StateAll, 1, 0)
	if err != nil {
		t.Fatalf("ListFormResponses failed: %v", err)
	}
	feed, err := ListUserFollowUps(db, user.ID, StateAll, 1, 0)
	if err != nil {
		t.Fatalf("ListUserFollowUps failed: %v", err)
	}

	if len(list.Responses) != 1 || len(feed.Today) != 1 {
		t.Fatalf("expected the lead in both views")
	}
	if list.Responses[0].LeadStatus != feed.Today[0].Status {
		t.Errorf("views disagree on lead status: %s vs %s",
			list.Responses[0].LeadStatus, feed.Today[0].Status)
	}
}

func TestListFormResponsesDecodesMultiValues(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "owner@example.com")
	form := createTestForm(t, db, user.ID,
		models.FormField{Label: "Interests", Type: "checkbox", Order: 1},
	)
	response := createTestResponse(t, db, form.ID)
	if err := db.Create(&models.ResponseAnswer{
		ResponseID: response.ID,
		FieldID:    form.Fields[0].ID,
		Value:      `["golf","sailing"]`,
	}).Error; err != nil {
		t.Fatalf("failed to create answer: %v", err)
	}

	list, err := ListFormResponses(db, form.ID, StateAll, 1, 0)
	if err != nil {
		t.Fatalf("ListFormResponses failed: %v", err)
	}
	values, ok := list.Responses[0].Answers["Interests"].([]interface{})
	if !ok || len(values) != 2 {
		t.Errorf("stored JSON arrays must decode back to lists, got %v", list.Responses[0].Answers["Interests"])
	}
}

func TestGetResponseDetail(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "owner@example.com")
	form := createTestForm(t, db, user.ID,
		models.FormField{Label: "Email", Type: "email", Order: 1},
	)
	response := createTestResponse(t, db, form.ID)
	if err := db.Create(&models.ResponseAnswer{
		ResponseID: response.ID,
		FieldID:    form.Fields[0].ID,
		Value:      "ada@example.com",
	}).Error; err != nil {
		t.Fatalf("failed to create answer: %v", err)
	}

	detail, err := GetResponse(db, form.ID, response.ID)
	if err != nil {
		t.Fatalf("GetResponse failed: %v", err)
	}
	if detail.ResponseID != response.ID {
		t.Errorf("wrong response returned")
	}
	if detail.Answers["Email"] != "ada@example.com" {
		t.Errorf("answers must be keyed by label: %v", detail.Answers)
	}

	if _, err := GetResponse(db, form.ID, "missing"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected not-found for unknown response, got %v", err)
	}
}

func TestGetResponseScopedToForm(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	aliceForm := createTestForm(t, db, alice.ID)
	bobForm := createTestForm(t, db, bob.ID)
	bobResponse := createTestResponse(t, db, bobForm.ID)

	// A response under another form must not resolve, even when the
	// caller owns the form they name in the path.
	if _, err := GetResponse(db, aliceForm.ID, bobResponse.ID); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected not-found for a response outside the form, got %v", err)
	}

	if _, err := GetResponse(db, bobForm.ID, bobResponse.ID); err != nil {
		t.Errorf("response under its own form should resolve: %v", err)
	}
}
