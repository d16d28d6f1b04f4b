package services

import (
	"testing"
	"time"

	"github.com/wizardlabs/leadforms/internal/auth"
	"github.com/wizardlabs/leadforms/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Account{},
		&models.User{},
		&models.Form{},
		&models.FormField{},
		&models.Response{},
		&models.ResponseAnswer{},
		&models.FollowUp{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{
		Name:     "Jordan Tester",
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createTestForm(t *testing.T, db *gorm.DB, userID string, fields ...models.FormField) *models.Form {
	t.Helper()

	form := &models.Form{
		FormsID:     "jordan-tester-001-" + userID[:8],
		Title:       "Contact Us",
		Slug:        "contact-us-" + userID[:8],
		Description: "Reach out",
		UserID:      userID,
	}
	if err := db.Create(form).Error; err != nil {
		t.Fatalf("Failed to create test form: %v", err)
	}
	for i := range fields {
		fields[i].FormID = form.ID
		if err := db.Create(&fields[i]).Error; err != nil {
			t.Fatalf("Failed to create test field: %v", err)
		}
	}
	form.Fields = fields
	return form
}

func createTestResponse(t *testing.T, db *gorm.DB, formID string) *models.Response {
	t.Helper()

	response := &models.Response{FormID: formID}
	if err := db.Create(response).Error; err != nil {
		t.Fatalf("Failed to create test response: %v", err)
	}
	return response
}

// createFollowUpAt inserts a follow-up with an explicit timestamp so
// ordering-sensitive tests never depend on clock resolution.
func createFollowUpAt(t *testing.T, db *gorm.DB, responseID, userID, businessStatus string, nextDate *time.Time, createdAt time.Time) *models.FollowUp {
	t.Helper()

	fu := &models.FollowUp{
		ResponseID:       responseID,
		AddedByUserID:    userID,
		Type:             "CALL",
		BusinessStatus:   businessStatus,
		Status:           MapBusinessStatus(businessStatus),
		NextFollowUpDate: nextDate,
		CreatedAt:        createdAt,
	}
	if err := db.Create(fu).Error; err != nil {
		t.Fatalf("Failed to create test follow-up: %v", err)
	}
	return fu
}

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }
