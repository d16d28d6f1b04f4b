package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/wizardlabs/leadforms/internal/auth"
	"github.com/wizardlabs/leadforms/internal/config"
	"github.com/wizardlabs/leadforms/internal/middleware"
	"github.com/wizardlabs/leadforms/internal/models"
	"github.com/wizardlabs/leadforms/internal/storage"
	"github.com/wizardlabs/leadforms/internal/types"
	"github.com/wizardlabs/leadforms/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

type silentSender struct{}

func (silentSender) Send(to, subject, html string) error { return nil }

func setupApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Account{}, &models.User{},
		&models.Form{}, &models.FormField{},
		&models.Response{}, &models.ResponseAnswer{},
		&models.FollowUp{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:      "handler-test-secret",
		JWTResetSecret: "handler-test-reset",
		AppBaseURL:     "http://localhost:3000",
	}

	store, err := storage.NewDisk(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	sender := silentSender{}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *types.AppError
			if errors.As(err, &appErr) {
				return utils.ErrorResponse(c, appErr.Message, appErr.Code, appErr.Type)
			}
			if errors.Is(err, types.ErrNotFound) {
				return utils.NotFoundResponse(c, err.Error())
			}
			return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "unknown")
		},
	})

	authHandler := &AuthHandler{DB: db, Cfg: cfg, Mailer: sender}
	accountHandler := &AccountHandler{DB: db, Mailer: sender}
	formHandler := &FormHandler{DB: db}
	responseHandler := &ResponseHandler{DB: db, Storage: store, Mailer: sender}
	followUpHandler := &FollowUpHandler{DB: db}

	authAny := middleware.RequireRole(cfg.JWTSecret, models.RoleSuperAdmin, models.RoleAdmin)
	authSuper := middleware.RequireRole(cfg.JWTSecret, models.RoleSuperAdmin)

	api := app.Group("/api/v1")
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", authAny, authHandler.Me)
	authGroup.Get("/accounts", authSuper, accountHandler.List)

	formGroup := api.Group("/form")
	formGroup.Post("/", authAny, formHandler.Create)
	formGroup.Post("/:formId/response", responseHandler.Submit)
	formGroup.Get("/:formId/response", authAny, responseHandler.List)
	formGroup.Get("/:formId/response/:responseId", authAny, responseHandler.Get)

	api.Post("/followup", authAny, followUpHandler.Create)
	api.Get("/followup", authAny, followUpHandler.List)

	return &testEnv{app: app, db: db, cfg: cfg}
}

func (e *testEnv) createUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{Name: "Handler Tester", Email: email, Password: hash, Role: role}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func (e *testEnv) sessionCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	token, err := auth.GenerateToken(e.cfg.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return &http.Cookie{Name: auth.TokenCookie, Value: token}
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result
}

func TestLoginSetsCookie(t *testing.T) {
	env := setupApp(t)
	env.createUser(t, "rep@example.com", models.RoleAdmin)

	resp, err := env.app.Test(jsonRequest("POST", "/api/v1/auth/login", map[string]string{
		"email":    "rep@example.com",
		"password": "Sup3rSecret",
	}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == auth.TokenCookie {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("login must set the token cookie")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie must be httpOnly")
	}

	body := decodeBody(t, resp)
	if body["success"] != true {
		t.Errorf("expected success, got %v", body)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := setupApp(t)
	env.createUser(t, "rep@example.com", models.RoleAdmin)

	resp, err := env.app.Test(jsonRequest("POST", "/api/v1/auth/login", map[string]string{
		"email":    "rep@example.com",
		"password": "wrong",
	}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["ok"] != false || body["message"] != "Invalid password" {
		t.Errorf("unexpected error envelope: %v", body)
	}
}

func TestMeRequiresSession(t *testing.T) {
	env := setupApp(t)
	user := env.createUser(t, "rep@example.com", models.RoleAdmin)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/v1/auth/me", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401 without cookie, got %d", resp.StatusCode)
	}

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.AddCookie(env.sessionCookie(t, user))
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 with cookie, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["email"] != user.Email || body["initials"] != "HT" {
		t.Errorf("unexpected profile: %v", body)
	}
}

func TestRoleGateBlocksAdmins(t *testing.T) {
	env := setupApp(t)
	admin := env.createUser(t, "rep@example.com", models.RoleAdmin)
	super := env.createUser(t, "root@example.com", models.RoleSuperAdmin)

	req := httptest.NewRequest("GET", "/api/v1/auth/accounts", nil)
	req.AddCookie(env.sessionCookie(t, admin))
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Fatalf("ADMIN must not list accounts, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/v1/auth/accounts", nil)
	req.AddCookie(env.sessionCookie(t, super))
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("SUPERADMIN should list accounts, got %d", resp.StatusCode)
	}
}

func TestSubmitAndTrackLeadOverHTTP(t *testing.T) {
	env := setupApp(t)
	user := env.createUser(t, "rep@example.com", models.RoleAdmin)
	cookie := env.sessionCookie(t, user)

	// Build a form through the API.
	req := jsonRequest("POST", "/api/v1/form", map[string]interface{}{
		"title": "Landing Page",
		"fields": []map[string]interface{}{
			{"label": "Name", "type": "text", "required": true},
		},
	})
	req.AddCookie(cookie)
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("create form failed: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	formBody := decodeBody(t, resp)
	formID := formBody["id"].(string)
	fields := formBody["fields"].([]interface{})
	fieldID := fields[0].(map[string]interface{})["id"].(string)

	// Public multipart submission, no cookie.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField(fieldID, "Ada Lovelace")
	mw.Close()
	req = httptest.NewRequest("POST", "/api/v1/form/"+formID+"/response", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201 from submit, got %d", resp.StatusCode)
	}
	submitBody := decodeBody(t, resp)
	responseID := submitBody["responseId"].(string)

	// Record a terminal follow-up.
	req = jsonRequest("POST", "/api/v1/followup", map[string]interface{}{
		"responseId":     responseID,
		"type":           "MEETING",
		"businessStatus": "Client Converted",
	})
	req.AddCookie(cookie)
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("followup failed: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201 from followup, got %d", resp.StatusCode)
	}
	followUpBody := decodeBody(t, resp)
	if _, ok := followUpBody["followup"]; !ok {
		t.Errorf("create envelope must carry the followup key, got %v", followUpBody)
	}

	// A second follow-up is blocked by the terminal state.
	req = jsonRequest("POST", "/api/v1/followup", map[string]interface{}{
		"responseId":     responseID,
		"type":           "CALL",
		"businessStatus": "Call Client",
	})
	req.AddCookie(cookie)
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("followup failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 policy error, got %d", resp.StatusCode)
	}
	blocked := decodeBody(t, resp)
	if blocked["type"] != "policy" {
		t.Errorf("expected policy error type, got %v", blocked["type"])
	}

	// The lead shows up completed in the per-form listing.
	req = httptest.NewRequest("GET", "/api/v1/form/"+formID+"/response?state=completed", nil)
	req.AddCookie(cookie)
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 from listing, got %d", resp.StatusCode)
	}
	listing := decodeBody(t, resp)
	responses := listing["responses"].([]interface{})
	if len(responses) != 1 {
		t.Fatalf("expected 1 completed lead, got %d", len(responses))
	}
	entry := responses[0].(map[string]interface{})
	if entry["leadStatus"] != models.StatusCompleted {
		t.Errorf("expected COMPLETED lead, got %v", entry["leadStatus"])
	}
	if entry["answers"].(map[string]interface{})["Name"] != "Ada Lovelace" {
		t.Errorf("answers must be keyed by label: %v", entry["answers"])
	}

	// And in the user feed.
	req = httptest.NewRequest("GET", "/api/v1/followup?state=completed", nil)
	req.AddCookie(cookie)
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	feed := decodeBody(t, resp)
	today := feed["today"].([]interface{})
	if len(today) != 1 {
		t.Fatalf("expected 1 feed entry, got %d", len(today))
	}
}

func TestSubmitMissingRequiredField(t *testing.T) {
	env := setupApp(t)
	user := env.createUser(t, "rep@example.com", models.RoleAdmin)

	form := &models.Form{
		FormsID: "handler-tester-001-1",
		Title:   "Landing Page",
		Slug:    "landing-page-1",
		UserID:  user.ID,
	}
	if err := env.db.Create(form).Error; err != nil {
		t.Fatalf("Failed to create form: %v", err)
	}
	field := &models.FormField{FormID: form.ID, Label: "Phone", Type: "text", Required: true, Order: 1}
	if err := env.db.Create(field).Error; err != nil {
		t.Fatalf("Failed to create field: %v", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()
	req := httptest.NewRequest("POST", "/api/v1/form/"+form.ID+"/response", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(raw, []byte(`\"Phone\"`)) && !bytes.Contains(raw, []byte("Phone")) {
		t.Errorf("error must name the missing field, got %s", raw)
	}
}

func TestListingScopedToOwner(t *testing.T) {
	env := setupApp(t)
	owner := env.createUser(t, "owner@example.com", models.RoleAdmin)
	intruder := env.createUser(t, "intruder@example.com", models.RoleAdmin)

	form := &models.Form{
		FormsID: "handler-tester-001-2",
		Title:   "Landing Page",
		Slug:    "landing-page-2",
		UserID:  owner.ID,
	}
	if err := env.db.Create(form).Error; err != nil {
		t.Fatalf("Failed to create form: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/form/"+form.ID+"/response", nil)
	req.AddCookie(env.sessionCookie(t, intruder))
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("other users must not see the listing, got %d", resp.StatusCode)
	}
}

func TestResponseDetailScopedToOwnForm(t *testing.T) {
	env := setupApp(t)
	alice := env.createUser(t, "alice@example.com", models.RoleAdmin)
	bob := env.createUser(t, "bob@example.com", models.RoleAdmin)

	aliceForm := &models.Form{
		FormsID: "handler-tester-001-3",
		Title:   "Alice Intake",
		Slug:    "alice-intake-3",
		UserID:  alice.ID,
	}
	bobForm := &models.Form{
		FormsID: "handler-tester-001-4",
		Title:   "Bob Intake",
		Slug:    "bob-intake-4",
		UserID:  bob.ID,
	}
	for _, form := range []*models.Form{aliceForm, bobForm} {
		if err := env.db.Create(form).Error; err != nil {
			t.Fatalf("Failed to create form: %v", err)
		}
	}
	bobResponse := &models.Response{FormID: bobForm.ID}
	if err := env.db.Create(bobResponse).Error; err != nil {
		t.Fatalf("Failed to create response: %v", err)
	}

	// Owning some form must not open other tenants' responses.
	req := httptest.NewRequest("GET", "/api/v1/form/"+aliceForm.ID+"/response/"+bobResponse.ID, nil)
	req.AddCookie(env.sessionCookie(t, alice))
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("cross-form response fetch must be 404, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/v1/form/"+bobForm.ID+"/response/"+bobResponse.ID, nil)
	req.AddCookie(env.sessionCookie(t, bob))
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("owner should read their own response, got %d", resp.StatusCode)
	}
}
