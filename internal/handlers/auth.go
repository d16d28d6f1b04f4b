package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wizardlabs/leadforms/internal/auth"
	"github.com/wizardlabs/leadforms/internal/config"
	"github.com/wizardlabs/leadforms/internal/mailer"
	"github.com/wizardlabs/leadforms/internal/middleware"
	"github.com/wizardlabs/leadforms/internal/services"
	"github.com/wizardlabs/leadforms/internal/utils"
	"gorm.io/gorm"
)

// AuthHandler handles authentication and user management routes
type AuthHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Mailer mailer.Sender
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Expires:  time.Now().Add(auth.SessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.Cfg.Environment == "production",
		Path:     "/",
	})
}

// Login handles POST /api/v1/auth/login
// @Summary Log in
// @Description Verify credentials and set the session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body object true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	user, token, err := services.Login(h.DB, h.Cfg.JWTSecret, body.Email, body.Password)
	if err != nil {
		return serviceError(c, err, "auth.login")
	}

	h.setSessionCookie(c, token)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"role":      user.Role,
			"accountId": user.AccountID,
		},
	})
}

// Logout handles POST /api/v1/auth/logout
// @Summary Log out
// @Description Expire the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// Me handles GET /api/v1/auth/me
// @Summary Current user
// @Description Return the authenticated user's profile
// @Tags Auth
// @Produce json
// @Success 200 {object} services.Profile
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	caller := middleware.CallerIdentity(c)
	profile, err := services.GetProfile(h.DB, caller.ID)
	if err != nil {
		return serviceError(c, err, "auth.me")
	}
	return c.Status(fiber.StatusOK).JSON(profile)
}

// UpdatePassword handles PATCH /api/v1/auth/update-password
// @Summary Update password
// @Description Change the caller's password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body object true "Current and new passwords"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/update-password [patch]
func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	caller := middleware.CallerIdentity(c)
	if err := services.UpdatePassword(h.DB, caller.ID, body.CurrentPassword, body.NewPassword, body.ConfirmPassword); err != nil {
		return serviceError(c, err, "auth.updatePassword")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Password updated successfully",
	})
}

// ForgotPassword handles POST /api/v1/auth/forgot-password
// @Summary Request a password reset
// @Description Email a reset link when the address exists
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body object true "Email"
// @Success 200 {object} map[string]interface{}
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	if err := services.ForgotPassword(h.DB, h.Cfg, h.Mailer, body.Email); err != nil {
		return serviceError(c, err, "auth.forgotPassword")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": services.ForgotPasswordMessage,
	})
}

// ResetPassword handles POST /api/v1/auth/reset-password
// @Summary Reset password
// @Description Consume a reset token and set a new password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body object true "Token and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	if err := services.ResetPassword(h.DB, h.Cfg, body.Token, body.Password); err != nil {
		return serviceError(c, err, "auth.resetPassword")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Password has been reset. You can log in now.",
	})
}

// CreateAdmin handles POST /api/v1/auth/admin
// @Summary Create an admin user
// @Description Create an ADMIN user (SUPERADMIN only)
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.CreateAdminInput true "Admin user"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /auth/admin [post]
func (h *AuthHandler) CreateAdmin(c *fiber.Ctx) error {
	var body services.CreateAdminInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	caller := middleware.CallerIdentity(c)
	user, err := services.CreateAdminUser(h.DB, caller.ID, body)
	if err != nil {
		return serviceError(c, err, "auth.createAdmin")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}
