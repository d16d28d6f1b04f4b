package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wizardlabs/leadforms/internal/auth"
	"github.com/wizardlabs/leadforms/internal/config"
	"github.com/wizardlabs/leadforms/internal/mailer"
	"github.com/wizardlabs/leadforms/internal/models"
	"github.com/wizardlabs/leadforms/internal/types"
	"github.com/wizardlabs/leadforms/internal/utils"
	"gorm.io/gorm"
)

// Login verifies credentials and returns the user plus a signed session token.
func Login(db *gorm.DB, jwtSecret, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", types.Validation("Email and password are required")
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", types.Unauthorized("User not found")
		}
		return nil, "", err
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, "", types.Unauthorized("Invalid password")
	}

	token, err := auth.GenerateToken(jwtSecret, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Profile is the authenticated-user payload returned by the "me" endpoint.
type Profile struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	AccountID *string         `json:"accountId"`
	Account   *models.Account `json:"account,omitempty"`
	Initials  string          `json:"initials"`
}

// GetProfile loads the caller's user row with its account.
func GetProfile(db *gorm.DB, userID string) (*Profile, error) {
	var user models.User
	if err := db.Preload("Account").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", types.ErrNotFound)
		}
		return nil, err
	}
	return &Profile{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		AccountID: user.AccountID,
		Account:   user.Account,
		Initials:  utils.NameInitials(user.Name),
	}, nil
}

// UpdatePassword changes the caller's password after verifying the current one.
func UpdatePassword(db *gorm.DB, userID, current, next, confirm string) error {
	if current == "" || next == "" || confirm == "" {
		return types.Validation("All password fields are required")
	}
	if next != confirm {
		return types.Validation("Passwords do not match")
	}
	if msg := utils.CheckPasswordStrength(next); msg != "" {
		return types.Validation("%s", msg)
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user: %w", types.ErrNotFound)
		}
		return err
	}
	if !auth.CheckPassword(user.Password, current) {
		return types.Unauthorized("Current password is incorrect")
	}
	if auth.CheckPassword(user.Password, next) {
		return types.Validation("New password must be different from the current one")
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return db.Model(&user).Update("password", hash).Error
}

// ForgotPasswordMessage is returned regardless of whether the address
// exists, so the endpoint never leaks account membership.
const ForgotPasswordMessage = "If account exists, email sent."

// ForgotPassword issues a short-lived reset token and emails the reset link.
func ForgotPassword(db *gorm.DB, cfg *config.Config, sender mailer.Sender, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return types.Validation("Email is required")
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := auth.GenerateResetToken(cfg.JWTResetSecret, user.ID)
	if err != nil {
		return err
	}
	expires := time.Now().Add(auth.ResetTTL)
	err = db.Model(&user).Updates(map[string]interface{}{
		"reset_token":            token,
		"reset_token_expires_at": expires,
	}).Error
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(cfg.AppBaseURL, "/"), token)
	mailer.SendAsync(sender, user.Email, "Reset your password", mailer.PasswordResetHTML(resetURL))
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func ResetPassword(db *gorm.DB, cfg *config.Config, token, password string) error {
	if token == "" || password == "" {
		return types.Validation("Token and password are required")
	}
	if msg := utils.CheckPasswordStrength(password); msg != "" {
		return types.Validation("%s", msg)
	}

	userID, err := auth.ValidateResetToken(cfg.JWTResetSecret, token)
	if err != nil {
		return types.Unauthorized("Reset link is invalid or has expired")
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.Unauthorized("Reset link is invalid or has expired")
		}
		return err
	}
	// The stored token must match so a reset link can only be used once.
	if user.ResetToken == nil || *user.ResetToken != token {
		return types.Unauthorized("Reset link is invalid or has expired")
	}
	if user.ResetTokenExpiresAt == nil || user.ResetTokenExpiresAt.Before(time.Now()) {
		return types.Unauthorized("Reset link is invalid or has expired")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return db.Model(&user).Updates(map[string]interface{}{
		"password":               hash,
		"reset_token":            nil,
		"reset_token_expires_at": nil,
	}).Error
}

// CreateAdminInput is the payload for creating a standalone admin user.
type CreateAdminInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Account  *string `json:"accountId"`
}

// CreateAdminUser creates an ADMIN user under the caller.
func CreateAdminUser(db *gorm.DB, creatorID string, in CreateAdminInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" {
		return nil, types.Validation("Name and email are required")
	}
	if msg := utils.CheckPasswordStrength(in.Password); msg != "" {
		return nil, types.Validation("%s", msg)
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, types.Conflict("A user with this email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Name:        in.Name,
		Email:       in.Email,
		Password:    hash,
		Role:        models.RoleAdmin,
		AccountID:   in.Account,
		CreatedByID: &creatorID,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateAccountInput is the payload for onboarding a new business account.
type CreateAccountInput struct {
	BusinessName string `json:"businessName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	AdminName    string `json:"adminName"`
	AdminEmail   string `json:"adminEmail"`
}

// CreateAccount creates an account together with its first ADMIN user.
// The admin gets a generated password delivered by email; if that mail
// cannot be sent the whole operation fails so no orphaned credentials exist.
func CreateAccount(db *gorm.DB, sender mailer.Sender, creatorID string, in CreateAccountInput) (*models.Account, error) {
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.AdminName = strings.TrimSpace(in.AdminName)
	in.AdminEmail = strings.ToLower(strings.TrimSpace(in.AdminEmail))
	if in.BusinessName == "" || in.Email == "" {
		return nil, types.Validation("Business name and email are required")
	}
	if in.AdminName == "" || in.AdminEmail == "" {
		return nil, types.Validation("Admin name and email are required")
	}

	var count int64
	if err := db.Model(&models.Account{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, types.Conflict("An account with this email already exists")
	}
	if err := db.Model(&models.User{}).Where("email = ?", in.AdminEmail).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, types.Conflict("A user with this email already exists")
	}

	password := utils.GeneratePassword(10)
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := models.Account{
		BusinessName: in.BusinessName,
		Email:        in.Email,
		Phone:        in.Phone,
		Location:     in.Location,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
		admin := models.User{
			Name:        in.AdminName,
			Email:       in.AdminEmail,
			Password:    hash,
			Role:        models.RoleAdmin,
			AccountID:   &account.ID,
			CreatedByID: &creatorID,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		account.Users = []models.User{admin}

		// Sent inside the transaction on purpose: if the credentials
		// cannot be delivered the account must not exist either.
		html := mailer.LoginDetailsHTML(in.AdminName, in.AdminEmail, password)
		if err := sender.Send(in.AdminEmail, "Your login details", html); err != nil {
			return fmt.Errorf("sending login details: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// AccountList is a paginated account listing.
type AccountList struct {
	Accounts []models.Account `json:"accounts"`
	Pagination
}

// ListAccounts returns accounts newest first with their users.
func ListAccounts(db *gorm.DB, page, limit int) (*AccountList, error) {
	page, limit = clampPaging(page, limit)

	var total int64
	if err := db.Model(&models.Account{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var accounts []models.Account
	err := db.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Preload("Users").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return &AccountList{
		Accounts:   accounts,
		Pagination: newPagination(page, limit, int(total)),
	}, nil
}

// GetAccount returns one account with its users.
func GetAccount(db *gorm.DB, accountID string) (*models.Account, error) {
	var account models.Account
	if err := db.Preload("Users").First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account: %w", types.ErrNotFound)
		}
		return nil, err
	}
	return &account, nil
}

// DeleteAccount removes an account and detaches its users.
func DeleteAccount(db *gorm.DB, accountID string) error {
	if _, err := GetAccount(db, accountID); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("account_id = ?", accountID).
			Update("account_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Account{}, "id = ?", accountID).Error
	})
}
