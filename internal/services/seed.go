package services

import (
	"errors"

	"github.com/wizardlabs/leadforms/internal/auth"
	"github.com/wizardlabs/leadforms/internal/models"
	"gorm.io/gorm"
)

// SuperAdminEmail is the bootstrap login created by SeedSuperAdmin.
const SuperAdminEmail = "super@admin.com"

// SeedSuperAdmin creates the bootstrap account and SUPERADMIN user when
// they do not exist yet. Safe to run repeatedly.
func SeedSuperAdmin(db *gorm.DB, password string) (created bool, err error) {
	var existing models.User
	err = db.Where("email = ?", SuperAdminEmail).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		account := models.Account{
			BusinessName: "Super Admin Account",
			Email:        SuperAdminEmail,
		}
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
		user := models.User{
			Name:      "Super Admin",
			Email:     SuperAdminEmail,
			Password:  hash,
			Role:      models.RoleSuperAdmin,
			AccountID: &account.ID,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
