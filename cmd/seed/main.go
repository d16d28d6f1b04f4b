package main

import (
	"log"
	"os"

	"github.com/wizardlabs/leadforms/internal/config"
	"github.com/wizardlabs/leadforms/internal/database"
	"github.com/wizardlabs/leadforms/internal/logger"
	"github.com/wizardlabs/leadforms/internal/services"
	"github.com/wizardlabs/leadforms/internal/utils"
	"go.uber.org/zap"
)

// Seeds the bootstrap SUPERADMIN login. The password comes from
// SEED_SUPERADMIN_PASSWORD or is generated and printed once.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.L().Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.L().Fatal("failed to run migrations", zap.Error(err))
	}

	password := os.Getenv("SEED_SUPERADMIN_PASSWORD")
	generated := password == ""
	if generated {
		password = utils.GeneratePassword(12)
	}

	created, err := services.SeedSuperAdmin(db, password)
	if err != nil {
		logger.L().Fatal("failed to seed superadmin", zap.Error(err))
	}

	if !created {
		logger.L().Info("superadmin already exists, nothing to do",
			zap.String("email", services.SuperAdminEmail))
		return
	}

	logger.L().Info("superadmin created", zap.String("email", services.SuperAdminEmail))
	if generated {
		// Printed to stdout only, never logged.
		os.Stdout.WriteString("Generated superadmin password: " + password + "\n")
	}
}
