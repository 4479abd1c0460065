package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/harentsoaR/campus-api/internal/config"
	"github.com/harentsoaR/campus-api/internal/models"
)

const seedPasswordBytes = 16

// SeedAdmin creates the first admin when no admin exists, since registering
// an admin requires an authenticated admin. When no password is configured
// a random one is generated and logged. It returns the password used, or ""
// when seeding was skipped.
func SeedAdmin(ctx context.Context, admins *AccountService[models.Admin, *models.Admin], seed config.SeedAdmin, logger *slog.Logger) (string, error) {
	count, err := admins.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking admin count: %w", err)
	}
	if count > 0 {
		logger.Info("admins exist, skipping admin seed")
		return "", nil
	}

	password := seed.Password
	generated := password == ""
	if generated {
		passwordBytes := make([]byte, seedPasswordBytes)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("generating seed password: %w", err)
		}
		password = hex.EncodeToString(passwordBytes)
	}

	admin := &models.Admin{
		User: models.User{
			FullName:   seed.FullName,
			Username:   seed.Username,
			Email:      seed.Email,
			IsVerified: true,
		},
	}
	if err := admins.Create(ctx, admin, password); err != nil {
		return "", fmt.Errorf("creating seed admin: %w", err)
	}

	if generated {
		logger.Warn("seed admin account created",
			"username", seed.Username,
			"password", password,
			"action_required", "change this password immediately",
		)
	} else {
		logger.Info("seed admin account created", "username", seed.Username)
	}
	return password, nil
}
