// Command seed creates the bootstrap admin account with an approved KYC
// profile. Safe to re-run: an existing admin is left untouched.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/arthamatics/arthamatics-be/internal/config"
	"github.com/arthamatics/arthamatics-be/internal/errs"
	"github.com/arthamatics/arthamatics-be/internal/migrate"
	"github.com/arthamatics/arthamatics-be/internal/models"
	"github.com/arthamatics/arthamatics-be/internal/storage/postgres"
)

const (
	adminEmail    = "admin@arthamatics.in"
	adminPassword = "admin123"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("migrate up: %v", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	store := postgres.NewStore(pool)
	defer store.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	admin, err := store.CreateUser(ctx,
		models.User{
			Email:        adminEmail,
			Role:         models.RoleAdmin,
			PasswordHash: string(hash),
		},
		models.Customer{
			FirstName: "Admin",
			LastName:  "User",
			Phone:     "1234567890",
			Address:   "Admin Address",
			KYCStatus: models.KYCApproved,
		},
	)
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			log.Printf("admin user %s already exists", adminEmail)
			return
		}
		log.Fatalf("create admin user: %v", err)
	}

	log.Printf("admin user created: id=%d email=%s", admin.ID, admin.Email)
}
