package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/filipposta/legacy-premium-api/adapters/persistence"
	"github.com/filipposta/legacy-premium-api/internal/domain/docstore"
	"github.com/filipposta/legacy-premium-api/internal/domain/user"
	"github.com/filipposta/legacy-premium-api/pkg/auth"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

func main() {
	fmt.Println("adding admin account into document store...")

	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	dsn := os.Getenv("DB_DSN")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	store, err := persistence.NewPostgresDocStore(pool, logger.NewNop())
	if err != nil {
		log.Fatalf("cannot init document store: %v", err)
	}

	id := uuid.NewString()
	existing, err := store.Query(context.Background(), docstore.CollectionUsers,
		docstore.Filter{Field: "email", Value: adminEmail}, 1)
	if err != nil {
		log.Fatalf("cannot check for existing admin: %v", err)
	}
	if len(existing) > 0 {
		id = existing[0].ID
	}

	err = store.Set(context.Background(), docstore.CollectionUsers, id, map[string]any{
		"username":     adminUsername,
		"displayName":  adminUsername,
		"email":        adminEmail,
		"passwordHash": hash,
		"role":         user.RoleAdmin,
		"privacy":      user.PrivacyPrivate,
		"joinedAt":     time.Now().UTC().Format(time.RFC3339),
	}, true)
	if err != nil {
		log.Fatalf("cannot add admin: %v", err)
	}

	fmt.Printf("added or updated admin '%s' successfully!\n", adminEmail)
}
