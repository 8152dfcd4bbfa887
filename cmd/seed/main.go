package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/venduo/marketplace-identity/config"
	"github.com/venduo/marketplace-identity/internal/domain/entity"
	"github.com/venduo/marketplace-identity/pkg/helpers"
)

// Seeds a bootstrap administrator so the approval and admin endpoints are
// usable on a fresh database. Idempotent: re-running is a no-op.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := helpers.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, username, password_hash, role, is_approved)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT DO NOTHING
		RETURNING id
	`, cfg.SeedAdminEmail, "admin", hash, entity.RoleAdmin).Scan(&id)
	if err == sql.ErrNoRows {
		fmt.Println("admin already seeded, nothing to do")
		return
	}
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s\n", id, cfg.SeedAdminEmail)
}
