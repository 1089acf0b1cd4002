package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/pokebase/pokebase-api/config"
	"github.com/pokebase/pokebase-api/pkg/helpers"
)

// Seeds a verified demo user so the collection routes can be tried without
// the email flow. Run the sync first to have cards to add.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@pokebase.local"
	password := "password123"
	name := "Demo Trainer"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password, name, email_verified)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		RETURNING id
	`, email, hash, name).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", id, email, name, password)

	var sets, cards int
	if err := db.QueryRow(`SELECT (SELECT count(*) FROM sets), (SELECT count(*) FROM cards)`).Scan(&sets, &cards); err != nil {
		log.Fatalf("failed to count catalog: %v", err)
	}
	fmt.Printf("catalog: %d sets, %d cards\n", sets, cards)
	if cards == 0 {
		fmt.Println("catalog is empty; run `go run ./cmd/sync` to import it")
	}
}
