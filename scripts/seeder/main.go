package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/baechuer/church-service/internal/config"
	"github.com/baechuer/church-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/church-service/internal/security"
	"github.com/baechuer/church-service/internal/seed"
)

// Loads the development fixture into Postgres.
// Only runs when APP_ENV=dev AND ALLOW_SEED=1.

func main() {
	if os.Getenv("APP_ENV") != "dev" || os.Getenv("ALLOW_SEED") != "1" {
		log.Fatal("Seed only allowed in dev with ALLOW_SEED=1")
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		log.Fatal("SEED_PASSWORD is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DB.Driver != config.StoreDriverPostgres {
		log.Fatal("seeder needs STORE_DRIVER=postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	repos := postgres.New(db)
	res, err := seed.Load(ctx, seed.Stores{
		Users:   repos.Users,
		Events:  repos.Events,
		Sermons: repos.Sermons,
	}, security.NewBcryptHasher(cfg.Auth.BcryptCost), password, time.Now())
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("Inserted %d users, %d events, %d sermons", res.Users, res.Events, res.Sermons)
}
