package main

// Run database migrations:
//   go run ./cmd/migrate [up|down|status]

import (
	"context"
	"log"
	"os"

	"doctoc-backend/internal/shared/config"
	"doctoc-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, command); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
}
