package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/verity/backend/internal/config"
	"github.com/verity/backend/internal/database"
	"github.com/verity/backend/internal/logger"
	"github.com/verity/backend/internal/seed"
)

func main() {
	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var run func(*seed.Seeder, context.Context) error
	switch command {
	case "dev":
		run = (*seed.Seeder).SeedDev
	case "test":
		run = (*seed.Seeder).SeedTest
	case "clean":
		run = (*seed.Seeder).Clean
	default:
		fmt.Println("Usage: seed [dev|test|clean]")
		fmt.Println("  dev   - Seed development database with realistic data")
		fmt.Println("  test  - Seed test database with minimal data")
		fmt.Println("  clean - Remove all seed data (use with caution)")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Initialize(logger.Options{Level: cfg.Log.Level}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Close()

	if err := database.Initialize(cfg.Database); err != nil {
		logger.FatalWithFields("Failed to connect to database", err)
	}
	defer database.Close()

	if err := database.Migrate(database.DB); err != nil {
		logger.FatalWithFields("Migration failed", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	logger.Log.Info("Seeding database: " + command)
	if err := run(seed.NewSeeder(database.DB), ctx); err != nil {
		logger.FatalWithFields("Seeding failed", err)
	}
	logger.Log.Info("Seed command completed: " + command)
}
