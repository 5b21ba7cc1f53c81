package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/verity/backend/internal/config"
	"github.com/verity/backend/internal/database"
	"github.com/verity/backend/internal/logger"
	"github.com/verity/backend/internal/repository"
	"github.com/verity/backend/internal/social"
	"go.uber.org/zap"
)

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up", "reconcile", "block", "unblock":
	default:
		usage()
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	switch command {
	case "up":
		runMigrationsUp()
	case "reconcile":
		runReconcile(ctx)
	case "block", "unblock":
		if len(os.Args) < 3 {
			fmt.Printf("Usage: migrate %s <username>\n", command)
			os.Exit(1)
		}
		setBlocked(ctx, os.Args[2], command == "block")
	}
}

func usage() {
	fmt.Println("Usage: migrate [up|reconcile|block|unblock]")
	fmt.Println("  up                  - Run all pending migrations")
	fmt.Println("  reconcile           - Recompute follower, post, like and comment counters")
	fmt.Println("  block <username>    - Block an account from signing in and being found")
	fmt.Println("  unblock <username>  - Lift a block")
}

func runMigrationsUp() {
	logger.Log.Info("Running migrations...")
	if err := database.Migrate(database.DB); err != nil {
		logger.FatalWithFields("Migration failed", err)
	}
	logger.Log.Info("All migrations completed successfully")
}

func runReconcile(ctx context.Context) {
	// Media is never touched while recounting
	svc := social.NewService(repository.NewStore(database.DB), nil)

	result, err := svc.ReconcileCounters(ctx)
	if err != nil {
		logger.FatalWithFields("Reconcile failed", err)
	}
	fmt.Printf("Reconciled counters: %d users, %d posts\n", result.Users, result.Posts)
}

func setBlocked(ctx context.Context, username string, blocked bool) {
	users := repository.NewUserRepository(database.DB)

	user, err := users.GetUserByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		logger.FatalWithFields("User lookup failed", err)
	}
	if err := users.SetBlocked(ctx, user.ID, blocked); err != nil {
		logger.FatalWithFields("Failed to update block flag", err)
	}

	logger.Log.Info("Block flag updated",
		logger.WithUserID(user.ID),
		logger.WithUsername(user.Username),
		zap.Bool("blocked", blocked),
	)
}
