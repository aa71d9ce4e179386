// Command create-admin adds a dashboard operator.
//
//	create-admin -username owner
//
// The password is read from ADMIN_PASSWORD so it stays out of shell history.
// DATABASE_URL is read from the environment or a .env file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/pricing"
	"github.com/pkordes/car-rental/backend/internal/repo"
	"github.com/pkordes/car-rental/backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	username := flag.String("username", "", "operator login name (required)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if err := run(*username, os.Getenv("ADMIN_PASSWORD"), os.Getenv("DATABASE_URL"), logger); err != nil {
		fmt.Fprintln(os.Stderr, "create-admin:", err)
		os.Exit(1)
	}
}

func run(username, password, dsn string, log *slog.Logger) error {
	if username == "" {
		return errors.New("-username is required")
	}
	if password == "" {
		return errors.New("ADMIN_PASSWORD must be set")
	}
	if dsn == "" {
		return errors.New("DATABASE_URL must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	// Sessions are never issued here, so no signing secret is needed.
	admins := service.NewAdminService(repo.NewAdminRepo(pool), nil, 0, pricing.SystemClock{}, log)
	u, err := admins.CreateAdmin(ctx, username, password)
	if errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("username %q is already taken", username)
	}
	if err != nil {
		return err
	}

	fmt.Printf("created admin %s (%s)\n", u.Username, u.ID)
	return nil
}
