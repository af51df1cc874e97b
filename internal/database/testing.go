package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/sharpline/internal/config"
)

// SetupTestDB creates a test database connection and verifies it. Tests are
// skipped when SHARPLINE_TEST_DATABASE_URL points nowhere.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	if os.Getenv("SHARPLINE_TEST_DATABASE_URL") == "" {
		t.Skip("SHARPLINE_TEST_DATABASE_URL not set; skipping database test")
	}

	cfg, err := config.LoadWithDefaults("../../config/config.test.yaml")
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	verifyCtx, verifyCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer verifyCancel()

	if err := db.Ping(verifyCtx); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the database connection cleanly
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()
	db.Close()
}
