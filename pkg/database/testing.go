package database

import (
	"context"
	"os"
	"testing"
	"time"

	"ridedeck/pkg/logger"
)

// NewTestMongoDB connects to MONGO_TEST_URI (default localhost), drops and
// migrates a throwaway database, and skips the test when no server answers.
func NewTestMongoDB(t *testing.T, dbName string) *MongoDB {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx := context.Background()
	db, err := NewMongoDB(ctx, &DatabaseConfig{
		URI:            uri,
		Database:       dbName,
		ConnectTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	if err := db.Database.Drop(ctx); err != nil {
		t.Fatalf("failed to drop test database: %v", err)
	}
	if err := NewMigrator(db.Database, logger.Discard()).Up(ctx); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Database.Drop(context.Background())
		_ = db.Close(context.Background())
	})

	return db
}
