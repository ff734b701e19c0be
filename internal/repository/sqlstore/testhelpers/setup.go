package testhelpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/transit-favorites/internal/repository/sqlstore"
	"go.uber.org/zap"
)

// TestDB represents a test database connection
type TestDB struct {
	DB     *sqlstore.DB
	Logger *zap.Logger
}

// SetupSQLite opens a private in-memory SQLite database with the schema applied
func SetupSQLite(t *testing.T) *TestDB {
	t.Helper()

	logger := zap.NewNop()
	db, err := sqlstore.NewSQLite(sqlstore.MemoryPath, logger)
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		t.Fatalf("Failed to migrate sqlite: %v", err)
	}

	tdb := &TestDB{DB: db, Logger: logger}
	t.Cleanup(tdb.Close)
	return tdb
}

// SetupPostgres connects to the test PostgreSQL server described by TEST_DB_*
// environment variables. The test is skipped when the server is unreachable.
func SetupPostgres(t *testing.T) *TestDB {
	t.Helper()

	host := getEnv("TEST_DB_HOST", "localhost")
	port := getEnv("TEST_DB_PORT", "5433")
	user := getEnv("TEST_DB_USER", "postgres")
	password := getEnv("TEST_DB_PASSWORD", "postgres")
	dbname := getEnv("TEST_DB_NAME", "favorites_test")
	sslmode := getEnv("TEST_DB_SSLMODE", "disable")

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s connect_timeout=2",
		host, port, user, password, dbname, sslmode,
	)

	var conn *sqlx.DB
	var err error
	maxRetries := 3
	retryDelay := 200 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		conn, err = sqlx.Connect("postgres", connStr)
		if err == nil {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
			retryDelay *= 2
		}
	}
	if err != nil {
		t.Skipf("PostgreSQL not available for integration tests: %v", err)
	}

	logger := zap.NewNop()
	db := sqlstore.NewDBForTest(conn, sqlstore.DriverPostgres, logger)
	if err := db.Migrate(context.Background()); err != nil {
		conn.Close()
		t.Fatalf("Failed to migrate postgres: %v", err)
	}

	tdb := &TestDB{DB: db, Logger: logger}
	if err := tdb.Cleanup(context.Background()); err != nil {
		tdb.Close()
		t.Fatalf("Failed to cleanup postgres: %v", err)
	}
	t.Cleanup(tdb.Close)
	return tdb
}

// Close closes the database connection
func (tdb *TestDB) Close() {
	if tdb.DB != nil {
		tdb.DB.DB.Close()
	}
}

// Cleanup removes all favorites, slot versions and saved locations
func (tdb *TestDB) Cleanup(ctx context.Context) error {
	for _, table := range []string{"favorite_locations", "favorite_slot_versions", "saved_locations"} {
		if _, err := tdb.DB.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("cleanup %s: %w", table, err)
		}
	}
	return nil
}

// getEnv gets environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
