// Package testutil provides helpers for integration tests that need a real
// Postgres or Redis instance. Tests that call these helpers skip themselves
// when the backing infrastructure is not reachable, unless TEST_REQUIRE_DB or
// TEST_REQUIRE_INFRA is set, in which case they fail instead.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/draftforge/discovery-engine/internal/migrate"

	// Import pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// TestDBConfig holds configuration for the test database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig returns default test database configuration.
// Defaults to port 55432 (local test DB from docker-compose test profile).
// CI/CD environments should set TEST_DB_PORT=5432 explicitly.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     getEnvOrDefault("TEST_DB_HOST", "localhost"),
		Port:     getEnvOrDefault("TEST_DB_PORT", "55432"),
		User:     getEnvOrDefault("TEST_DB_USER", "draftforge"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "draftforge"),
		DBName:   getEnvOrDefault("TEST_DB_NAME", "draftforge_test"),
	}
}

// DSN renders the configuration as a Postgres connection URL.
func (c TestDBConfig) DSN() string {
	hostPort := net.JoinHostPort(c.Host, c.Port)
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.User, c.Password, hostPort, c.DBName)
}

// SetupTestDB opens a connection to the test database, applies migrations,
// and clears all tables. The test is skipped when the database is not
// reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	SkipIfNoTestDB(t)

	cfg := DefaultTestDBConfig()
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := migrate.Run(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("migrate test database: %v", err)
	}

	CleanupTestDB(t, db)
	return db
}

// CleanupTestDB removes all rows from every table, children before parents.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	tables := []string{
		"job_activities",
		"job_edits",
		"job_reports",
		"jobs",
	}
	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("clean table %s: %v", table, err)
		}
	}
}

// TeardownTestDB closes the test database connection.
func TeardownTestDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := db.Close(); err != nil {
		t.Errorf("close test database: %v", err)
	}
}

// WithTestDB runs fn against a migrated, cleaned test database and tears it
// down afterwards.
func WithTestDB(t *testing.T, fn func(db *sql.DB)) {
	t.Helper()
	db := SetupTestDB(t)
	defer TeardownTestDB(t, db)
	fn(db)
}

// SkipIfNoTestDB skips the test unless a test database is reachable. With
// TEST_REQUIRE_DB or TEST_REQUIRE_INFRA set the test fails instead of
// skipping, so CI cannot silently pass without coverage.
func SkipIfNoTestDB(t *testing.T) {
	t.Helper()

	cfg := DefaultTestDBConfig()
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		skipOrFail(t, fmt.Sprintf("open test database: %v", err))
		return
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		skipOrFail(t, fmt.Sprintf("test database not reachable at %s:%s: %v", cfg.Host, cfg.Port, err))
	}
}

func skipOrFail(t *testing.T, msg string) {
	t.Helper()
	if envBool("TEST_REQUIRE_DB") || envBool("TEST_REQUIRE_INFRA") {
		t.Fatal(msg)
	}
	t.Skip(msg)
}

// TestTime is a fixed instant used wherever tests need deterministic clocks.
var TestTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// FixedTimeFunc returns a time provider pinned to TestTime.
func FixedTimeFunc() func() time.Time {
	return func() time.Time { return TestTime }
}

// GetTestRedisAddr returns the test Redis address from TEST_REDIS_ADDR, or
// the local docker-compose default.
func GetTestRedisAddr() string {
	return getEnvOrDefault("TEST_REDIS_ADDR", "localhost:56379")
}

// SetupTestRedis connects to the test Redis instance on an isolated logical
// database, flushes it, and registers cleanup. The test is skipped when Redis
// is unreachable unless TEST_REQUIRE_INFRA is set.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := GetTestRedisAddr()
	locker := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := locker.Ping(ctx).Err(); err != nil {
		_ = locker.Close()
		if envBool("TEST_REQUIRE_INFRA") {
			t.Fatalf("test redis not reachable at %s: %v", addr, err)
		}
		t.Skipf("test redis not reachable at %s: %v", addr, err)
		return nil
	}

	db, unlock, err := acquireTestRedisDB(ctx, locker)
	if err != nil {
		_ = locker.Close()
		t.Fatalf("acquire test redis database: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flush test redis db %d: %v", db, err)
	}

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
		unlock()
		_ = locker.Close()
	})
	return client
}

// acquireTestRedisDB claims one of the non-default logical databases with a
// short-lived lock key so parallel test packages do not share keyspaces.
func acquireTestRedisDB(ctx context.Context, locker *redis.Client) (int, func(), error) {
	for db := 1; db <= 15; db++ {
		key := fmt.Sprintf("draftforge:testutil:db_lock:%d", db)
		ok, err := locker.SetNX(ctx, key, os.Getpid(), 5*time.Minute).Result()
		if err != nil {
			return 0, nil, err
		}
		if ok {
			unlock := func() {
				_ = locker.Del(context.Background(), key).Err()
			}
			return db, unlock, nil
		}
	}
	return 0, nil, fmt.Errorf("no free test redis database (1-15)")
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v := os.Getenv(key)
	return v == "1" || v == "true" || v == "yes"
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }

// TimePtr returns a pointer to ts.
func TimePtr(ts time.Time) *time.Time { return &ts }
