// Package testutil provides shared helpers for integration tests.
// Helpers skip the test when TEST_DATABASE_URL is unset, so unit tests run
// without a database.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
)

// NewPool opens a pool against TEST_DATABASE_URL and closes it when the test ends.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewTx begins a transaction that is rolled back when the test ends.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()

	tx, err := NewPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// User is the owner profile SeedUser writes.
type User struct {
	ID     uuid.UUID
	Name   string
	Email  string
	Avatar string
}

// SeedUser inserts a users row. Trips reference their owner by foreign key,
// so every repository test needs at least one.
func SeedUser(t *testing.T, tx pgx.Tx, name string) User {
	t.Helper()

	u := User{
		ID:     uuid.New(),
		Name:   name,
		Email:  name + "@example.com",
		Avatar: "https://cdn.example.com/" + name + ".png",
	}
	_, err := tx.Exec(context.Background(),
		`INSERT INTO users (id, name, email, avatar) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Name, u.Email, u.Avatar)
	if err != nil {
		t.Fatalf("testutil.SeedUser: %v", err)
	}
	return u
}

// SoftDeleteUser flags a seeded user as deleted.
func SoftDeleteUser(t *testing.T, tx pgx.Tx, id uuid.UUID) {
	t.Helper()

	if _, err := tx.Exec(context.Background(),
		`UPDATE users SET is_deleted = true WHERE id = $1`, id); err != nil {
		t.Fatalf("testutil.SoftDeleteUser: %v", err)
	}
}

// NewSQLDB opens a *sql.DB on the pgx driver, for goose.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// MustOpenSQLDB is NewSQLDB for TestMain, where there is no *testing.T.
// Callers close the returned *sql.DB.
func MustOpenSQLDB(dsn string) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: open: " + err.Error())
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		panic("testutil.MustOpenSQLDB: ping: " + err.Error())
	}
	return db
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
