package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/zjgaokao/major-advisor/internal/config"
)

const memoryPath = ":memory:"

// DB is the SQLite catalog backend. The schema is created on open; records
// are loaded with Seed and only read afterwards.
type DB struct {
	conn *sql.DB
	path string
}

// New opens (or creates) the database at dbPath and initializes the schema.
// ":memory:" keeps the database in process on a single connection, since
// every SQLite connection to ":memory:" would otherwise see its own database.
func New(ctx context.Context, dbPath string) (*DB, error) {
	inMemory := dbPath == memoryPath
	if !inMemory {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if inMemory {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
	} else {
		conn.SetMaxOpenConns(4)
		conn.SetMaxIdleConns(4)
		conn.SetConnMaxLifetime(config.DatabaseConnMaxLifetime)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := InitSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// dsn attaches pragmas as DSN parameters so every pooled connection gets
// them, not just the first one.
func dsn(dbPath string) string {
	pragmas := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", config.DatabaseBusyTimeout.Milliseconds()),
		"_pragma=foreign_keys(1)",
	}
	if dbPath != memoryPath {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)", "_pragma=synchronous(NORMAL)")
	}
	return dbPath + "?" + strings.Join(pragmas, "&")
}

// NewTestDB creates an empty in-memory database for tests.
func NewTestDB() (*DB, error) {
	return New(context.Background(), memoryPath)
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Backend returns "sqlite".
func (db *DB) Backend() string {
	return "sqlite"
}
