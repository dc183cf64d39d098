package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"kukacrm/internal/logging"

	_ "modernc.org/sqlite"
)

// DefaultDriver is the pure-Go SQLite driver registered by modernc.org/sqlite.
const DefaultDriver = "sqlite"

// CgoDriver is the database/sql name registered by mattn/go-sqlite3. It is
// only available in cgo builds.
const CgoDriver = "sqlite3"

// SQLiteBackend stores blobs in a single kv_blobs table.
type SQLiteBackend struct {
	db     *sql.DB
	path   string
	driver string
}

// OpenSQLite opens (creating if needed) the database at path using the named
// database/sql driver. An empty driver selects DefaultDriver. ":memory:" is
// accepted for tests.
func OpenSQLite(driver, path string) (*SQLiteBackend, error) {
	timer := logging.StartTimer(logging.CategoryStore, "OpenSQLite")
	defer timer.Stop()

	if driver == "" {
		driver = DefaultDriver
	}
	if !driverRegistered(driver) {
		if driver == CgoDriver {
			return nil, fmt.Errorf("sqlite driver %q requires a cgo build (CGO_ENABLED=1)", driver)
		}
		return nil, fmt.Errorf("sqlite driver %q not available in this build", driver)
	}

	logging.Store("Opening %s backend at %s", driver, path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.StoreError("Failed to create directory %s: %v", dir, err)
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		logging.StoreError("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	b := &SQLiteBackend{db: db, path: path, driver: driver}
	if err := b.initialize(); err != nil {
		logging.StoreError("Failed to initialize schema: %v", err)
		db.Close()
		return nil, err
	}
	return b, nil
}

func (b *SQLiteBackend) initialize() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS kv_blobs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := b.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create kv_blobs table: %w", err)
	}
	return RunMigrations(b.db)
}

func driverRegistered(name string) bool {
	for _, d := range sql.Drivers() {
		if d == name {
			return true
		}
	}
	return false
}

// Driver returns the database/sql driver name in use.
func (b *SQLiteBackend) Driver() string {
	return b.driver
}

// Get implements Backend.
func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx, "SELECT value FROM kv_blobs WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put implements Backend.
func (b *SQLiteBackend) Put(ctx context.Context, key, value string) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv_blobs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	logging.StoreDebug("Closing %s backend at %s", b.driver, b.path)
	return b.db.Close()
}
