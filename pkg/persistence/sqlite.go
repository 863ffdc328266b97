package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/homewire/homewire-go/pkg/list"
)

const (
	dirPermissions    = 0750
	connectionTimeout = 5 * time.Second
	queryTimeout      = 2 * time.Second
)

const schema = `CREATE TABLE IF NOT EXISTS cells (
	addr  INTEGER PRIMARY KEY,
	value INTEGER NOT NULL
)`

// SQLiteConfig configures a SQLiteStorage.
type SQLiteConfig struct {
	// Path is the database file. The directory is created if needed.
	Path string

	// Size is the number of addressable bytes.
	Size int

	// BusyTimeout is the lock wait in seconds.
	BusyTimeout int
}

// SQLiteStorage is a list.Storage that writes every byte through to a
// SQLite table. Reads are served from an in-memory copy loaded at open.
type SQLiteStorage struct {
	mu    sync.RWMutex
	db    *sql.DB
	cache []byte
	path  string
}

var _ list.Storage = (*SQLiteStorage)(nil)

// OpenSQLiteStorage opens or creates the database. fresh reports whether
// the table held no cells, in which case callers run FirstInit.
func OpenSQLiteStorage(cfg SQLiteConfig) (s *SQLiteStorage, fresh bool, err error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, false, fmt.Errorf("creating database directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL",
		cfg.Path, cfg.BusyTimeout*1000)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, false, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, false, fmt.Errorf("verifying database connection: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, false, fmt.Errorf("creating schema: %w", err)
	}

	s = &SQLiteStorage{db: db, cache: make([]byte, cfg.Size), path: cfg.Path}
	n, err := s.load(ctx)
	if err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, false, err
	}
	return s, n == 0, nil
}

func (s *SQLiteStorage) load(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT addr, value FROM cells")
	if err != nil {
		return 0, fmt.Errorf("loading cells: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var addr, value int
		if err := rows.Scan(&addr, &value); err != nil {
			return 0, fmt.Errorf("scanning cell: %w", err)
		}
		if addr < 0 || addr >= len(s.cache) {
			continue
		}
		s.cache[addr] = byte(value)
		n++
	}
	return n, rows.Err()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Size returns the store size.
func (s *SQLiteStorage) Size() int {
	return len(s.cache)
}

// ReadAt copies bytes out of the cached image.
func (s *SQLiteStorage) ReadAt(addr uint16, p []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := list.CheckRange(len(s.cache), addr, len(p)); err != nil {
		return err
	}
	copy(p, s.cache[addr:])
	return nil
}

// WriteAt stores p in one transaction and updates the cache on commit.
func (s *SQLiteStorage) WriteAt(addr uint16, p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := list.CheckRange(len(s.cache), addr, len(p)); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO cells (addr, value) VALUES (?, ?) ON CONFLICT(addr) DO UPDATE SET value = excluded.value")
	if err != nil {
		return fmt.Errorf("preparing write: %w", err)
	}
	defer stmt.Close()

	for i, b := range p {
		if _, err := stmt.ExecContext(ctx, int(addr)+i, int(b)); err != nil {
			return fmt.Errorf("writing cell %d: %w", int(addr)+i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing write: %w", err)
	}
	copy(s.cache[addr:], p)
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
