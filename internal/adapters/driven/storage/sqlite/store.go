package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/custodia-labs/ailab/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ailab/internal/logger"
)

// DatabaseFile is created inside the data directory.
const DatabaseFile = "vectors.db"

// Store owns the connection. Indexes handed out by VectorIndex share it.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) dataDir/vectors.db and brings its
// schema up to date. An empty dataDir means ~/.ailab/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ailab", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, DatabaseFile)
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db, migrations.FS); err != nil {
		return nil, errors.Join(fmt.Errorf("running migrations: %w", err), db.Close())
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database. Indexes opened from the store stop working.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// VectorIndex returns the index called name, storing vectors of length dims.
func (s *Store) VectorIndex(name string, dims int) *VectorIndex {
	return &VectorIndex{db: s.db, name: name, dimensions: dims}
}

// migration is one NNN_name.up.sql script.
type migration struct {
	version int
	file    string
}

// pendingMigrations lists the up scripts in fsys newer than current, oldest
// first. Files not starting with a number are skipped.
func pendingMigrations(fsys fs.FS, current int) ([]migration, error) {
	files, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}

	var out []migration
	for _, f := range files {
		var v int
		if _, err := fmt.Sscanf(f, "%d_", &v); err != nil || v <= current {
			continue
		}
		out = append(out, migration{version: v, file: f})
	}
	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}

// migrate applies each pending script and its schema_migrations row in one
// transaction, so a failed script leaves the version unrecorded.
func migrate(db *sql.DB, fsys fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	pending, err := pendingMigrations(fsys, current)
	if err != nil {
		return err
	}
	for _, m := range pending {
		script, err := fs.ReadFile(fsys, m.file)
		if err != nil {
			return err
		}
		if err := apply(db, m.version, string(script)); err != nil {
			return fmt.Errorf("%s: %w", m.file, err)
		}
		logger.Debug("Applied migration %s", strings.TrimSuffix(m.file, ".up.sql"))
	}
	return nil
}

func apply(db *sql.DB, version int, script string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}
