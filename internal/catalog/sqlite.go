package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/brandonestevez/walter/internal/model"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// SQLiteStore implements Store using a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at dbPath.
// It auto-creates the parent directory (e.g. ~/.walter/) and runs
// schema migrations to ensure the database is up to date.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection for WAL mode simplicity.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// migrate runs schema migrations up to the current version.
func (s *SQLiteStore) migrate() error {
	// Create version table if it doesn't exist.
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}

	var ver int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&ver)
	if err == sql.ErrNoRows {
		ver = 0
	} else if err != nil {
		return fmt.Errorf("read version: %w", err)
	}

	if ver < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLiteStore) migrateV1() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id             TEXT PRIMARY KEY,
			path           TEXT NOT NULL UNIQUE,
			name           TEXT NOT NULL,
			format         TEXT NOT NULL,
			feature_count  INTEGER NOT NULL DEFAULT 0,
			geometry_types TEXT,
			crs            TEXT,
			tags           TEXT,
			description    TEXT,
			learned_at     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_format ON datasets(format)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_learned_at ON datasets(learned_at)`,
		`INSERT OR REPLACE INTO schema_version (version) VALUES (1)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate v1: %w", err)
		}
	}
	return nil
}

// Save inserts an entry, or replaces the existing entry for the same
// path. Re-learning a dataset keeps its original ID. Empty ID and
// LearnedAt fields are filled in.
func (s *SQLiteStore) Save(ctx context.Context, e model.CatalogEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.LearnedAt.IsZero() {
		e.LearnedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO datasets (id, path, name, format, feature_count, geometry_types, crs, tags, description, learned_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			format = excluded.format,
			feature_count = excluded.feature_count,
			geometry_types = excluded.geometry_types,
			crs = excluded.crs,
			tags = excluded.tags,
			description = excluded.description,
			learned_at = excluded.learned_at`,
		e.ID,
		e.Path,
		e.Name,
		e.Format,
		e.FeatureCount,
		jsonList(e.GeometryTypes),
		nullableString(e.CRS),
		jsonList(e.Tags),
		nullableString(e.Description),
		e.LearnedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	return nil
}

// List returns entries matching the given filter options, newest first.
func (s *SQLiteStore) List(ctx context.Context, opts ListOpts) ([]model.CatalogEntry, error) {
	query := "SELECT id, path, name, format, feature_count, geometry_types, crs, tags, description, learned_at FROM datasets WHERE 1=1"
	var args []any

	if opts.Format != "" {
		query += " AND format = ?"
		args = append(args, opts.Format)
	}
	query += " ORDER BY learned_at DESC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var entries []model.CatalogEntry
	for rows.Next() {
		var e model.CatalogEntry
		var types, crs, tags, desc sql.NullString
		var learnedAt string
		if err := rows.Scan(&e.ID, &e.Path, &e.Name, &e.Format, &e.FeatureCount, &types, &crs, &tags, &desc, &learnedAt); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		e.GeometryTypes = parseList(types)
		e.CRS = crs.String
		e.Tags = parseList(tags)
		e.Description = desc.String
		t, err := time.Parse(time.RFC3339Nano, learnedAt)
		if err != nil {
			return nil, fmt.Errorf("parse learned_at %q: %w", learnedAt, err)
		}
		e.LearnedAt = t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns an entry by ID or dataset path, or nil if not found.
func (s *SQLiteStore) Get(ctx context.Context, idOrPath string) (*model.CatalogEntry, error) {
	var e model.CatalogEntry
	var types, crs, tags, desc sql.NullString
	var learnedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, path, name, format, feature_count, geometry_types, crs, tags, description, learned_at
		 FROM datasets WHERE id = ? OR path = ?`,
		idOrPath, idOrPath,
	).Scan(&e.ID, &e.Path, &e.Name, &e.Format, &e.FeatureCount, &types, &crs, &tags, &desc, &learnedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dataset: %w", err)
	}
	e.GeometryTypes = parseList(types)
	e.CRS = crs.String
	e.Tags = parseList(tags)
	e.Description = desc.String
	e.LearnedAt, _ = time.Parse(time.RFC3339Nano, learnedAt)
	return &e, nil
}

// Delete removes an entry by ID or dataset path. Returns true if deleted.
func (s *SQLiteStore) Delete(ctx context.Context, idOrPath string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM datasets WHERE id = ? OR path = ?`, idOrPath, idOrPath)
	if err != nil {
		return false, fmt.Errorf("delete dataset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of cataloged datasets.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM datasets").Scan(&n); err != nil {
		return 0, fmt.Errorf("count datasets: %w", err)
	}
	return n, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// nullableString returns nil for empty strings, otherwise the string value.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// jsonList marshals a string list for storage. Empty lists store NULL.
func jsonList(list []string) any {
	if len(list) == 0 {
		return nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return nil
	}
	return string(b)
}

// parseList unmarshals a stored JSON string list. NULL and malformed
// values parse as nil.
func parseList(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(s.String), &list); err != nil {
		return nil
	}
	return list
}
