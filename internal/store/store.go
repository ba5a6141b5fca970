package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - no schema
// 1 - stroke_counts table
// 2 - updated_seq column recording the save that last wrote each row
const currentSchemaVersion = 2

// Store keeps the stroke-count cache in SQLite.
type Store struct {
	db   *sql.DB
	path string
	seq  int64
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode so a reader can inspect the cache during a run
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := db.QueryRow("SELECT COALESCE(MAX(updated_seq), 0) FROM stroke_counts").Scan(&s.seq); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read save sequence: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Location returns the database path.
func (s *Store) Location() string {
	return s.path
}

// Load reads every cached count. Query failures load as an empty cache.
func (s *Store) Load() *Cache {
	c := NewCache()
	rows, err := s.db.Query("SELECT kanji, strokes FROM stroke_counts ORDER BY kanji ASC")
	if err != nil {
		return c
	}
	defer rows.Close()

	for rows.Next() {
		var kanji string
		var strokes int
		if err := rows.Scan(&kanji, &strokes); err != nil {
			return NewCache()
		}
		c.Put(kanji, strokes)
	}
	if rows.Err() != nil {
		return NewCache()
	}
	return c
}

// Save upserts every entry of c in a single transaction.
// Rows for characters not in c are left alone; the cache never shrinks.
func (s *Store) Save(c *Cache) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save cache: begin: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	stmt, err := tx.Prepare(`
		INSERT INTO stroke_counts (kanji, strokes, updated_seq)
		VALUES (?, ?, ?)
		ON CONFLICT(kanji) DO UPDATE SET
			strokes = excluded.strokes,
			updated_seq = excluded.updated_seq
	`)
	if err != nil {
		return fmt.Errorf("save cache: prepare: %w", err)
	}
	defer stmt.Close()

	seq := s.seq + 1
	for _, kanji := range c.Keys() {
		strokes, _ := c.Get(kanji)
		if _, err := stmt.Exec(kanji, strokes, seq); err != nil {
			return fmt.Errorf("save cache: %q: %w", kanji, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save cache: commit: %w", err)
	}
	s.seq = seq
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 2 {
		if err := migrateToV2(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV2 adds the updated_seq column. schema.sql creates the v1 table
// shape, so fresh databases go through this path too.
func migrateToV2(db *sql.DB) error {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM pragma_table_info('stroke_counts') WHERE name = 'updated_seq'",
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("migrate v2: inspect columns: %w", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := db.Exec("ALTER TABLE stroke_counts ADD COLUMN updated_seq INTEGER NOT NULL DEFAULT 0"); err != nil {
		return fmt.Errorf("migrate v2: add updated_seq: %w", err)
	}
	return nil
}

// Generation returns the sequence number of the latest save.
func (s *Store) Generation() int64 {
	return s.seq
}
