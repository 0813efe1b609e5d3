// Package sqlite implements the repository interfaces on a single SQLite file.
//
// The driver is modernc.org/sqlite, a pure Go port, so the binary builds
// without cgo. Rows are scanned with sqlx and statements are composed with
// squirrel.
//
// ONE CONNECTION:
// The pool is capped at one connection: the journal has exactly one writer,
// and an in-memory database (":memory:") only exists on the connection that
// created it. Anything that reads rows and then writes (the content
// migration) must finish reading before it writes, or it deadlocks on the
// pool.
//
// CASE FOLDING:
// SQLite's built-in lower(), LIKE and COLLATE NOCASE only know ASCII, while
// tags and moods are deduplicated with Unicode lowercasing. init registers
// query.FoldFunc with the driver so search predicates fold "Été" and "été"
// alike.
//
// MIGRATIONS:
// Schema changes are idempotent steps run on every open (CREATE ... IF NOT
// EXISTS, addColumnIfNotExists). Data rewrites that must only happen once
// are gated on PRAGMA user_version, see schemaVersion.
package sqlite

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	sqlitedriver "modernc.org/sqlite"

	"github.com/sakif/moodjournal/internal/apperror"
	"github.com/sakif/moodjournal/internal/query"
	"github.com/sakif/moodjournal/internal/sanitize"
)

// schemaVersion is the user_version after every one-time data migration ran.
//
//	0 → 1: entry content reduced from editor HTML to plain text
const schemaVersion = 1

func init() {
	// Registered functions are attached to every connection opened afterwards.
	if err := sqlitedriver.RegisterDeterministicScalarFunction(query.FoldFunc, 1, casefold); err != nil {
		panic(fmt.Sprintf("sqlite: registering %s: %v", query.FoldFunc, err))
	}
}

// casefold lowercases TEXT (and BLOB) with Unicode rules. NULL stays NULL and
// other types pass through unchanged.
func casefold(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// DB wraps the connection pool and implements the repository interfaces.
//
// now is the clock behind created_at and updated_at; tests pin it to get
// deterministic ordering.
type DB struct {
	conn *sqlx.DB
	now  func() time.Time
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/journal.db" → file-based database (persistent)
//   - ":memory:"        → in-memory database (tests)
//
// PRAGMAS:
// WAL lets readers (an open CLI, the HTTP server) proceed during a write,
// and busy_timeout makes a second process wait for the lock instead of
// failing with SQLITE_BUSY straight away.
func New(dbPath string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Ping checks that the database is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return apperror.StorageFailed("ping", err)
	}
	return nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// timestamp renders the current time in the stored UTC text format.
func (db *DB) timestamp() string {
	return db.now().UTC().Format(timestampLayout)
}

// migrate creates missing tables and columns, then runs pending one-time
// data migrations.
//
// PHASES:
//  1. journal_entries with its date_key unique index
//  2. primary_category and tags, added to databases from the first release
//  3. custom_tags
//  4. calendar_events
//  5. one-time rewrites gated on user_version
func (db *DB) migrate() error {
	// Phase 1: entries
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS journal_entries (
			id              TEXT PRIMARY KEY,
			date_key        TEXT NOT NULL,
			title           TEXT NOT NULL,
			content         TEXT NOT NULL DEFAULT '',
			has_pin         INTEGER NOT NULL DEFAULT 0,
			pin             TEXT,
			primary_mood    TEXT NOT NULL,
			secondary_moods TEXT NOT NULL DEFAULT '',
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS ux_journal_entries_date_key ON journal_entries(date_key);
		CREATE INDEX IF NOT EXISTS idx_journal_entries_updated_at ON journal_entries(updated_at);
		CREATE INDEX IF NOT EXISTS idx_journal_entries_created_at ON journal_entries(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating journal_entries table: %w", err)
	}

	// Phase 2: category and tags arrived after the first release.
	if err := db.addColumnIfNotExists("journal_entries", "primary_category",
		"TEXT NOT NULL DEFAULT 'Positive'"); err != nil {
		return fmt.Errorf("adding primary_category to journal_entries: %w", err)
	}
	if err := db.addColumnIfNotExists("journal_entries", "tags",
		"TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding tags to journal_entries: %w", err)
	}

	// Phase 3: custom tag vocabulary
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS custom_tags (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			name_normalized TEXT NOT NULL UNIQUE,
			created_at      TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating custom_tags table: %w", err)
	}

	// Phase 4: calendar events. start_at is RFC 3339 in UTC, so text order
	// is time order and a month is a [from, to) range scan.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS calendar_events (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			start_at   TEXT NOT NULL,
			end_at     TEXT,
			all_day    INTEGER NOT NULL DEFAULT 1,
			notes      TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_calendar_events_start_at ON calendar_events(start_at);
	`)
	if err != nil {
		return fmt.Errorf("creating calendar_events table: %w", err)
	}

	// Phase 5: one-time data rewrites
	return db.migrateData()
}

// migrateData runs every data migration newer than the stored user_version.
//
// ONCE ONLY:
// Decoded plain text may contain "<". Reducing it as HTML a second time
// would strip it, so each rewrite runs exactly once per database.
func (db *DB) migrateData() error {
	var version int
	if err := db.conn.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("reading user_version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	if version < 1 {
		if err := db.migratePlainTextContent(); err != nil {
			return fmt.Errorf("converting entry content to plain text: %w", err)
		}
	}

	// PRAGMA does not take bound parameters.
	if _, err := db.conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("setting user_version: %w", err)
	}
	return nil
}

// migratePlainTextContent reduces entry content stored by older editors as
// HTML to the plain text new saves produce. Rows without markup are left
// alone.
func (db *DB) migratePlainTextContent() error {
	var rows []struct {
		ID      string `db:"id"`
		Content string `db:"content"`
	}
	err := db.conn.Select(&rows,
		`SELECT id, content FROM journal_entries WHERE content LIKE '%<%' OR content LIKE '%&%'`)
	if err != nil {
		return err
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range rows {
		plain := sanitize.PlainText(r.Content)
		if plain == r.Content {
			continue
		}
		if _, err := tx.Exec(`UPDATE journal_entries SET content = ? WHERE id = ?`, plain, r.ID); err != nil {
			return fmt.Errorf("updating entry %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
// ALTER TABLE errors on a duplicate column, so pragma_table_info is checked first.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}
