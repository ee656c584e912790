package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/ben-haas/clawhouse/internal/database"
	"github.com/ben-haas/clawhouse/internal/retry"
)

// DisableEnv turns recording off when set to "1".
const DisableEnv = "CLAWHOUSE_DISABLE_HISTORY"

// Disabled reports whether recording is turned off for this process.
func Disabled() bool {
	return os.Getenv(DisableEnv) == "1"
}

// Repository defines the persistence interface for history entries.
type Repository interface {
	Save(entry *Entry) error
	List(limit int) ([]Entry, error)
	ListByCommand(command string, limit int) ([]Entry, error)
	Prune(olderThan time.Duration) (int64, error)
	PruneWith(opts PruneOptions) (int64, error)
	Close() error
}

// DefaultRetention is how long entries are kept when no age is given.
const DefaultRetention = 90 * 24 * time.Hour

// PruneOptions selects the entries PruneWith deletes. Only entries older
// than OlderThan are ever considered.
type PruneOptions struct {
	OlderThan time.Duration
	// FailedOnly limits deletion to renders that ended in an error.
	FailedOnly bool
	// KeepDigests spares the latest entry recorded for each artifact
	// digest, so every artifact ever rendered stays traceable.
	KeepDigests bool
}

// SQLiteRepository implements Repository backed by a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates or opens the history repository at the default path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return OpenAt(path)
}

// OpenAt creates or opens a SQLite database at the given path.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS render_history (
            id          INTEGER PRIMARY KEY AUTOINCREMENT,
            timestamp   TEXT    NOT NULL,
            command     TEXT    NOT NULL,
            args        TEXT    NOT NULL DEFAULT '',
            mode        TEXT    NOT NULL DEFAULT '',
            artifact    TEXT    NOT NULL DEFAULT '',
            digest      TEXT    NOT NULL DEFAULT '',
            outcome     TEXT    NOT NULL DEFAULT '',
            detail      TEXT    NOT NULL DEFAULT '',
            duration_ms INTEGER NOT NULL DEFAULT 0
        );
        CREATE INDEX IF NOT EXISTS idx_render_history_timestamp ON render_history(timestamp);
        CREATE INDEX IF NOT EXISTS idx_render_history_command ON render_history(command);
        CREATE INDEX IF NOT EXISTS idx_render_history_digest ON render_history(digest);
    `
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("history: migration failed: %w", err)
	}
	return nil
}

// Save inserts a new entry.
func (r *SQLiteRepository) Save(entry *Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	result, err := r.db.Exec(`
        INSERT INTO render_history (timestamp, command, args, mode, artifact, digest, outcome, detail, duration_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp.Format(time.RFC3339Nano), entry.Command, entry.Args, entry.Mode,
		entry.Artifact, entry.Digest, entry.Outcome, entry.Detail, entry.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("history: insert failed: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("history: failed to get last insert ID: %w", err)
	}
	entry.ID = id
	return nil
}

const selectColumns = `
        SELECT id, timestamp, command, args, mode, artifact, digest, outcome, detail, duration_ms
        FROM render_history`

// List returns the most recent n entries.
func (r *SQLiteRepository) List(limit int) ([]Entry, error) {
	rows, err := r.db.Query(selectColumns+` ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// ListByCommand returns the most recent n entries for a command.
func (r *SQLiteRepository) ListByCommand(command string, limit int) ([]Entry, error) {
	rows, err := r.db.Query(selectColumns+` WHERE command = ? ORDER BY timestamp DESC LIMIT ?`, command, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// Prune deletes entries older than the given duration.
func (r *SQLiteRepository) Prune(olderThan time.Duration) (int64, error) {
	return r.PruneWith(PruneOptions{OlderThan: olderThan})
}

// PruneWith deletes the entries opts selects and reports how many.
func (r *SQLiteRepository) PruneWith(opts PruneOptions) (int64, error) {
	cutoff := time.Now().UTC().Add(-opts.OlderThan).Format(time.RFC3339Nano)

	query := `DELETE FROM render_history WHERE timestamp < ?`
	args := []any{cutoff}
	if opts.FailedOnly {
		query += ` AND outcome = ?`
		args = append(args, OutcomeError)
	}
	if opts.KeepDigests {
		query += ` AND id NOT IN (
            SELECT MAX(id) FROM render_history WHERE digest != '' GROUP BY digest)`
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("history: delete failed: %w", err)
	}
	return result.RowsAffected()
}

// Close releases database resources.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanRows(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var entry Entry
		var timestampStr string
		err := rows.Scan(
			&entry.ID, &timestampStr, &entry.Command, &entry.Args, &entry.Mode,
			&entry.Artifact, &entry.Digest, &entry.Outcome, &entry.Detail, &entry.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("history: scan failed: %w", err)
		}
		entry.Timestamp, _ = time.Parse(time.RFC3339Nano, timestampStr)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Record saves entry to the default repository unless recording is
// disabled. Callers treat the error as informational.
func Record(entry *Entry) error {
	if Disabled() {
		return nil
	}
	repo, err := Open()
	if err != nil {
		return err
	}
	defer repo.Close()
	return SaveWithRetry(context.Background(), repo, entry)
}

// SaveWithRetry saves entry, retrying while another process holds the
// database lock.
func SaveWithRetry(ctx context.Context, repo Repository, entry *Entry) error {
	return retry.Do(ctx, retry.DefaultConfig(), retry.IsBusy, func() error {
		return repo.Save(entry)
	})
}
