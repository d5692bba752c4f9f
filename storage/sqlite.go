// SQLite session archive.
//
// Information Hiding:
// - SQLite connection management hidden behind the Archive type
// - Schema and serialization details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/richinex/seqthink/model"
)

// Archive persists sessions in a SQLite database file so they survive
// process restarts. The in-memory history stays authoritative during a
// session; the archive is a durable mirror written on demand.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens or creates a SQLite archive at the given path.
// Creates parent directories if they don't exist.
func OpenArchive(path string) (*Archive, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite archive: %w", err)
	}

	archive := &Archive{db: db}
	if err := archive.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return archive, nil
}

// NewArchiveInMemory creates an in-memory archive (useful for testing).
func NewArchiveInMemory() (*Archive, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite archive: %w", err)
	}

	archive := &Archive{db: db}
	if err := archive.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return archive, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS thoughts (
			id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			content TEXT NOT NULL,
			thought_number INTEGER NOT NULL,
			total_thoughts INTEGER NOT NULL,
			next_thought_needed INTEGER NOT NULL,
			stage TEXT NOT NULL,
			tags TEXT NOT NULL,
			axioms_used TEXT NOT NULL,
			assumptions_challenged TEXT NOT NULL,
			critical_response TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE,
			UNIQUE(session_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_thoughts_session
		ON thoughts(session_id, position);
	`

	_, err := a.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (a *Archive) ensureSession(ctx context.Context, sessionID string) error {
	_, err := a.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO sessions (session_id) VALUES (?)",
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}
	return nil
}

// SaveSession mirrors the full ordered history for a session.
// The previous archived sequence for the session is replaced.
func (a *Archive) SaveSession(ctx context.Context, sessionID string, records []model.ThoughtRecord) error {
	if err := a.ensureSession(ctx, sessionID); err != nil {
		return err
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// defer tx.Rollback() is safe even after Commit() - it becomes a no-op
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, "DELETE FROM thoughts WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear old thoughts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO thoughts (
			id, session_id, position, content, thought_number, total_thoughts,
			next_thought_needed, stage, tags, axioms_used, assumptions_challenged,
			critical_response, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		tags, err := json.Marshal(r.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags: %w", err)
		}
		axioms, err := json.Marshal(r.Axioms)
		if err != nil {
			return fmt.Errorf("failed to encode axioms: %w", err)
		}
		assumptions, err := json.Marshal(r.AssumptionsChallenged)
		if err != nil {
			return fmt.Errorf("failed to encode assumptions: %w", err)
		}

		next := 0
		if r.ContinuationExpected {
			next = 1
		}

		_, err = stmt.ExecContext(ctx,
			r.ID, sessionID, i, r.Content, r.Number, r.TotalExpected,
			next, r.Stage.String(), string(tags), string(axioms), string(assumptions),
			r.Critique, r.CreatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("failed to insert thought %d: %w", i, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE sessions SET updated_at = datetime('now') WHERE session_id = ?",
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadSession loads the archived sequence for a session in order.
// Returns an empty slice (not nil) if the session doesn't exist.
func (a *Archive) LoadSession(ctx context.Context, sessionID string) ([]model.ThoughtRecord, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, content, thought_number, total_thoughts, next_thought_needed,
		       stage, tags, axioms_used, assumptions_challenged, critical_response, created_at
		FROM thoughts
		WHERE session_id = ?
		ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query thoughts: %w", err)
	}
	defer rows.Close()

	records := []model.ThoughtRecord{}
	for rows.Next() {
		var (
			r           model.ThoughtRecord
			next        int
			stageLabel  string
			tags        string
			axioms      string
			assumptions string
			createdAt   string
		)
		if err := rows.Scan(&r.ID, &r.Content, &r.Number, &r.TotalExpected, &next,
			&stageLabel, &tags, &axioms, &assumptions, &r.Critique, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan thought: %w", err)
		}

		r.ContinuationExpected = next != 0

		stage, err := model.ParseStage(stageLabel)
		if err != nil {
			return nil, fmt.Errorf("failed to decode archived stage: %w", err)
		}
		r.Stage = stage

		if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
		if err := json.Unmarshal([]byte(axioms), &r.Axioms); err != nil {
			return nil, fmt.Errorf("failed to decode axioms: %w", err)
		}
		if err := json.Unmarshal([]byte(assumptions), &r.AssumptionsChallenged); err != nil {
			return nil, fmt.Errorf("failed to decode assumptions: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to decode archived timestamp: %w", err)
		}
		r.CreatedAt = ts

		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read thoughts: %w", err)
	}
	return records, nil
}

// ListSessions lists all archived session IDs, most recently updated first.
func (a *Archive) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx,
		"SELECT session_id FROM sessions ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	return ids, nil
}

// DeleteSession removes an archived session and its thoughts.
func (a *Archive) DeleteSession(ctx context.Context, sessionID string) error {
	// Explicit thought delete first: the foreign_keys pragma is off by default.
	if _, err := a.db.ExecContext(ctx,
		"DELETE FROM thoughts WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete thoughts: %w", err)
	}
	if _, err := a.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
