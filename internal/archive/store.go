// Package archive stores completed sessions in SQLite so they can be listed,
// re-exported, and served after the process that ran them has exited.
// Messages are keyed by (session ID, message ID) because message IDs are
// only unique within one session.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/hat"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Summary is one row of the session list.
type Summary struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	DialogMode bool            `json:"dialog_mode"`
	Status     dialogue.Status `json:"status"`
	Messages   int             `json:"messages"`
	StartedAt  time.Time       `json:"started_at"`
}

// Store is a SQLite-backed session archive. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive at path and runs migrations. The parent
// directory is created if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}

	var v int
	if err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != schemaVersion {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Save stores res, replacing any earlier copy of the same session.
func (s *Store) Save(ctx context.Context, res *dialogue.Result) error {
	if res.SessionID == "" {
		return errors.NewInvalidInputError("session ID must not be empty").WithField("session_id")
	}
	order, err := json.Marshal(hat.Strings(res.Order))
	if err != nil {
		return fmt.Errorf("encode hat order: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteSession(ctx, tx, res.SessionID); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO sessions (id, topic, dialog_mode, hat_order, status, error, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.SessionID, res.Topic, res.DialogMode, string(order), string(res.Status),
		nullable(res.Error), formatTime(res.StartedAt), formatTime(res.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO messages (session_id, id, seq, hat, content, created_at, response_to)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare message insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range res.Conversation {
		_, err := stmt.ExecContext(ctx,
			res.SessionID, m.ID, i, string(m.Hat), m.Content,
			formatTime(m.Timestamp), nullable(m.RespondsTo()),
		)
		if err != nil {
			return fmt.Errorf("insert message %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

// Get loads one session. It returns a NotFoundError when id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*dialogue.Result, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, topic, dialog_mode, hat_order, status, error, started_at, finished_at
FROM sessions WHERE id = ?`, id)

	res, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("session", id)
	}
	if err != nil {
		return nil, err
	}

	res.Conversation, err = s.messages(ctx, id)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Latest returns the most recently started session. With successOnly set,
// sessions that ended in error are skipped. It returns a NotFoundError when
// nothing matches.
func (s *Store) Latest(ctx context.Context, successOnly bool) (*dialogue.Result, error) {
	query := "SELECT id FROM sessions"
	var args []any
	if successOnly {
		query += " WHERE status = ?"
		args = append(args, string(dialogue.StatusSuccess))
	}
	query += " ORDER BY started_at DESC, rowid DESC LIMIT 1"

	var id string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("session", "latest")
	}
	if err != nil {
		return nil, fmt.Errorf("find latest session: %w", err)
	}
	return s.Get(ctx, id)
}

// List returns up to limit sessions, newest first. A limit of zero or less
// returns every session.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	query := `
SELECT s.id, s.topic, s.dialog_mode, s.status, s.started_at,
       (SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id)
FROM sessions s
ORDER BY s.started_at DESC, s.rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			status  string
			started string
		)
		if err := rows.Scan(&sum.ID, &sum.Topic, &sum.DialogMode, &status, &started, &sum.Messages); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.Status = dialogue.Status(status)
		if sum.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes a session and its messages. It returns a NotFoundError when
// id is unknown.
func (s *Store) Delete(ctx context.Context, id string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}
	if exists == 0 {
		return errors.NewNotFoundError("session", id)
	}
	if err := deleteSession(ctx, s.db, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func deleteSession(ctx context.Context, db execer, id string) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", id); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	return err
}

func (s *Store) messages(ctx context.Context, sessionID string) ([]hat.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, hat, content, created_at, response_to
FROM messages WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	out := []hat.Message{}
	for rows.Next() {
		var (
			m          hat.Message
			hatID      string
			created    string
			responseTo sql.NullString
		)
		if err := rows.Scan(&m.ID, &hatID, &m.Content, &created, &responseTo); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Hat = hat.ID(hatID)
		if m.Timestamp, err = parseTime(created); err != nil {
			return nil, err
		}
		if responseTo.Valid {
			ref := responseTo.String
			m.ResponseTo = &ref
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*dialogue.Result, error) {
	var (
		res              dialogue.Result
		order, status    string
		errText          sql.NullString
		started, stopped string
	)
	err := row.Scan(&res.SessionID, &res.Topic, &res.DialogMode, &order, &status, &errText, &started, &stopped)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal([]byte(order), &ids); err != nil {
		return nil, fmt.Errorf("decode hat order: %w", err)
	}
	res.Order = make([]hat.ID, len(ids))
	for i, s := range ids {
		res.Order[i] = hat.ID(s)
	}
	res.Status = dialogue.Status(status)
	res.Error = errText.String
	if res.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if res.FinishedAt, err = parseTime(stopped); err != nil {
		return nil, err
	}
	return &res, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
