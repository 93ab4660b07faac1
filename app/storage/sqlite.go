package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"quartz/app/config"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/oops"
	_ "modernc.org/sqlite"
)

var _ do.Shutdownable = (*SQLiteStore)(nil)

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func New(di *do.Injector) (Store, error) {
	cfg := do.MustInvoke[*config.Config](di)
	return NewSQLite(cfg.DB.Path)
}

func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, oops.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, oops.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		return nil, oops.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, oops.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		agent TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		conversation_state TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateSession(ctx context.Context, agent string) (*Session, error) {
	session := &Session{
		ID:                uuid.NewString(),
		Agent:             agent,
		CreatedAt:         time.Now().UTC(),
		ConversationState: "{}",
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, agent, created_at, conversation_state) VALUES (?, ?, ?, ?)`,
		session.ID, session.Agent, session.CreatedAt.Unix(), session.ConversationState)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return session, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, agent, created_at, conversation_state FROM sessions WHERE id = ?`, sessionID)

	var session Session
	var createdAt int64

	err := row.Scan(&session.ID, &session.Agent, &createdAt, &session.ConversationState)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	session.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &session, nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.agent, s.created_at, MAX(m.created_at)
		FROM sessions s
		LEFT JOIN messages m ON m.session_id = s.id
		GROUP BY s.id, s.agent, s.created_at
		ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var summary SessionSummary
		var createdAt int64
		var lastMessageAt sql.NullInt64

		if err = rows.Scan(&summary.ID, &summary.Agent, &createdAt, &lastMessageAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}

		summary.CreatedAt = time.Unix(createdAt, 0).UTC()
		if lastMessageAt.Valid {
			ts := time.Unix(lastMessageAt.Int64, 0).UTC()
			summary.LastMessageAt = &ts
		}

		out = append(out, summary)
	}

	return out, rows.Err()
}

func (s *SQLiteStore) UpdateConversationState(ctx context.Context, sessionID, stateJSON string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET conversation_state = ? WHERE id = ?`, stateJSON, sessionID)
	if err != nil {
		return fmt.Errorf("update session state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (s *SQLiteStore) AddMessage(ctx context.Context, sessionID, role, content string, createdAt time.Time) (int64, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return 0, err
	}

	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, role, content, createdAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	return id, nil
}

func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM messages WHERE session_id = ?
		ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var msg Message
		var createdAt int64

		if err = rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}

		msg.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, msg)
	}

	return out, rows.Err()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Shutdown() error {
	return s.Close()
}
