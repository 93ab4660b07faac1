// Package storage persists chat sessions and their transcripts.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is the only lookup failure surfaced to callers; all
// other "no data" conditions degrade to empty values.
var ErrSessionNotFound = errors.New("session not found")

// Session is one interview session with an agent.
type Session struct {
	ID        string
	Agent     string
	CreatedAt time.Time
	// ConversationState holds the serialized snapshot from the last
	// initialization, "{}" until then.
	ConversationState string
}

// Message is one persisted chat turn.
type Message struct {
	ID        int64
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// SessionSummary is the list-view projection of a session.
type SessionSummary struct {
	ID            string
	Agent         string
	CreatedAt     time.Time
	LastMessageAt *time.Time
}

// Store is the session persistence boundary used by the HTTP layer.
type Store interface {
	CreateSession(ctx context.Context, agent string) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	ListSessions(ctx context.Context) ([]SessionSummary, error)
	UpdateConversationState(ctx context.Context, sessionID, stateJSON string) error

	AddMessage(ctx context.Context, sessionID, role, content string, createdAt time.Time) (int64, error)
	ListMessages(ctx context.Context, sessionID string) ([]Message, error)

	Ping(ctx context.Context) error
	Close() error
}
