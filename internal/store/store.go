package store

import (
	"context"
	"errors"
	"time"

	"github.com/linguachat/linguachat-server/internal/chat"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered user. The username doubles as the
// participant identifier in room derivation.
type User struct {
	ID                int64
	Username          string
	PasswordHash      string
	PreferredLanguage string
	CreatedAt         time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash, preferredLanguage string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// ListUsers lists all users ordered by username.
	ListUsers(ctx context.Context) ([]*User, error)

	// UpdatePreferredLanguage updates a user's preferred language.
	UpdatePreferredLanguage(ctx context.Context, userID int64, language string) error
}

// MessageStore handles message persistence. It satisfies chat.MessageStore.
type MessageStore interface {
	// AppendMessage atomically persists msg, assigning ID and CreatedAt.
	// The assigned ID is the per-room insertion sequence: concurrent
	// appends to one room always receive distinct, increasing IDs.
	AppendMessage(ctx context.Context, msg *chat.Message) error

	// ListMessages returns a fully materialized snapshot of the room
	// history ascending by (created_at, id). limit <= 0 returns everything.
	ListMessages(ctx context.Context, roomID string, limit int) ([]*chat.Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
