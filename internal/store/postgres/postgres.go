package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linguachat/linguachat-server/internal/chat"
	"github.com/linguachat/linguachat-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                 BIGSERIAL PRIMARY KEY,
	username           TEXT NOT NULL UNIQUE,
	password_hash      TEXT NOT NULL,
	preferred_language TEXT NOT NULL DEFAULT 'en',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS messages (
	id           BIGSERIAL PRIMARY KEY,
	room_id      TEXT NOT NULL,
	sender_id    TEXT NOT NULL,
	recipient_id TEXT NOT NULL,
	kind         TEXT NOT NULL,
	content      TEXT NOT NULL DEFAULT '',
	audio_url    TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_messages_room ON messages (room_id, created_at, id);
`

// PostgresStore implements store.Store for PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL store with a connection pool and applies the
// schema.
func New(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ store.Store = (*PostgresStore)(nil)

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash, preferredLanguage string) (*store.User, error) {
	if preferredLanguage == "" {
		preferredLanguage = "en"
	}
	user := &store.User{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, preferred_language)
		VALUES ($1, $2, $3)
		RETURNING id, username, password_hash, preferred_language, created_at
	`, username, passwordHash, preferredLanguage).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.PreferredLanguage,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	return s.getUser(ctx, `
		SELECT id, username, password_hash, preferred_language, created_at
		FROM users WHERE id = $1
	`, id)
}

// GetUserByUsername retrieves a user by username.
func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	return s.getUser(ctx, `
		SELECT id, username, password_hash, preferred_language, created_at
		FROM users WHERE username = $1
	`, username)
}

func (s *PostgresStore) getUser(ctx context.Context, query string, arg any) (*store.User, error) {
	user := &store.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.PreferredLanguage,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// ListUsers lists all users ordered by username.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]*store.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, password_hash, preferred_language, created_at
		FROM users ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*store.User
	for rows.Next() {
		user := &store.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
			&user.PreferredLanguage,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdatePreferredLanguage updates a user's preferred language.
func (s *PostgresStore) UpdatePreferredLanguage(ctx context.Context, userID int64, language string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET preferred_language = $1 WHERE id = $2
	`, language, userID)
	if err != nil {
		return fmt.Errorf("update preferred language: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user: %w", store.ErrNotFound)
	}
	return nil
}

// ==== MessageStore implementation ====

// AppendMessage atomically persists msg, assigning ID and CreatedAt.
func (s *PostgresStore) AppendMessage(ctx context.Context, msg *chat.Message) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (room_id, sender_id, recipient_id, kind, content, audio_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, msg.RoomID, msg.SenderID, msg.RecipientID, string(msg.Kind), msg.Content, msg.AudioRef).Scan(
		&msg.ID,
		&msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListMessages returns the room history ascending by (created_at, id).
func (s *PostgresStore) ListMessages(ctx context.Context, roomID string, limit int) ([]*chat.Message, error) {
	query := `
		SELECT id, room_id, sender_id, recipient_id, kind, content, audio_url, created_at
		FROM messages
		WHERE room_id = $1
		ORDER BY created_at, id
	`
	args := []any{roomID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*chat.Message
	for rows.Next() {
		msg := &chat.Message{}
		var kind string
		if err := rows.Scan(
			&msg.ID,
			&msg.RoomID,
			&msg.SenderID,
			&msg.RecipientID,
			&kind,
			&msg.Content,
			&msg.AudioRef,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Kind = chat.Kind(kind)
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
