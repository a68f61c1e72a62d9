package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pkdindustries/scry/internal/core"
)

// PGStore persists conversations in postgres
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(ctx context.Context, url string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &PGStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

var _ core.ChatStore = (*PGStore)(nil)

func (s *PGStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS chats (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS messages_chat_id_idx ON messages(chat_id, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure chat schema: %w", err)
		}
	}
	return nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}

func (s *PGStore) Create(ctx context.Context, title string) (core.Conversation, error) {
	conv := core.Conversation{ID: uuid.NewString(), Title: title}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO chats (id, title) VALUES ($1, $2) RETURNING created_at`,
		conv.ID, conv.Title).Scan(&conv.CreatedAt)
	if err != nil {
		return core.Conversation{}, fmt.Errorf("create chat: %w", err)
	}
	return conv, nil
}

func (s *PGStore) Append(ctx context.Context, conversationID, role, content string) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, chat_id, role, content)
		 SELECT $1, id, $3, $4 FROM chats WHERE id = $2`,
		uuid.NewString(), conversationID, role, content)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (s *PGStore) List(ctx context.Context) ([]core.Conversation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, created_at FROM chats ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var out []core.Conversation
	for rows.Next() {
		var conv core.Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

func (s *PGStore) Rename(ctx context.Context, conversationID, title string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE chats SET title = $2 WHERE id = $1`, conversationID, title)
	if err != nil {
		return fmt.Errorf("rename chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (s *PGStore) Messages(ctx context.Context, conversationID string) ([]core.StoredMessage, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM chats WHERE id = $1)`, conversationID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check chat: %w", err)
	}
	if !exists {
		return nil, ErrConversationNotFound
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, chat_id, role, content, created_at FROM messages
		 WHERE chat_id = $1 ORDER BY created_at, id`, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []core.StoredMessage
	for rows.Next() {
		var m core.StoredMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
