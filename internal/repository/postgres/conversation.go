package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/humanoid-ai/humanoid-server/internal/model"
)

var _ model.ConversationStore = (*ConversationRepository)(nil)

type ConversationRepository struct {
	db *Connection
}

func NewConversationRepository(db *Connection) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) CreateConversation(ctx context.Context, c model.Conversation) (model.Conversation, error) {
	const query = `
        INSERT INTO conversations (id, user_id, title, created_at, updated_at)
        VALUES ($1,$2,$3,NOW(),NOW())
        RETURNING id, user_id, title, created_at, updated_at
    `

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	var saved model.Conversation
	err := r.db.QueryRow(ctx, query, c.ID, c.UserID, c.Title).Scan(
		&saved.ID, &saved.UserID, &saved.Title, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return model.Conversation{}, fmt.Errorf("failed to create conversation: %w", err)
	}
	return saved, nil
}

func (r *ConversationRepository) GetConversation(ctx context.Context, id uuid.UUID) (model.Conversation, error) {
	const query = `
        SELECT id, user_id, title, created_at, updated_at
        FROM conversations WHERE id = $1
    `
	var c model.Conversation
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Conversation{}, model.ErrNotFound
		}
		return model.Conversation{}, fmt.Errorf("failed to get conversation: %w", err)
	}
	return c, nil
}

func (r *ConversationRepository) ListConversations(ctx context.Context, userID uuid.UUID) ([]model.Conversation, error) {
	const query = `
        SELECT id, user_id, title, created_at, updated_at
        FROM conversations WHERE user_id = $1
        ORDER BY updated_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []model.Conversation
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}
	return conversations, nil
}

func (r *ConversationRepository) SetTitle(ctx context.Context, id uuid.UUID, title string) error {
	const query = `UPDATE conversations SET title = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, title)
	if err != nil {
		return fmt.Errorf("failed to set conversation title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, m model.Message) (model.Message, error) {
	const query = `
        WITH touched AS (
            UPDATE conversations SET updated_at = NOW() WHERE id = $2
        )
        INSERT INTO messages (id, conversation_id, role, content, created_at)
        VALUES ($1,$2,$3,$4,NOW())
        RETURNING id, conversation_id, role, content, created_at
    `

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	var saved model.Message
	err := r.db.QueryRow(ctx, query, m.ID, m.ConversationID, m.Role, m.Content).Scan(
		&saved.ID, &saved.ConversationID, &saved.Role, &saved.Content, &saved.CreatedAt,
	)
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to append message: %w", err)
	}
	return saved, nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]model.Message, error) {
	const query = `
        SELECT id, conversation_id, role, content, created_at
        FROM messages WHERE conversation_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}
