package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageRole identifies the author side of a chat message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// ConversationStore defines persistence operations for chat history.
type ConversationStore interface {
	CreateConversation(ctx context.Context, c Conversation) (Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]Conversation, error)
	SetTitle(ctx context.Context, id uuid.UUID, title string) error
	AppendMessage(ctx context.Context, m Message) (Message, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]Message, error)
}

type Conversation struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Role           MessageRole
	Content        string
	CreatedAt      time.Time
}
