package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/humanoid-ai/humanoid-server/internal/hf"
	"github.com/humanoid-ai/humanoid-server/internal/logger"
	"github.com/humanoid-ai/humanoid-server/internal/model"
)

const titleMaxLen = 60

// Completer produces an assistant reply for a conversation history using the
// given upstream credential.
type Completer interface {
	ChatCompletion(ctx context.Context, token string, messages []hf.Message) (string, error)
}

// Chat manages conversations and relays messages upstream. Outbound calls are
// authenticated with the session's pool credential, so per-user traffic is
// spread across the pool.
type Chat struct {
	conversations model.ConversationStore
	pool          *Pool
	completer     Completer
	logger        *logger.Logger
}

func NewChat(conversations model.ConversationStore, pool *Pool, completer Completer, logger *logger.Logger) *Chat {
	return &Chat{
		conversations: conversations,
		pool:          pool,
		completer:     completer,
		logger:        logger,
	}
}

// StartConversation creates an empty conversation for the user.
func (s *Chat) StartConversation(ctx context.Context, userID uuid.UUID, title string) (model.Conversation, error) {
	conv, err := s.conversations.CreateConversation(ctx, model.Conversation{
		ID:     uuid.New(),
		UserID: userID,
		Title:  title,
	})
	if err != nil {
		return model.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns the user's conversations, most recently updated
// first.
func (s *Chat) ListConversations(ctx context.Context, userID uuid.UUID) ([]model.Conversation, error) {
	return s.conversations.ListConversations(ctx, userID)
}

// History returns a conversation's messages in chronological order. Returns
// model.ErrNotFound when the conversation does not exist or belongs to
// another user.
func (s *Chat) History(ctx context.Context, userID, conversationID uuid.UUID) ([]model.Message, error) {
	if _, err := s.ownedConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.conversations.ListMessages(ctx, conversationID)
}

// SendMessage appends the user's message, calls upstream with the full
// history, and appends the assistant reply. The user message is kept even
// when the upstream call fails, so the user can retry without retyping.
func (s *Chat) SendMessage(ctx context.Context, userID, conversationID uuid.UUID, content string) (model.Message, error) {
	conv, err := s.ownedConversation(ctx, userID, conversationID)
	if err != nil {
		return model.Message{}, err
	}

	userMsg := model.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Role:           model.MessageRoleUser,
		Content:        content,
	}
	if _, err := s.conversations.AppendMessage(ctx, userMsg); err != nil {
		return model.Message{}, fmt.Errorf("append user message: %w", err)
	}

	if conv.Title == "" {
		// First message titles the conversation. Best effort.
		if err := s.retitle(ctx, conv, content); err != nil {
			s.logger.Debug("Chat service: failed to set conversation title",
				"conversation_id", conv.ID,
				"error", err.Error())
		}
	}

	history, err := s.conversations.ListMessages(ctx, conv.ID)
	if err != nil {
		return model.Message{}, fmt.Errorf("list messages: %w", err)
	}

	credential, err := s.pool.CredentialFor(ctx, userID)
	if err != nil {
		return model.Message{}, fmt.Errorf("resolve upstream credential: %w", err)
	}

	reply, err := s.completer.ChatCompletion(ctx, credential, toWire(history))
	if err != nil {
		s.logger.Error("Chat service: upstream completion failed",
			"conversation_id", conv.ID,
			"error", err.Error())
		return model.Message{}, fmt.Errorf("chat completion: %w", err)
	}

	assistantMsg, err := s.conversations.AppendMessage(ctx, model.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Role:           model.MessageRoleAssistant,
		Content:        reply,
	})
	if err != nil {
		return model.Message{}, fmt.Errorf("append assistant message: %w", err)
	}

	return assistantMsg, nil
}

func (s *Chat) ownedConversation(ctx context.Context, userID, conversationID uuid.UUID) (model.Conversation, error) {
	conv, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return model.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	if conv.UserID != userID {
		return model.Conversation{}, model.ErrNotFound
	}
	return conv, nil
}

func (s *Chat) retitle(ctx context.Context, conv model.Conversation, firstMessage string) error {
	title := firstMessage
	if utf8.RuneCountInString(title) > titleMaxLen {
		runes := []rune(title)
		title = string(runes[:titleMaxLen])
	}
	conv.Title = title
	if err := s.conversations.SetTitle(ctx, conv.ID, title); err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	return nil
}

func toWire(history []model.Message) []hf.Message {
	wire := make([]hf.Message, 0, len(history))
	for _, m := range history {
		wire = append(wire, hf.Message{Role: string(m.Role), Content: m.Content})
	}
	return wire
}
