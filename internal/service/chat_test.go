package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/humanoid-ai/humanoid-server/internal/hf"
	"github.com/humanoid-ai/humanoid-server/internal/logger"
	servermocks "github.com/humanoid-ai/humanoid-server/internal/mocks"
	"github.com/humanoid-ai/humanoid-server/internal/model"
)

type fakeCompleter struct {
	token    string
	messages []hf.Message
	reply    string
	err      error
}

func (f *fakeCompleter) ChatCompletion(_ context.Context, token string, messages []hf.Message) (string, error) {
	f.token = token
	f.messages = messages
	return f.reply, f.err
}

func TestChat_SendMessage_UsesAssignedCredential(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	convID := uuid.New()
	credID := uuid.New()

	conversations := &servermocks.ConversationStore{}
	credentials := &servermocks.CredentialPoolStore{}
	assignments := &servermocks.AssignmentStore{}
	completer := &fakeCompleter{reply: "hello there"}

	conversations.On("GetConversation", ctx, convID).Return(model.Conversation{
		ID:     convID,
		UserID: userID,
		Title:  "greetings",
	}, nil).Once()

	conversations.On("AppendMessage", ctx, mock.MatchedBy(func(m model.Message) bool {
		return m.Role == model.MessageRoleUser && m.Content == "hi"
	})).Return(model.Message{ID: uuid.New(), ConversationID: convID, Role: model.MessageRoleUser, Content: "hi"}, nil).Once()

	conversations.On("ListMessages", ctx, convID).Return([]model.Message{
		{Role: model.MessageRoleUser, Content: "hi"},
	}, nil).Once()

	assignments.On("GetActiveByUser", ctx, userID).Return(model.Assignment{
		UserID:       userID,
		CredentialID: credID,
		Active:       true,
	}, nil).Once()
	credentials.On("GetByID", ctx, credID).Return(model.PoolCredential{
		ID:    credID,
		Value: "hf_pool_token",
	}, nil).Once()

	conversations.On("AppendMessage", ctx, mock.MatchedBy(func(m model.Message) bool {
		return m.Role == model.MessageRoleAssistant && m.Content == "hello there"
	})).Return(model.Message{ID: uuid.New(), ConversationID: convID, Role: model.MessageRoleAssistant, Content: "hello there"}, nil).Once()

	log := logger.New(0)
	pool := NewPool(credentials, assignments, "hf_fallback", false, log)
	svc := NewChat(conversations, pool, completer, log)

	reply, err := svc.SendMessage(ctx, userID, convID, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply.Content)

	// Upstream call carries the pool credential, not the fallback.
	assert.Equal(t, "hf_pool_token", completer.token)
	require.Len(t, completer.messages, 1)
	assert.Equal(t, "user", completer.messages[0].Role)
}

func TestChat_SendMessage_FallbackCredential(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	convID := uuid.New()

	conversations := &servermocks.ConversationStore{}
	credentials := &servermocks.CredentialPoolStore{}
	assignments := &servermocks.AssignmentStore{}
	completer := &fakeCompleter{reply: "ok"}

	conversations.On("GetConversation", ctx, convID).Return(model.Conversation{
		ID: convID, UserID: userID, Title: "t",
	}, nil).Once()
	conversations.On("AppendMessage", ctx, mock.Anything).Return(model.Message{}, nil).Twice()
	conversations.On("ListMessages", ctx, convID).Return([]model.Message{
		{Role: model.MessageRoleUser, Content: "hi"},
	}, nil).Once()
	assignments.On("GetActiveByUser", ctx, userID).Return(model.Assignment{}, model.ErrAssignmentNotFound).Once()

	log := logger.New(0)
	pool := NewPool(credentials, assignments, "hf_fallback", false, log)
	svc := NewChat(conversations, pool, completer, log)

	_, err := svc.SendMessage(ctx, userID, convID, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hf_fallback", completer.token)
}

func TestChat_SendMessage_UpstreamFailureKeepsUserMessage(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	convID := uuid.New()

	conversations := &servermocks.ConversationStore{}
	credentials := &servermocks.CredentialPoolStore{}
	assignments := &servermocks.AssignmentStore{}
	completer := &fakeCompleter{err: assert.AnError}

	conversations.On("GetConversation", ctx, convID).Return(model.Conversation{
		ID: convID, UserID: userID, Title: "t",
	}, nil).Once()

	userMessageAppended := false
	conversations.On("AppendMessage", ctx, mock.MatchedBy(func(m model.Message) bool {
		return m.Role == model.MessageRoleUser
	})).Run(func(mock.Arguments) {
		userMessageAppended = true
	}).Return(model.Message{}, nil).Once()

	conversations.On("ListMessages", ctx, convID).Return([]model.Message{
		{Role: model.MessageRoleUser, Content: "hi"},
	}, nil).Once()
	assignments.On("GetActiveByUser", ctx, userID).Return(model.Assignment{}, model.ErrAssignmentNotFound).Once()

	log := logger.New(0)
	pool := NewPool(credentials, assignments, "hf_fallback", false, log)
	svc := NewChat(conversations, pool, completer, log)

	_, err := svc.SendMessage(ctx, userID, convID, "hi")
	require.Error(t, err)
	assert.True(t, userMessageAppended)
}

func TestChat_History_OtherUsersConversation(t *testing.T) {
	ctx := context.Background()
	convID := uuid.New()

	conversations := &servermocks.ConversationStore{}
	credentials := &servermocks.CredentialPoolStore{}
	assignments := &servermocks.AssignmentStore{}

	conversations.On("GetConversation", ctx, convID).Return(model.Conversation{
		ID:     convID,
		UserID: uuid.New(),
	}, nil).Once()

	log := logger.New(0)
	svc := NewChat(conversations, NewPool(credentials, assignments, "", false, log), &fakeCompleter{}, log)

	_, err := svc.History(ctx, uuid.New(), convID)
	require.ErrorIs(t, err, model.ErrNotFound)
	conversations.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
}

func TestChat_SendMessage_TitlesFromFirstMessage(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	convID := uuid.New()

	conversations := &servermocks.ConversationStore{}
	credentials := &servermocks.CredentialPoolStore{}
	assignments := &servermocks.AssignmentStore{}
	completer := &fakeCompleter{reply: "ok"}

	conversations.On("GetConversation", ctx, convID).Return(model.Conversation{
		ID: convID, UserID: userID, Title: "",
	}, nil).Once()
	conversations.On("AppendMessage", ctx, mock.Anything).Return(model.Message{}, nil).Twice()
	conversations.On("SetTitle", ctx, convID, "what is the answer").Return(nil).Once()
	conversations.On("ListMessages", ctx, convID).Return([]model.Message{
		{Role: model.MessageRoleUser, Content: "what is the answer"},
	}, nil).Once()
	assignments.On("GetActiveByUser", ctx, userID).Return(model.Assignment{}, model.ErrAssignmentNotFound).Once()

	log := logger.New(0)
	svc := NewChat(conversations, NewPool(credentials, assignments, "fb", false, log), completer, log)

	_, err := svc.SendMessage(ctx, userID, convID, "what is the answer")
	require.NoError(t, err)
	conversations.AssertCalled(t, "SetTitle", ctx, convID, "what is the answer")
}
