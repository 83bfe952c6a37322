package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/humanoid-ai/humanoid-server/internal/api/http/middleware"
	"github.com/humanoid-ai/humanoid-server/internal/service"
)

// Chat serves conversation endpoints.
type Chat struct {
	chat *service.Chat
}

func NewChat(chat *service.Chat) *Chat {
	return &Chat{chat: chat}
}

type startConversationRequest struct {
	Title string `json:"title"`
}

func (h *Chat) StartConversation(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	conv, err := h.chat.StartConversation(c.Request.Context(), userID, req.Title)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         conv.ID,
		"title":      conv.Title,
		"created_at": conv.CreatedAt,
	})
}

func (h *Chat) ListConversations(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	conversations, err := h.chat.ListConversations(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	out := make([]gin.H, 0, len(conversations))
	for _, conv := range conversations {
		out = append(out, gin.H{
			"id":         conv.ID,
			"title":      conv.Title,
			"updated_at": conv.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

func (h *Chat) History(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	messages, err := h.chat.History(c.Request.Context(), userID, conversationID)
	if err != nil {
		handleError(c, err)
		return
	}

	out := make([]gin.H, 0, len(messages))
	for _, m := range messages {
		out = append(out, gin.H{
			"id":         m.ID,
			"role":       m.Role,
			"content":    m.Content,
			"created_at": m.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Chat) SendMessage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	reply, err := h.chat.SendMessage(c.Request.Context(), userID, conversationID, req.Content)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         reply.ID,
		"role":       reply.Role,
		"content":    reply.Content,
		"created_at": reply.CreatedAt,
	})
}
