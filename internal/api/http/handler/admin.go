package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/humanoid-ai/humanoid-server/internal/api/http/middleware"
	"github.com/humanoid-ai/humanoid-server/internal/service"
)

// Admin serves the operator surface: pool credential management, token
// statistics and forced revocation.
type Admin struct {
	sessions *service.Session
	tokens   *service.Token
	pool     *service.Pool
}

func NewAdmin(sessions *service.Session, tokens *service.Token, pool *service.Pool) *Admin {
	return &Admin{
		sessions: sessions,
		tokens:   tokens,
		pool:     pool,
	}
}

type addCredentialRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
}

func (h *Admin) AddCredential(c *gin.Context) {
	var req addCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	adminID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	cred, err := h.pool.AddCredential(c.Request.Context(), req.Name, req.Value, adminID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     cred.ID,
		"name":   cred.Name,
		"active": cred.Active,
	})
}

// ListCredentials returns pool credentials with their current load. The
// credential value never leaves the server.
func (h *Admin) ListCredentials(c *gin.Context) {
	loads, err := h.pool.ListLoads(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	credentials := make([]gin.H, 0, len(loads))
	for _, l := range loads {
		credentials = append(credentials, gin.H{
			"id":                 l.Credential.ID,
			"name":               l.Credential.Name,
			"active":             l.Credential.Active,
			"active_assignments": l.ActiveAssignments,
			"created_at":         l.Credential.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"credentials": credentials})
}

type setCredentialActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *Admin) SetCredentialActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credential id"})
		return
	}

	var req setCredentialActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.pool.SetCredentialActive(c.Request.Context(), id, *req.Active); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "active": *req.Active})
}

func (h *Admin) TokenStats(c *gin.Context) {
	stats, err := h.tokens.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   stats.Total,
		"active":  stats.Active,
		"revoked": stats.Revoked,
	})
}

// RevokeUserSessions force-logs-out a user everywhere.
func (h *Admin) RevokeUserSessions(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.sessions.RevokeEverywhere(c.Request.Context(), userID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "sessions revoked"})
}

// UserSessions lists a user's live refresh records so an operator can see
// where they are logged in.
func (h *Admin) UserSessions(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	records, err := h.tokens.ActiveSessions(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	sessions := make([]gin.H, 0, len(records))
	for _, r := range records {
		sessions = append(sessions, gin.H{
			"jti":        r.JTI,
			"created_at": r.CreatedAt,
			"expires_at": r.ExpiresAt,
			"ip_address": r.IPAddress,
			"user_agent": r.UserAgent,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// UserAssignments lists a user's assignment history.
func (h *Admin) UserAssignments(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	assignments, err := h.pool.AssignmentsFor(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	out := make([]gin.H, 0, len(assignments))
	for _, a := range assignments {
		entry := gin.H{
			"id":            a.ID,
			"credential_id": a.CredentialID,
			"session_jti":   a.SessionJTI,
			"active":        a.Active,
			"assigned_at":   a.AssignedAt,
		}
		if a.ReleasedAt != nil {
			entry["released_at"] = a.ReleasedAt
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"assignments": out})
}
