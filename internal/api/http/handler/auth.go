package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/humanoid-ai/humanoid-server/internal/api/http/middleware"
	"github.com/humanoid-ai/humanoid-server/internal/service"
)

// Auth serves the session lifecycle endpoints. Tokens are bound to the
// client as HttpOnly cookies; the access token is additionally returned in
// the body for non-browser clients that prefer the Authorization header.
type Auth struct {
	sessions      *service.Session
	tokens        *service.Token
	pool          *service.Pool
	secureCookies bool
}

func NewAuth(sessions *service.Session, tokens *service.Token, pool *service.Pool, secureCookies bool) *Auth {
	return &Auth{
		sessions:      sessions,
		tokens:        tokens,
		pool:          pool,
		secureCookies: secureCookies,
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *Auth) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.sessions.Register(c.Request.Context(), service.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}, clientInfo(c))
	if err != nil {
		handleError(c, err)
		return
	}

	h.bindSession(c, result.Tokens)
	c.JSON(http.StatusCreated, sessionResponse(result))
}

func (h *Auth) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password, clientInfo(c))
	if err != nil {
		handleError(c, err)
		return
	}

	h.bindSession(c, result.Tokens)
	c.JSON(http.StatusOK, sessionResponse(result))
}

// Refresh exchanges a valid refresh cookie for a fresh access token. The
// refresh token itself is left in place until logout or expiry.
func (h *Auth) Refresh(c *gin.Context) {
	raw, err := c.Cookie(middleware.RefreshCookie)
	if err != nil || raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	access, ttl, err := h.sessions.Refresh(c.Request.Context(), raw, clientInfo(c))
	if err != nil {
		handleError(c, err)
		return
	}

	h.setCookie(c, middleware.AccessCookie, access, ttl)
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

// Logout ends the session and clears both cookies. Always succeeds from the
// client's perspective: a stale or missing refresh token still produces a
// clean logout.
func (h *Auth) Logout(c *gin.Context) {
	raw, _ := c.Cookie(middleware.RefreshCookie)

	if err := h.sessions.Logout(c.Request.Context(), raw); err != nil {
		handleError(c, err)
		return
	}

	h.clearCookie(c, middleware.AccessCookie)
	h.clearCookie(c, middleware.RefreshCookie)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's id and active pool assignment.
func (h *Auth) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	assignment, err := h.pool.Current(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := gin.H{"user_id": userID}
	if assignment != nil {
		resp["credential_id"] = assignment.CredentialID
		resp["assigned_at"] = assignment.AssignedAt
	}
	c.JSON(http.StatusOK, resp)
}

// Sessions lists the user's live refresh tokens (one per device/session).
func (h *Auth) Sessions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
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

func (h *Auth) bindSession(c *gin.Context, tokens service.SessionTokens) {
	h.setCookie(c, middleware.AccessCookie, tokens.Access, tokens.AccessTTL)
	h.setCookie(c, middleware.RefreshCookie, tokens.Refresh, tokens.RefreshTTL)
}

func (h *Auth) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", h.secureCookies, true)
}

func (h *Auth) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", h.secureCookies, true)
}

func sessionResponse(result service.SessionResult) gin.H {
	return gin.H{
		"user": gin.H{
			"id":       result.User.ID,
			"username": result.User.Username,
			"email":    result.User.Email,
			"role":     result.User.Role,
		},
		"access_token": result.Tokens.Access,
	}
}

func clientInfo(c *gin.Context) service.ClientInfo {
	return service.ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
