package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/humanoid-ai/humanoid-server/internal/logger"
	"github.com/humanoid-ai/humanoid-server/internal/model"
)

// Session orchestrates the login/refresh/logout lifecycle: credential
// verification, token minting and tracking, and pool credential allocation
// keyed by the refresh token's jti.
type Session struct {
	users   model.UserStore
	manager model.TokenManager
	tokens  *Token
	pool    *Pool
	logger  *logger.Logger
}

func NewSession(
	users model.UserStore,
	manager model.TokenManager,
	tokens *Token,
	pool *Pool,
	logger *logger.Logger,
) *Session {
	return &Session{
		users:   users,
		manager: manager,
		tokens:  tokens,
		pool:    pool,
		logger:  logger,
	}
}

// ClientInfo carries transport metadata persisted for audit only.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// SessionTokens describes the two values the transport must bind, with the
// TTLs to bind them for. The transport mechanism itself (cookie vs. header)
// belongs to the HTTP layer.
type SessionTokens struct {
	Access     string
	AccessTTL  time.Duration
	Refresh    string
	RefreshTTL time.Duration
}

// SessionResult is the outcome of a successful login or registration.
type SessionResult struct {
	User       model.User
	Tokens     SessionTokens
	Assignment *model.Assignment
}

// RegisterParams describes a new account.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// Login verifies credentials and starts a session: refresh + access records
// are minted (access parented to refresh) and a pool credential is assigned
// under the refresh jti. Credential verification failures create no state.
func (s *Session) Login(ctx context.Context, username, password string, client ClientInfo) (SessionResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return SessionResult{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return SessionResult{}, fmt.Errorf("get user by username: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return SessionResult{}, model.ErrInvalidCredentials
	}

	result, err := s.startSession(ctx, user, client)
	if err != nil {
		return SessionResult{}, err
	}

	s.logger.Info("Session service: login completed",
		"user_id", user.ID,
		"username", user.Username)

	return result, nil
}

// Register creates an account and starts a session exactly like login.
func (s *Session) Register(ctx context.Context, params RegisterParams, client ClientInfo) (SessionResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return SessionResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	})
	if err != nil {
		return SessionResult{}, fmt.Errorf("create user: %w", err)
	}

	result, err := s.startSession(ctx, user, client)
	if err != nil {
		return SessionResult{}, err
	}

	s.logger.Info("Session service: registration completed",
		"user_id", user.ID,
		"username", user.Username)

	return result, nil
}

// Refresh validates the presented refresh token and mints a new access token
// parented to the same refresh record. The refresh token and the pool
// assignment are untouched; only the access credential needs rebinding.
func (s *Session) Refresh(ctx context.Context, rawRefresh string, client ClientInfo) (access string, ttl time.Duration, err error) {
	record, err := s.tokens.Validate(ctx, rawRefresh, model.TokenTypeRefresh)
	if err != nil {
		return "", 0, err
	}

	parent := record.JTI
	if _, err := s.mintTracked(ctx, record.UserID, model.TokenTypeAccess, &parent, client, &access); err != nil {
		return "", 0, fmt.Errorf("mint access token: %w", err)
	}

	s.logger.Info("Session service: access token refreshed",
		"user_id", record.UserID,
		"session_jti", record.JTI)

	return access, s.manager.AccessTTL(), nil
}

// Logout ends the session for the presented refresh token: the assignment is
// released and the refresh record revoked with its access children. An
// expired token still tears its session down, only the signature must
// verify. Logout is idempotent and succeeds even when the token is invalid
// or already revoked; the transport must always end up cleared.
func (s *Session) Logout(ctx context.Context, rawRefresh string) error {
	_, jti, err := s.manager.ExtractRefreshJTI(rawRefresh)
	if err != nil {
		// Forged or malformed token: nothing to revoke, logout still
		// succeeds so the caller clears the transport.
		s.logger.Debug("Session service: logout with unusable refresh token", "error", err.Error())
		return nil
	}

	if err := s.pool.Release(ctx, jti); err != nil {
		return fmt.Errorf("release assignment: %w", err)
	}

	if err := s.tokens.Revoke(ctx, jti); err != nil {
		return fmt.Errorf("revoke session tokens: %w", err)
	}

	s.logger.Info("Session service: logout completed", "session_jti", jti)

	return nil
}

// RevokeEverywhere force-logs-out a user from all sessions: every live token
// record is revoked and any active assignment released.
func (s *Session) RevokeEverywhere(ctx context.Context, userID uuid.UUID) error {
	if assignment, err := s.pool.Current(ctx, userID); err != nil {
		return fmt.Errorf("get active assignment: %w", err)
	} else if assignment != nil {
		if err := s.pool.Release(ctx, assignment.SessionJTI); err != nil {
			return fmt.Errorf("release assignment: %w", err)
		}
	}

	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("Session service: revoked all sessions", "user_id", userID)

	return nil
}

func (s *Session) startSession(ctx context.Context, user model.User, client ClientInfo) (SessionResult, error) {
	var rawRefresh string
	refreshRecord, err := s.mintTracked(ctx, user.ID, model.TokenTypeRefresh, nil, client, &rawRefresh)
	if err != nil {
		return SessionResult{}, fmt.Errorf("mint refresh token: %w", err)
	}

	parent := refreshRecord.JTI
	var rawAccess string
	if _, err := s.mintTracked(ctx, user.ID, model.TokenTypeAccess, &parent, client, &rawAccess); err != nil {
		s.abortSession(ctx, refreshRecord.JTI)
		return SessionResult{}, fmt.Errorf("mint access token: %w", err)
	}

	assignment, err := s.pool.Assign(ctx, user.ID, refreshRecord.JTI)
	if err != nil {
		s.abortSession(ctx, refreshRecord.JTI)
		return SessionResult{}, fmt.Errorf("assign pool credential: %w", err)
	}

	return SessionResult{
		User: user,
		Tokens: SessionTokens{
			Access:     rawAccess,
			AccessTTL:  s.manager.AccessTTL(),
			Refresh:    rawRefresh,
			RefreshTTL: s.manager.RefreshTTL(),
		},
		Assignment: assignment,
	}, nil
}

// mintTracked generates a signed token and persists its record, re-minting
// once on the practically-unreachable hash collision.
func (s *Session) mintTracked(
	ctx context.Context,
	userID uuid.UUID,
	tokenType model.TokenType,
	parentJTI *string,
	client ClientInfo,
	rawOut *string,
) (model.AuthToken, error) {
	const attempts = 2

	var lastErr error
	for i := 0; i < attempts; i++ {
		var raw, jti string
		var err error
		var ttl time.Duration

		switch tokenType {
		case model.TokenTypeRefresh:
			raw, jti, err = s.manager.GenerateRefreshToken(userID)
			ttl = s.manager.RefreshTTL()
		default:
			raw, jti, err = s.manager.GenerateAccessToken(userID)
			ttl = s.manager.AccessTTL()
		}
		if err != nil {
			return model.AuthToken{}, fmt.Errorf("generate %s token: %w", tokenType, err)
		}

		record, err := s.tokens.Issue(ctx, IssueParams{
			UserID:    userID,
			Type:      tokenType,
			Raw:       raw,
			JTI:       jti,
			TTL:       ttl,
			ParentJTI: parentJTI,
			IPAddress: client.IPAddress,
			UserAgent: client.UserAgent,
		})
		if errors.Is(err, model.ErrDuplicateToken) {
			lastErr = err
			continue
		}
		if err != nil {
			return model.AuthToken{}, err
		}

		*rawOut = raw
		return record, nil
	}

	return model.AuthToken{}, fmt.Errorf("mint %s token: %w", tokenType, lastErr)
}

// abortSession best-effort rolls back a partially started session so a
// failed login does not leave live credentials behind.
func (s *Session) abortSession(ctx context.Context, refreshJTI string) {
	if err := s.pool.Release(ctx, refreshJTI); err != nil {
		s.logger.Error("Session service: failed to release assignment during abort",
			"session_jti", refreshJTI,
			"error", err.Error())
	}
	if err := s.tokens.Revoke(ctx, refreshJTI); err != nil {
		s.logger.Error("Session service: failed to revoke tokens during abort",
			"session_jti", refreshJTI,
			"error", err.Error())
	}
}
