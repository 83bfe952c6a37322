package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/humanoid-ai/humanoid-server/internal/model"
)

// Claims represents JWT claims with token type and user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	TokenType string    `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC. Both token types
// carry a jti so the durable store can track either kind by identifier.
type JWT struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWT creates a new JWT token manager with the provided secret key and TTLs.
func NewJWT(secretKey string, accessTTL, refreshTTL time.Duration) model.TokenManager {
	return &JWT{secretKey: secretKey, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// AccessTTL returns the configured access token lifetime.
func (j *JWT) AccessTTL() time.Duration { return j.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (j *JWT) RefreshTTL() time.Duration { return j.refreshTTL }

// GenerateAccessToken creates a short-lived access token and returns its JTI.
func (j *JWT) GenerateAccessToken(userID uuid.UUID) (string, string, error) {
	return j.generate(userID, typeAccess, j.accessTTL)
}

// GenerateRefreshToken creates a long-lived refresh token and returns its JTI.
func (j *JWT) GenerateRefreshToken(userID uuid.UUID) (string, string, error) {
	return j.generate(userID, typeRefresh, j.refreshTTL)
}

func (j *JWT) generate(userID uuid.UUID, tokenType string, ttl time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: tokenType,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, jti, nil
}

// ParseAccessToken validates signature and expiry claims of an access token
// and extracts the user ID and JTI.
func (j *JWT) ParseAccessToken(tokenString string) (uuid.UUID, string, error) {
	return j.parse(tokenString, typeAccess)
}

// ParseRefreshToken validates signature and expiry claims of a refresh token
// and extracts the user ID and JTI.
func (j *JWT) ParseRefreshToken(tokenString string) (uuid.UUID, string, error) {
	return j.parse(tokenString, typeRefresh)
}

// ExtractRefreshJTI recovers the user ID and jti from a refresh token with a
// verified signature, skipping claim validation. Expired tokens parse fine;
// forged ones still fail.
func (j *JWT) ExtractRefreshJTI(tokenString string) (uuid.UUID, string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to parse refresh token: %w", err)
	}
	if claims.TokenType != typeRefresh {
		return uuid.Nil, "", fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return claims.UserID, claims.ID, nil
}

func (j *JWT) parse(tokenString, wantType string) (uuid.UUID, string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to parse %s token: %w", wantType, err)
	}
	if !token.Valid {
		return uuid.Nil, "", fmt.Errorf("%s token is invalid", wantType)
	}
	if claims.TokenType != wantType {
		return uuid.Nil, "", fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return claims.UserID, claims.ID, nil
}
