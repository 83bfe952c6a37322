package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWT {
	return &JWT{secretKey: "secret", accessTTL: 15 * time.Minute, refreshTTL: 30 * 24 * time.Hour}
}

func TestJWT_AccessToken_Roundtrip(t *testing.T) {
	j := newTestJWT()
	u := uuid.New()

	access, jti, err := j.GenerateAccessToken(u)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	gotUser, gotJTI, err := j.ParseAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, u, gotUser)
	require.Equal(t, jti, gotJTI)
}

func TestJWT_RefreshToken_Roundtrip(t *testing.T) {
	j := newTestJWT()
	u := uuid.New()

	refresh, jti, err := j.GenerateRefreshToken(u)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	gotUser, gotJTI, err := j.ParseRefreshToken(refresh)
	require.NoError(t, err)
	require.Equal(t, u, gotUser)
	require.Equal(t, jti, gotJTI)
}

func TestJWT_TokenType_Mismatch(t *testing.T) {
	j := newTestJWT()
	u := uuid.New()

	access, _, err := j.GenerateAccessToken(u)
	require.NoError(t, err)

	_, _, err = j.ParseRefreshToken(access)
	require.Error(t, err)
}

func TestJWT_WrongSecret(t *testing.T) {
	j := newTestJWT()
	u := uuid.New()

	access, _, err := j.GenerateAccessToken(u)
	require.NoError(t, err)

	other := &JWT{secretKey: "other", accessTTL: j.accessTTL, refreshTTL: j.refreshTTL}
	_, _, err = other.ParseAccessToken(access)
	require.Error(t, err)
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := &JWT{secretKey: "secret", accessTTL: -time.Minute, refreshTTL: -time.Minute}
	u := uuid.New()

	access, _, err := j.GenerateAccessToken(u)
	require.NoError(t, err)

	_, _, err = j.ParseAccessToken(access)
	require.Error(t, err)
}

func TestJWT_ExtractRefreshJTI(t *testing.T) {
	u := uuid.New()

	t.Run("expired token still yields claims", func(t *testing.T) {
		j := &JWT{secretKey: "secret", accessTTL: -time.Minute, refreshTTL: -time.Minute}

		refresh, jti, err := j.GenerateRefreshToken(u)
		require.NoError(t, err)

		_, _, err = j.ParseRefreshToken(refresh)
		require.Error(t, err)

		gotUser, gotJTI, err := j.ExtractRefreshJTI(refresh)
		require.NoError(t, err)
		require.Equal(t, u, gotUser)
		require.Equal(t, jti, gotJTI)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		j := newTestJWT()
		refresh, _, err := j.GenerateRefreshToken(u)
		require.NoError(t, err)

		other := &JWT{secretKey: "other"}
		_, _, err = other.ExtractRefreshJTI(refresh)
		require.Error(t, err)
	})

	t.Run("access token rejected", func(t *testing.T) {
		j := newTestJWT()
		access, _, err := j.GenerateAccessToken(u)
		require.NoError(t, err)

		_, _, err = j.ExtractRefreshJTI(access)
		require.Error(t, err)
	})
}

func TestJWT_TTLAccessors(t *testing.T) {
	j := newTestJWT()
	require.Equal(t, 15*time.Minute, j.AccessTTL())
	require.Equal(t, 30*24*time.Hour, j.RefreshTTL())
}
