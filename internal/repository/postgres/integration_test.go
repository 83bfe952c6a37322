//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/humanoid-ai/humanoid-server/internal/model"
	repo "github.com/humanoid-ai/humanoid-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "humanoid_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/humanoid_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func createUser(t *testing.T, ctx context.Context, conn *repo.Connection, username string) model.User {
	t.Helper()
	ur := repo.NewUserRepository(conn)
	u, err := ur.Create(ctx, model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: []byte("x"),
		Role:         model.RoleUser,
	})
	require.NoError(t, err)
	return u
}

func TestAuthTokenRepository(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	tr := repo.NewAuthTokenRepository(conn)
	user := createUser(t, ctx, conn, "tokens")

	newToken := func(jti string, tokenType model.TokenType, parent *string) model.AuthToken {
		return model.AuthToken{
			ID:        uuid.New(),
			JTI:       jti,
			UserID:    user.ID,
			Type:      tokenType,
			TokenHash: []byte("hash-" + jti),
			ParentJTI: parent,
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
		}
	}

	t.Run("create_and_get", func(t *testing.T) {
		tok := newToken("jti-a", model.TokenTypeRefresh, nil)
		require.NoError(t, tr.Create(ctx, tok))

		byHash, err := tr.GetByHash(ctx, tok.TokenHash)
		require.NoError(t, err)
		require.Equal(t, tok.JTI, byHash.JTI)

		byJTI, err := tr.GetByJTI(ctx, tok.JTI)
		require.NoError(t, err)
		require.Equal(t, tok.ID, byJTI.ID)
	})

	t.Run("duplicate_jti_rejected", func(t *testing.T) {
		tok := newToken("jti-a", model.TokenTypeRefresh, nil)
		tok.TokenHash = []byte("other-hash")
		require.ErrorIs(t, tr.Create(ctx, tok), model.ErrDuplicateToken)
	})

	t.Run("duplicate_hash_rejected", func(t *testing.T) {
		tok := newToken("jti-other", model.TokenTypeRefresh, nil)
		tok.TokenHash = []byte("hash-jti-a")
		require.ErrorIs(t, tr.Create(ctx, tok), model.ErrDuplicateToken)
	})

	t.Run("revoke_tree_cascades_with_one_timestamp", func(t *testing.T) {
		parent := "jti-root"
		require.NoError(t, tr.Create(ctx, newToken(parent, model.TokenTypeRefresh, nil)))
		require.NoError(t, tr.Create(ctx, newToken("jti-child-1", model.TokenTypeAccess, &parent)))
		require.NoError(t, tr.Create(ctx, newToken("jti-child-2", model.TokenTypeAccess, &parent)))

		require.NoError(t, tr.RevokeTree(ctx, parent))

		root, err := tr.GetByJTI(ctx, parent)
		require.NoError(t, err)
		require.True(t, root.Revoked)
		require.NotNil(t, root.RevokedAt)

		for _, jti := range []string{"jti-child-1", "jti-child-2"} {
			child, err := tr.GetByJTI(ctx, jti)
			require.NoError(t, err)
			require.True(t, child.Revoked)
			require.NotNil(t, child.RevokedAt)
			// Single statement, single NOW().
			require.Equal(t, *root.RevokedAt, *child.RevokedAt)
		}

		// Idempotent: second revoke does not move timestamps.
		firstRevokedAt := *root.RevokedAt
		require.NoError(t, tr.RevokeTree(ctx, parent))
		again, err := tr.GetByJTI(ctx, parent)
		require.NoError(t, err)
		require.Equal(t, firstRevokedAt, *again.RevokedAt)
	})

	t.Run("delete_older_than_never_touches_live_records", func(t *testing.T) {
		live := newToken("jti-live", model.TokenTypeRefresh, nil)
		require.NoError(t, tr.Create(ctx, live))

		deleted, err := tr.DeleteOlderThan(ctx, time.Now().Add(-30*24*time.Hour))
		require.NoError(t, err)
		require.Zero(t, deleted)

		_, err = tr.GetByJTI(ctx, "jti-live")
		require.NoError(t, err)
	})

	t.Run("delete_older_than_removes_long_expired", func(t *testing.T) {
		old := newToken("jti-ancient", model.TokenTypeAccess, nil)
		old.CreatedAt = time.Now().Add(-90 * 24 * time.Hour)
		old.ExpiresAt = time.Now().Add(-60 * 24 * time.Hour)
		require.NoError(t, tr.Create(ctx, old))

		deleted, err := tr.DeleteOlderThan(ctx, time.Now().Add(-30*24*time.Hour))
		require.NoError(t, err)
		require.GreaterOrEqual(t, deleted, int64(1))

		_, err = tr.GetByJTI(ctx, "jti-ancient")
		require.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestPoolRepositories(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	cr := repo.NewCredentialPoolRepository(conn)
	ar := repo.NewAssignmentRepository(conn)

	addCredential := func(name string) model.PoolCredential {
		cred, err := cr.Create(ctx, model.PoolCredential{
			ID:     uuid.New(),
			Name:   name,
			Value:  "hf_" + name,
			Active: true,
		})
		require.NoError(t, err)
		return cred
	}

	acquire := func(user model.User, jti string) model.Assignment {
		a, err := ar.Acquire(ctx, model.Assignment{
			ID:         uuid.New(),
			UserID:     user.ID,
			SessionJTI: jti,
		})
		require.NoError(t, err)
		return a
	}

	t.Run("least_loaded_with_tie_break", func(t *testing.T) {
		creds := []model.PoolCredential{
			addCredential("c0"), addCredential("c1"), addCredential("c2"), addCredential("c3"),
		}

		// Seed loads 3,1,1,5 across the four credentials.
		seed := 0
		for i, n := range []int{3, 1, 1, 5} {
			for j := 0; j < n; j++ {
				u := createUser(t, ctx, conn, fmt.Sprintf("seed-%d-%d", i, j))
				_, err := conn.Exec(ctx, `
					INSERT INTO pool_assignments (id, user_id, credential_id, session_jti, is_active, assigned_at)
					VALUES ($1, $2, $3, $4, TRUE, NOW())`,
					uuid.New(), u.ID, creds[i].ID, fmt.Sprintf("seed-jti-%d", seed))
				require.NoError(t, err)
				seed++
			}
		}

		// Both load-1 credentials exist; the older one wins.
		user := createUser(t, ctx, conn, "leastloaded")
		a := acquire(user, "ll-jti-1")
		require.Equal(t, creds[1].ID, a.CredentialID)

		// That credential now carries 2; the next acquire goes to the other.
		user2 := createUser(t, ctx, conn, "leastloaded2")
		a2 := acquire(user2, "ll-jti-2")
		require.Equal(t, creds[2].ID, a2.CredentialID)

		loads, err := cr.ListWithLoad(ctx)
		require.NoError(t, err)
		byID := map[uuid.UUID]int{}
		for _, l := range loads {
			byID[l.Credential.ID] = l.ActiveAssignments
		}
		require.Equal(t, 3, byID[creds[0].ID])
		require.Equal(t, 2, byID[creds[1].ID])
		require.Equal(t, 2, byID[creds[2].ID])
		require.Equal(t, 5, byID[creds[3].ID])
	})

	t.Run("release_is_idempotent", func(t *testing.T) {
		user := createUser(t, ctx, conn, "release")
		a := acquire(user, "rel-jti")

		require.NoError(t, ar.Release(ctx, "rel-jti"))
		require.ErrorIs(t, ar.Release(ctx, "rel-jti"), model.ErrAssignmentNotFound)

		list, err := ar.ListByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.False(t, list[0].Active)
		require.NotNil(t, list[0].ReleasedAt)
		require.Equal(t, a.CredentialID, list[0].CredentialID)
	})

	t.Run("released_session_can_reacquire", func(t *testing.T) {
		user := createUser(t, ctx, conn, "reacquire")
		acquire(user, "re-jti")
		require.NoError(t, ar.Release(ctx, "re-jti"))

		// The partial unique index only blocks a second ACTIVE assignment
		// for the same session.
		acquire(user, "re-jti")
	})

	t.Run("exhausted_when_all_inactive", func(t *testing.T) {
		loads, err := cr.ListWithLoad(ctx)
		require.NoError(t, err)
		for _, l := range loads {
			require.NoError(t, cr.SetActive(ctx, l.Credential.ID, false))
		}

		user := createUser(t, ctx, conn, "exhausted")
		_, err = ar.Acquire(ctx, model.Assignment{
			ID:         uuid.New(),
			UserID:     user.ID,
			SessionJTI: "ex-jti",
		})
		require.ErrorIs(t, err, model.ErrPoolExhausted)

		for _, l := range loads {
			require.NoError(t, cr.SetActive(ctx, l.Credential.ID, true))
		}
	})
}

func TestConversationAndProductRepositories(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	user := createUser(t, ctx, conn, "content")

	t.Run("conversation_roundtrip", func(t *testing.T) {
		cr := repo.NewConversationRepository(conn)

		conv, err := cr.CreateConversation(ctx, model.Conversation{UserID: user.ID, Title: "first"})
		require.NoError(t, err)

		_, err = cr.AppendMessage(ctx, model.Message{
			ConversationID: conv.ID,
			Role:           model.MessageRoleUser,
			Content:        "hello",
		})
		require.NoError(t, err)
		_, err = cr.AppendMessage(ctx, model.Message{
			ConversationID: conv.ID,
			Role:           model.MessageRoleAssistant,
			Content:        "hi",
		})
		require.NoError(t, err)

		messages, err := cr.ListMessages(ctx, conv.ID)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		require.Equal(t, model.MessageRoleUser, messages[0].Role)

		require.NoError(t, cr.SetTitle(ctx, conv.ID, "renamed"))
		got, err := cr.GetConversation(ctx, conv.ID)
		require.NoError(t, err)
		require.Equal(t, "renamed", got.Title)
	})

	t.Run("product_roundtrip", func(t *testing.T) {
		pr := repo.NewProductRepository(conn)

		p, err := pr.Create(ctx, model.Product{
			ID:         uuid.New(),
			OwnerID:    user.ID,
			Name:       "widget",
			PriceCents: 1999,
			ImageKey:   "key",
		})
		require.NoError(t, err)

		got, err := pr.GetByID(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, int64(1999), got.PriceCents)

		list, err := pr.ListByUser(ctx, user.ID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(list), 1)

		require.NoError(t, pr.Delete(ctx, p.ID))
		_, err = pr.GetByID(ctx, p.ID)
		require.ErrorIs(t, err, model.ErrNotFound)
	})
}
