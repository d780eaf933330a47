package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avoronkov/auth_service/internal/events"
	"github.com/avoronkov/auth_service/internal/models"
	"github.com/avoronkov/auth_service/internal/repo"
	"github.com/avoronkov/auth_service/internal/revocation"
	"github.com/avoronkov/auth_service/pkg/hash"
	"github.com/avoronkov/auth_service/pkg/tokens"
)

type tokenEnv struct {
	svc   *TokenService
	repo  *repo.GormRepo
	cache *revocation.Cache
}

func newTokenEnv(t *testing.T) *tokenEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Role{},
		&models.RefreshToken{}, &models.LoginHistory{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := &repo.GormRepo{DB: db}
	cache := revocation.NewCache(rdb, 15*time.Minute)

	return &tokenEnv{
		repo:  r,
		cache: cache,
		svc: &TokenService{
			Repo:          r,
			Revocation:    cache,
			Events:        events.Nop{},
			AccessSecret:  []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
		},
	}
}

func (env *tokenEnv) createUser(t *testing.T, login, password string) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{Login: login, PasswordHash: pwHash}
	require.NoError(t, env.repo.CreateUser(context.Background(), user))
	return user
}

func TestTokenService_Login_IssuesTokensForSameUser(t *testing.T) {
	t.Parallel()

	env := newTokenEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "alice", "correctpw1")

	user, pair, err := env.svc.Login(ctx, "alice", "correctpw1", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, env.svc.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), claims.Subject)

	refreshClaims, err := tokens.RefreshClaimsFromToken(pair.RefreshToken, env.svc.RefreshSecret)
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), refreshClaims.Subject)

	exists, err := env.repo.RefreshTokenExists(ctx, created.ID, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, exists)

	history, err := env.repo.LoginHistoryPage(ctx, created.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "test-agent", history[0].UserAgent)
}

func TestTokenService_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	env := newTokenEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "alice", "correctpw1")

	user, pair, err := env.svc.Login(ctx, "alice", "wrongpw", "test-agent")
	require.ErrorIs(t, err, repo.ErrInvalidCredentials)
	assert.Nil(t, user)
	assert.Nil(t, pair)

	history, err := env.repo.LoginHistoryPage(ctx, created.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, history, "no history row on failed login")
}

func TestTokenService_Login_UnknownLoginIndistinguishable(t *testing.T) {
	t.Parallel()

	env := newTokenEnv(t)

	_, _, err := env.svc.Login(context.Background(), "nobody", "whatever1", "test-agent")
	require.ErrorIs(t, err, repo.ErrInvalidCredentials)
}

func TestTokenService_Refresh_ReturnsNewAccessToken(t *testing.T) {
	t.Parallel()

	env := newTokenEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice", "correctpw1")

	user, pair, err := env.svc.Login(ctx, "alice", "correctpw1", "test-agent")
	require.NoError(t, err)

	access, exp, err := env.svc.Refresh(ctx, user, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	assert.WithinDuration(t, time.Now().Add(env.svc.AccessTTL), exp, 5*time.Second)

	claims, err := tokens.AccessClaimsFromToken(access, env.svc.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)

	// no rotation: the same refresh token keeps working
	exists, err := env.repo.RefreshTokenExists(ctx, user.ID, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTokenService_Refresh_UnknownTokenRejected(t *testing.T) {
	t.Parallel()

	env := newTokenEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice", "correctpw1")

	user, _, err := env.svc.Login(ctx, "alice", "correctpw1", "test-agent")
	require.NoError(t, err)

	access, _, err := env.svc.Refresh(ctx, user, "never-persisted")
	require.ErrorIs(t, err, ErrRefreshRejected)
	assert.Empty(t, access)
}

func TestTokenService_Refresh_CrossUserSubstitutionRejected(t *testing.T) {
	t.Parallel()

	env := newTokenEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice", "correctpw1")
	env.createUser(t, "bob", "bobpassword")

	_, alicePair, err := env.svc.Login(ctx, "alice", "correctpw1", "test-agent")
	require.NoError(t, err)
	bob, _, err := env.svc.Login(ctx, "bob", "bobpassword", "test-agent")
	require.NoError(t, err)

	_, _, err = env.svc.Refresh(ctx, bob, alicePair.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshRejected)
}

func TestTokenService_Logout_InvalidatesEverything(t *testing.T) {
	t.Parallel()

	env := newTokenEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice", "correctpw1")

	user, pair, err := env.svc.Login(ctx, "alice", "correctpw1", "agent-one")
	require.NoError(t, err)
	_, pairTwo, err := env.svc.Login(ctx, "alice", "correctpw1", "agent-two")
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, user.ID))

	// every refresh token for the user is gone
	for _, token := range []string{pair.RefreshToken, pairTwo.RefreshToken} {
		_, _, err := env.svc.Refresh(ctx, user, token)
		require.ErrorIs(t, err, ErrRefreshRejected)
	}

	// the revocation marker covers the login instant
	loginClaims, err := tokens.AccessClaimsFromToken(pair.AccessToken, env.svc.AccessSecret)
	require.NoError(t, err)
	markerAt, found, err := env.cache.LogoutTime(ctx, user.ID.String())
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, loginClaims.IssuedAt.Time.After(markerAt),
		"access token issued before logout must not postdate the marker")
}

func TestTokenService_Logout_Idempotent(t *testing.T) {
	t.Parallel()

	env := newTokenEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice", "correctpw1")

	user, _, err := env.svc.Login(ctx, "alice", "correctpw1", "test-agent")
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, user.ID))
	require.NoError(t, env.svc.Logout(ctx, user.ID))

	var count int64
	require.NoError(t, env.repo.DB.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}
