package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avoronkov/auth_service/internal/models"
	"github.com/avoronkov/auth_service/internal/repo"
	"github.com/avoronkov/auth_service/pkg/hash"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Role{},
		&models.RefreshToken{}, &models.LoginHistory{},
	))

	return &UserService{Repo: &repo.GormRepo{DB: db}}
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	svc := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "correctpw1", "Alice", "Liddell")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "alice", user.Login)
	assert.NotEqual(t, "correctpw1", user.PasswordHash)
	assert.True(t, hash.CheckPassword(user.PasswordHash, "correctpw1"))
}

func TestUserService_Register_WeakPassword(t *testing.T) {
	t.Parallel()

	svc := newUserService(t)

	user, err := svc.Register(context.Background(), "alice", "short", "", "")
	require.ErrorIs(t, err, ErrWeakPassword)
	assert.Nil(t, user)
}

func TestUserService_Register_DuplicateLogin(t *testing.T) {
	t.Parallel()

	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "correctpw1", "", "")
	require.NoError(t, err)

	user, err := svc.Register(ctx, "alice", "otherpw123", "", "")
	require.ErrorIs(t, err, repo.ErrUserExists)
	assert.Nil(t, user)
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Parallel()

	svc := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "correctpw1", "", "")
	require.NoError(t, err)

	t.Run("wrong previous password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user, "not-the-old-one", "newpassword1")
		require.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("weak new password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user, "correctpw1", "short")
		require.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, user, "correctpw1", "newpassword1"))

		updated, err := svc.Repo.UserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, hash.CheckPassword(updated.PasswordHash, "newpassword1"))
	})
}

func TestBootstrapAdmin_Idempotent(t *testing.T) {
	t.Parallel()

	svc := newUserService(t)
	ctx := context.Background()

	require.NoError(t, BootstrapAdmin(ctx, svc.Repo, "admin-password"))
	require.NoError(t, BootstrapAdmin(ctx, svc.Repo, "admin-password"))

	admin, err := svc.Repo.UserByLogin(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	var count int64
	require.NoError(t, svc.Repo.DB.Model(&models.User{}).Where("login = ?", "admin").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
