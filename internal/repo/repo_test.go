package repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avoronkov/auth_service/internal/models"
	"github.com/avoronkov/auth_service/pkg/hash"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Role{},
		&models.RefreshToken{}, &models.LoginHistory{},
	))

	return &GormRepo{DB: db}
}

func createTestUser(t *testing.T, r *GormRepo, login, password string) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{Login: login, PasswordHash: pwHash}
	require.NoError(t, r.CreateUser(context.Background(), user))
	return user
}
