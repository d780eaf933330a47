package service

import (
	"context"
	"errors"

	"github.com/avoronkov/auth_service/internal/models"
	"github.com/avoronkov/auth_service/internal/repo"
	"github.com/avoronkov/auth_service/pkg/hash"
	"github.com/avoronkov/auth_service/pkg/logging"
)

const adminLogin = "admin"

// BootstrapAdmin makes sure the "admin" role and the "admin" user exist.
// It runs on every startup; conflicts with records created by an earlier
// run are swallowed, so the step is idempotent.
func BootstrapAdmin(ctx context.Context, r *repo.GormRepo, password string) error {
	l := logging.FromContext(ctx).With("svc", "bootstrap")

	role := &models.Role{Name: models.AdminRoleName}
	if err := r.CreateRole(ctx, role); err != nil {
		if !errors.Is(err, repo.ErrRoleExists) {
			return err
		}
		existing, err := r.RoleByName(ctx, models.AdminRoleName)
		if err != nil {
			return err
		}
		role = existing
	}

	if _, err := r.UserByLogin(ctx, adminLogin); err == nil {
		return nil
	} else if !errors.Is(err, repo.ErrUserNotFound) {
		return err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	user := &models.User{
		Login:        adminLogin,
		PasswordHash: pwHash,
		Roles:        []models.Role{*role},
	}
	if err := r.CreateUser(ctx, user); err != nil {
		// a concurrent replica may have won the race
		if errors.Is(err, repo.ErrUserExists) {
			return nil
		}
		return err
	}

	l.Info("admin user created", "user_id", user.ID)
	return nil
}
