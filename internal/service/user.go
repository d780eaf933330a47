package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/avoronkov/auth_service/internal/events"
	"github.com/avoronkov/auth_service/internal/models"
	"github.com/avoronkov/auth_service/internal/repo"
	"github.com/avoronkov/auth_service/pkg/hash"
	"github.com/avoronkov/auth_service/pkg/logging"
)

const minPasswordLen = 8

type UserService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *UserService) Register(ctx context.Context, login, password, firstName, lastName string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.register", "login", login)

	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("password hash failed", "error", err)
		return nil, err
	}

	user := &models.User{
		Login:        login,
		PasswordHash: pwHash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.Events != nil {
		event := events.Event{Type: events.TypeUserRegistered, UserID: user.ID.String(), Login: user.Login}
		if err := s.Events.Publish(ctx, event); err != nil {
			l.Warn("audit event publish failed", "error", err)
		}
	}

	l.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, user *models.User, previous, next string) error {
	l := logging.FromContext(ctx).With("svc", "user.change_password", "user_id", user.ID)

	if !hash.CheckPassword(user.PasswordHash, previous) {
		return ErrWrongPassword
	}
	if len(next) < minPasswordLen {
		return ErrWeakPassword
	}

	pwHash, err := hash.HashPassword(next)
	if err != nil {
		l.Error("password hash failed", "error", err)
		return err
	}
	return s.Repo.UpdatePassword(ctx, user.ID, pwHash)
}

func (s *UserService) LoginHistory(ctx context.Context, userID uuid.UUID, page, size int) ([]models.LoginHistory, error) {
	return s.Repo.LoginHistoryPage(ctx, userID, page, size)
}
