package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avoronkov/auth_service/internal/events"
	"github.com/avoronkov/auth_service/internal/models"
	"github.com/avoronkov/auth_service/internal/repo"
	"github.com/avoronkov/auth_service/internal/revocation"
	"github.com/avoronkov/auth_service/pkg/logging"
	"github.com/avoronkov/auth_service/pkg/tokens"
)

// TokenService composes credential verification, token issuance, the
// refresh-token store and the revocation cache into the login, refresh and
// logout operations.
type TokenService struct {
	Repo       *repo.GormRepo
	Revocation *revocation.Cache
	Events     events.Publisher

	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Login verifies credentials, issues both tokens and records the refresh
// token and a login-history row in one transaction. If any persistence step
// fails the login fails as a whole and no tokens leave this method.
func (s *TokenService) Login(ctx context.Context, login, password, userAgent string) (*models.User, *TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "token.login", "login", login)

	user, err := s.Repo.AuthenticateUser(ctx, login, password)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	pair, err := s.issuePair(user.ID, now)
	if err != nil {
		l.Error("token issue failed", "error", err)
		return nil, nil, err
	}

	err = s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &repo.GormRepo{DB: tx}
		if err := txRepo.SaveRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
			return err
		}
		return txRepo.SaveLoginHistory(ctx, user.ID, userAgent, now)
	})
	if err != nil {
		l.Error("login persistence failed", "error", err)
		return nil, nil, err
	}

	s.publish(ctx, events.Event{Type: events.TypeUserLoggedIn, UserID: user.ID.String(), Login: user.Login})
	l.Info("login successful", "user_id", user.ID)
	return user, pair, nil
}

// Refresh exchanges a previously issued refresh token for a new access
// token. The caller has already validated the token's signature and expiry
// and resolved user from its subject; here the token must additionally
// still be present in the store. The refresh token is not rotated: it stays
// valid until logout.
func (s *TokenService) Refresh(ctx context.Context, user *models.User, presentedRefresh string) (string, time.Time, error) {
	l := logging.FromContext(ctx).With("svc", "token.refresh", "user_id", user.ID)

	exists, err := s.Repo.RefreshTokenExists(ctx, user.ID, presentedRefresh)
	if err != nil {
		return "", time.Time{}, err
	}
	if !exists {
		l.Warn("refresh token not found in store")
		return "", time.Time{}, ErrRefreshRejected
	}

	now := time.Now()
	exp := now.Add(s.AccessTTL)
	access, err := tokens.NewAccessToken(user.ID.String(), now, exp, s.AccessSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	l.Info("access token refreshed")
	return access, exp, nil
}

// Logout invalidates every session of the user at once: all refresh rows
// are deleted and a revocation marker is written at now(). The two writes
// hit independent stores; the marker takes effect for access tokens even if
// the delete lands a moment later.
func (s *TokenService) Logout(ctx context.Context, userID uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "token.logout", "user_id", userID)

	if err := s.Repo.DeleteRefreshTokens(ctx, userID); err != nil {
		l.Error("refresh token delete failed", "error", err)
		return err
	}
	if err := s.Revocation.MarkLogout(ctx, userID.String(), time.Now()); err != nil {
		l.Error("revocation marker write failed", "error", err)
		return err
	}

	s.publish(ctx, events.Event{Type: events.TypeUserLoggedOut, UserID: userID.String()})
	l.Info("logged out everywhere")
	return nil
}

func (s *TokenService) issuePair(userID uuid.UUID, now time.Time) (*TokenPair, error) {
	accessExp := now.Add(s.AccessTTL)
	access, err := tokens.NewAccessToken(userID.String(), now, accessExp, s.AccessSecret)
	if err != nil {
		return nil, err
	}

	refreshExp := now.Add(s.RefreshTTL)
	refresh, err := tokens.NewRefreshToken(userID.String(), now, refreshExp, s.RefreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// publish is best-effort: audit events never fail the request.
func (s *TokenService) publish(ctx context.Context, event events.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("audit event publish failed", "type", event.Type, "error", err)
	}
}
