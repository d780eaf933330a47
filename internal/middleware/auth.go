package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avoronkov/auth_service/internal/cookies"
	"github.com/avoronkov/auth_service/internal/models"
	"github.com/avoronkov/auth_service/internal/repo"
	"github.com/avoronkov/auth_service/internal/revocation"
	"github.com/avoronkov/auth_service/pkg/logging"
	"github.com/avoronkov/auth_service/pkg/tokens"
)

const (
	userContextKey    = "current_user"
	refreshContextKey = "refresh_token"
)

// Guard authenticates requests. Access tokens are verified without any
// database allow-list: signature, expiry, then the revocation marker. The
// only store reads are the user load and one cache GET.
type Guard struct {
	Repo       *repo.GormRepo
	Revocation *revocation.Cache

	AccessSecret  []byte
	RefreshSecret []byte
}

// RequireAuth admits a request only if the presented access token has a
// valid signature, is unexpired, its subject still exists, and its
// issued-at strictly postdates the user's latest logout marker. A revoked
// token is answered exactly like a bad one.
func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := tokenFromRequest(c, cookies.AccessToken)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, g.AccessSecret)
		if err != nil {
			unsetTokenCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		user, err := g.loadSubject(c, claims.Subject)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		logoutAt, found, err := g.Revocation.LogoutTime(ctx, user.ID.String())
		if err != nil {
			// cache down: fail closed
			logging.FromContext(ctx).Error("revocation cache read failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if found && !claims.IssuedAt.Time.After(logoutAt) {
			unsetTokenCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// RequireRefresh validates the refresh token's signature and expiry and
// resolves its subject. Store membership is checked later by the token
// service; refresh tokens are not subject to the revocation marker.
func (g *Guard) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := tokenFromRequest(c, cookies.RefreshToken)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
		}

		claims, err := tokens.RefreshClaimsFromToken(raw, g.RefreshSecret)
		if err != nil {
			unsetTokenCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		user, err := g.loadSubject(c, claims.Subject)
		if err != nil {
			return err
		}

		c.Set(userContextKey, user)
		c.Set(refreshContextKey, raw)
		return next(c)
	}
}

// RequireAdmin layers the role check on an already authenticated request.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := UserFromContext(c)
		if user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}
		if !user.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		return next(c)
	}
}

func (g *Guard) loadSubject(c echo.Context, subject string) (*models.User, error) {
	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}

	user, err := g.Repo.UserByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			unsetTokenCookies(c)
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return user, nil
}

func UserFromContext(c echo.Context) *models.User {
	if user, ok := c.Get(userContextKey).(*models.User); ok {
		return user
	}
	return nil
}

func RefreshTokenFromContext(c echo.Context) string {
	if token, ok := c.Get(refreshContextKey).(string); ok {
		return token
	}
	return ""
}

// tokenFromRequest prefers the named cookie and falls back to the
// Authorization header.
func tokenFromRequest(c echo.Context, cookieName string) string {
	if ck, err := c.Cookie(cookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func unsetTokenCookies(c echo.Context) {
	c.SetCookie(cookies.Delete(cookies.AccessToken))
	c.SetCookie(cookies.Delete(cookies.RefreshToken))
}
