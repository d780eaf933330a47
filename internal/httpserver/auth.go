package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avoronkov/auth_service/internal/cookies"
	"github.com/avoronkov/auth_service/internal/middleware"
	"github.com/avoronkov/auth_service/internal/service"
	"github.com/avoronkov/auth_service/pkg/logging"
)

type AuthHTTP struct {
	Tokens *service.TokenService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	_, pair, err := h.Tokens.Login(ctx, req.Login, req.Password, c.Request().UserAgent())
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(cookies.Create(cookies.AccessToken, pair.AccessToken, pair.AccessExpiresAt))
	c.SetCookie(cookies.Create(cookies.RefreshToken, pair.RefreshToken, pair.RefreshExpiresAt))

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	user := middleware.UserFromContext(c)
	presented := middleware.RefreshTokenFromContext(c)
	if user == nil || presented == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	access, accessExp, err := h.Tokens.Refresh(ctx, user, presented)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(cookies.Create(cookies.AccessToken, access, accessExp))

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": access,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	user := middleware.UserFromContext(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	if err := h.Tokens.Logout(ctx, user.ID); err != nil {
		return httpError(err)
	}

	c.SetCookie(cookies.Delete(cookies.AccessToken))
	c.SetCookie(cookies.Delete(cookies.RefreshToken))

	return c.NoContent(http.StatusNoContent)
}
