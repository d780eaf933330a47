package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avoronkov/auth_service/internal/repo"
	"github.com/avoronkov/auth_service/internal/service"
)

// httpError maps domain sentinels to stable status codes. Anything
// unrecognized is an infrastructure failure and comes back as a 500.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, repo.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid login or password")
	case errors.Is(err, service.ErrRefreshRejected):
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token is invalid")
	case errors.Is(err, service.ErrWrongPassword):
		return echo.NewHTTPError(http.StatusBadRequest, "wrong password given")
	case errors.Is(err, service.ErrWeakPassword):
		return echo.NewHTTPError(http.StatusBadRequest, "password is too weak")
	case errors.Is(err, repo.ErrUserExists):
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	case errors.Is(err, repo.ErrRoleExists):
		return echo.NewHTTPError(http.StatusConflict, "role already exists")
	case errors.Is(err, repo.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case errors.Is(err, repo.ErrRoleNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "role not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
