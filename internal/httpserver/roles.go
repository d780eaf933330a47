package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avoronkov/auth_service/internal/service"
)

type RoleHTTP struct {
	Roles *service.RoleService
}

func (h *RoleHTTP) List(c echo.Context) error {
	page, size := pagination(c)
	roles, err := h.Roles.Roles(c.Request().Context(), page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *RoleHTTP) Create(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	role, err := h.Roles.Create(c.Request().Context(), req.Name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, role)
}

func (h *RoleHTTP) Update(c echo.Context) error {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role id")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	role, err := h.Roles.Update(c.Request().Context(), roleID, req.Name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RoleHTTP) Delete(c echo.Context) error {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role id")
	}

	if err := h.Roles.Delete(c.Request().Context(), roleID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RoleHTTP) Attach(c echo.Context) error {
	userID, roleID, httpErr := bindAttachForm(c)
	if httpErr != nil {
		return httpErr
	}
	if err := h.Roles.Attach(c.Request().Context(), userID, roleID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RoleHTTP) Detach(c echo.Context) error {
	userID, roleID, httpErr := bindAttachForm(c)
	if httpErr != nil {
		return httpErr
	}
	if err := h.Roles.Detach(c.Request().Context(), userID, roleID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func bindAttachForm(c echo.Context) (userID, roleID uuid.UUID, httpErr *echo.HTTPError) {
	var req struct {
		UserID string `json:"user_id"`
		RoleID string `json:"role_id"`
	}
	if err := c.Bind(&req); err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	roleID, err = uuid.Parse(req.RoleID)
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid role id")
	}
	return userID, roleID, nil
}
