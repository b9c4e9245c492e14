package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-system/internal/core/ports"
)

// AdminHandler serves the user and role administration endpoints. Every
// route is expected to sit behind an ADMIN authority check.
type AdminHandler struct {
	authService  ports.AuthService
	auditService ports.AuditService
}

func NewAdminHandler(authService ports.AuthService, auditService ports.AuditService) *AdminHandler {
	return &AdminHandler{authService: authService, auditService: auditService}
}

// AddRole grants a role to a user.
//
// @Summary      Grant role
// @Tags         admin
// @Security     BearerAuth
// @Param        username  path  string  true  "Username"
// @Param        role      path  string  true  "Role name"
// @Success      201
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /security/admin/user/{username}/role/{role} [post]
func (h *AdminHandler) AddRole(c echo.Context) error {
	if err := h.authService.AddRole(c.Request().Context(), c.Param("username"), c.Param("role")); err != nil {
		return err
	}
	return c.NoContent(http.StatusCreated)
}

// RemoveRole revokes a role from a user. Revoking a role that is not held
// succeeds.
//
// @Summary      Revoke role
// @Tags         admin
// @Security     BearerAuth
// @Param        username  path  string  true  "Username"
// @Param        role      path  string  true  "Role name"
// @Success      200
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /security/admin/user/{username}/role/{role} [delete]
func (h *AdminHandler) RemoveRole(c echo.Context) error {
	if err := h.authService.RemoveRole(c.Request().Context(), c.Param("username"), c.Param("role")); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// ListUsers returns one page of users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "1-based page number"  default(1)
// @Param        size  query     int  false  "Page size (max 100)"  default(20)
// @Success      200   {object}  userPageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /security/admin/user [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	req, err := pageRequest(c)
	if err != nil {
		return err
	}
	page, err := h.authService.ListUsers(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserPageResponse(page))
}

// GetByUsername looks a user up by username.
//
// @Summary      Get user by username
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  userDetailResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /security/admin/user/username/{username} [get]
func (h *AdminHandler) GetByUsername(c echo.Context) error {
	user, err := h.authService.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserDetailResponse(user))
}

// GetByUserID looks a user up by identifier.
//
// @Summary      Get user by id
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string  true  "User id (uuid)"
// @Success      200      {object}  userDetailResponse
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /security/admin/user/user_id/{user_id} [get]
func (h *AdminHandler) GetByUserID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id must be a uuid")
	}
	user, err := h.authService.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserDetailResponse(user))
}

// ListRoles returns the grants held by a user.
//
// @Summary      List roles of a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {array}   roleResponse
// @Failure      403       {object}  errorResponse
// @Router       /security/admin/user/{username}/roles [get]
func (h *AdminHandler) ListRoles(c echo.Context) error {
	roles, err := h.authService.ListRoles(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponses(roles))
}

// Events returns the latest audit events of a user, newest first.
//
// @Summary      Audit trail of a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true   "Username"
// @Param        limit     query     int     false  "Max events (max 100)"  default(50)
// @Success      200       {array}   eventResponse
// @Failure      400       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /security/admin/user/{username}/events [get]
func (h *AdminHandler) Events(c echo.Context) error {
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return err
	}
	events, err := h.auditService.Recent(c.Request().Context(), c.Param("username"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}
