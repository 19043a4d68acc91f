// Package handler contains the HTTP handlers for the REST API.
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/instant-messaging/internal/middleware"
	"github.com/iliyamo/instant-messaging/internal/service"
)

// AuthHandler serves registration, login and account management.
type AuthHandler struct {
	Users *service.UserService
}

func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	InvitationToken string `json:"invitation_token"` // required after the first user
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type loginResp struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
type updateUsernameReq struct {
	Username string `json:"username"`
}
type updatePasswordReq struct {
	Password string `json:"password"`
}

// Register creates an account. The very first account needs no
// invitation; every later one must present a pending invitation token
// and joins that invitation's channel on success.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	user, err := h.Users.Register(c.Request().Context(), strings.TrimSpace(req.Username), req.Password, req.InvitationToken)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, toUserView(*user))
}

// Login verifies credentials and issues a session token. The raw
// token value appears only in this response; the server keeps just a
// fingerprint.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	info, err := h.Users.CreateToken(c.Request().Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, loginResp{Token: info.Value, ExpiresAt: info.ExpiresAt.UTC().Format(time.RFC3339)})
}

// Logout revokes the session token that authenticated this request.
// Revoking an already-revoked token is a no-op.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	if err := h.Users.RevokeToken(c.Request().Context(), raw); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, toUserView(*middleware.CurrentUser(c)))
}

// GetUser looks a user up by id, or by exact username when the
// username query parameter is set.
func (h *AuthHandler) GetUser(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	user, err := h.Users.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toUserView(*user))
}

// FindUser resolves a username to a user.
func (h *AuthHandler) FindUser(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("username"))
	user, err := h.Users.GetUserByUsername(c.Request().Context(), name)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toUserView(*user))
}

// UpdateUsername renames the authenticated user.
func (h *AuthHandler) UpdateUsername(c echo.Context) error {
	var req updateUsernameReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	user, err := h.Users.UpdateUsername(c.Request().Context(), middleware.CurrentUser(c).ID, strings.TrimSpace(req.Username))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toUserView(*user))
}

// UpdatePassword replaces the authenticated user's password. The new
// password must differ from the current one and meet the safety rules.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req updatePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Users.UpdatePassword(c.Request().Context(), middleware.CurrentUser(c).ID, req.Password); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAccount removes the authenticated user. Owners must delete or
// hand off their channels first.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	if err := h.Users.DeleteUser(c.Request().Context(), middleware.CurrentUser(c).ID); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
