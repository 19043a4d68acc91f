// Package middleware contains reusable HTTP middleware for the server.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/instant-messaging/internal/model"
	"github.com/iliyamo/instant-messaging/internal/service"
)

// UserContextKey is where the authenticated user is stored in the Echo
// context. Handlers read it back with CurrentUser.
const UserContextKey = "user"

// TokenAuth validates the Bearer session token on every request and
// injects the owning user into the context. Resolution goes through
// the user service, which also slides the token's idle window, so a
// request on a valid session keeps that session alive.
func TokenAuth(users *service.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			user, err := users.ResolveToken(c.Request().Context(), raw)
			if err != nil {
				c.Logger().Errorf("token resolution failed: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			if user == nil {
				// Malformed, unknown, expired and revoked tokens are
				// indistinguishable to the client.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user placed in the context by
// TokenAuth, or nil on unauthenticated routes.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(UserContextKey).(*model.User)
	return u
}
