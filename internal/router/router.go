// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/instant-messaging/internal/handler"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth        *handler.AuthHandler
	Channels    *handler.ChannelHandler
	Invitations *handler.InvitationHandler
	Messages    *handler.MessageHandler
	Events      *handler.EventsHandler
}

// Register wires all routes. Unauthenticated operations live under
// /v1/auth and are rate limited; everything else sits behind the
// session-token middleware under /v1.
func Register(e *echo.Echo, h Handlers, authMW, rateMW echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	// Pre-auth endpoints are the brute-force surface, so the token
	// bucket guards them.
	pub := e.Group("/v1/auth", rateMW)
	pub.POST("/register", h.Auth.Register)
	pub.POST("/login", h.Auth.Login)

	v1 := e.Group("/v1", authMW)

	// ---- Account ----
	v1.POST("/auth/logout", h.Auth.Logout)
	v1.GET("/users/me", h.Auth.Me)
	v1.GET("/users/find", h.Auth.FindUser)
	v1.GET("/users/:id", h.Auth.GetUser)
	v1.PATCH("/users/me/username", h.Auth.UpdateUsername)
	v1.PATCH("/users/me/password", h.Auth.UpdatePassword)
	v1.DELETE("/users/me", h.Auth.DeleteAccount)

	// ---- Channels ----
	v1.POST("/channels", h.Channels.Create)
	v1.GET("/channels", h.Channels.Joined)
	v1.GET("/channels/search", h.Channels.Search)
	v1.GET("/channels/:id", h.Channels.Get)
	v1.PUT("/channels/:id", h.Channels.Edit)
	v1.GET("/channels/:id/members", h.Channels.Members)
	v1.GET("/channels/:id/access", h.Channels.MyAccess)
	v1.PUT("/channels/:id/members/:userId/access", h.Channels.UpdateAccess)
	v1.POST("/channels/:id/join", h.Channels.JoinPublic)
	v1.POST("/channels/join", h.Channels.JoinPrivate)
	v1.POST("/channels/:id/leave", h.Channels.Leave)

	// ---- Invitations ----
	v1.POST("/channels/:id/invitations", h.Invitations.Create)
	v1.GET("/channels/:id/invitations", h.Invitations.List)
	v1.DELETE("/channels/:id/invitations/:invitationId", h.Invitations.Revoke)

	// ---- Messages ----
	v1.POST("/channels/:id/messages", h.Messages.Create)
	v1.GET("/channels/:id/messages", h.Messages.List)

	// ---- Event stream ----
	v1.GET("/channels/:id/events", h.Events.Stream)
}
