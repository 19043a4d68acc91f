package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/instant-messaging/internal/middleware"
	"github.com/iliyamo/instant-messaging/internal/model"
	"github.com/iliyamo/instant-messaging/internal/service"
)

// InvitationHandler serves invitation creation, listing and revocation.
type InvitationHandler struct {
	Invitations *service.InvitationService
}

func NewInvitationHandler(invitations *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{Invitations: invitations}
}

type createInvitationReq struct {
	Access    string    `json:"access"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Create issues an invitation to the channel. Requires read-write
// membership; the expiry must lie in the future.
func (h *InvitationHandler) Create(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel id"})
	}
	var req createInvitationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidAccessType(req.Access) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid access level"})
	}
	inv, err := h.Invitations.CreateInvitation(c.Request().Context(), middleware.CurrentUser(c).ID, id, model.AccessType(req.Access), req.ExpiresAt)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, toInvitationView(*inv))
}

// List returns the invitations issued for a channel.
func (h *InvitationHandler) List(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel id"})
	}
	invs, err := h.Invitations.ListInvitations(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toInvitationViews(invs))
}

// Revoke rejects a pending invitation so it can no longer be used.
func (h *InvitationHandler) Revoke(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel id"})
	}
	invID, ok := pathID(c, "invitationId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invitation id"})
	}
	if err := h.Invitations.RevokeInvitation(c.Request().Context(), middleware.CurrentUser(c).ID, id, invID); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
