package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/instant-messaging/internal/middleware"
	"github.com/iliyamo/instant-messaging/internal/model"
	"github.com/iliyamo/instant-messaging/internal/service"
)

// ChannelHandler serves channel CRUD, search and membership.
type ChannelHandler struct {
	Channels *service.ChannelService
}

func NewChannelHandler(channels *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{Channels: channels}
}

// ----- DTOs -----

type createChannelReq struct {
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
}
type editChannelReq struct {
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
}
type joinPrivateReq struct {
	InvitationToken string `json:"invitation_token"`
}
type updateAccessReq struct {
	Access string `json:"access"`
}
type accessResp struct {
	Access string `json:"access"`
}

// Create makes a new channel owned by the caller. The owner is added
// as a read-write member in the same unit of work.
func (h *ChannelHandler) Create(c echo.Context) error {
	var req createChannelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ch, err := h.Channels.CreateChannel(c.Request().Context(), strings.TrimSpace(req.Name), middleware.CurrentUser(c).ID, req.IsPublic)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, toChannelView(*ch))
}

// Get returns a channel by id.
func (h *ChannelHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel id"})
	}
	ch, err := h.Channels.GetChannelByID(c.Request().Context(), id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toChannelView(*ch))
}

// Joined lists the channels the caller belongs to.
func (h *ChannelHandler) Joined(c echo.Context) error {
	limit, offset := pageParams(c)
	chs, err := h.Channels.JoinedChannels(c.Request().Context(), middleware.CurrentUser(c).ID, limit, offset)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toChannelViews(chs))
}

// Search finds public channels whose name contains the query; a blank
// query lists all public channels.
func (h *ChannelHandler) Search(c echo.Context) error {
	limit, offset := pageParams(c)
	chs, err := h.Channels.SearchChannels(c.Request().Context(), strings.TrimSpace(c.QueryParam("q")), limit, offset)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toChannelViews(chs))
}

// Members lists the users in a channel.
func (h *ChannelHandler) Members(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel id"})
	}
	limit, offset := pageParams(c)
	users, err := h.Channels.ListUsersInChannel(c.Request().Context(), id, limit, offset)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toUserViews(users))
}

// Edit renames a channel or flips its visibility. Owner only.
func (h *ChannelHandler) Edit(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel id"})
	}
	var req editChannelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ch, err := h.Channels.EditChannel(c.Request().Context(), middleware.CurrentUser(c).ID, id, strings.TrimSpace(req.Name), req.IsPublic)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toChannelView(*ch))
}

// MyAccess reports the caller's access level in a channel.
func (h *ChannelHandler) MyAccess(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel id"})
	}
	access, err := h.Channels.MemberAccess(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, accessResp{Access: string(access)})
}

// UpdateAccess changes a member's access level. Owner only; the
// owner's own access cannot be changed.
func (h *ChannelHandler) UpdateAccess(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel id"})
	}
	memberID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req updateAccessReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidAccessType(req.Access) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid access level"})
	}
	member, err := h.Channels.UpdateMemberAccess(c.Request().Context(), middleware.CurrentUser(c).ID, id, memberID, model.AccessType(req.Access))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, accessResp{Access: string(member.Access)})
}

// JoinPublic adds the caller to a public channel with read-write access.
func (h *ChannelHandler) JoinPublic(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel id"})
	}
	if err := h.Channels.JoinPublicChannel(c.Request().Context(), middleware.CurrentUser(c).ID, id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// JoinPrivate consumes an invitation token and adds the caller to the
// invitation's channel with the invitation's access level.
func (h *ChannelHandler) JoinPrivate(c echo.Context) error {
	var req joinPrivateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ch, err := h.Channels.JoinPrivateChannel(c.Request().Context(), middleware.CurrentUser(c).ID, strings.TrimSpace(req.InvitationToken))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toChannelView(*ch))
}

// Leave removes the caller from a channel. The owner cannot leave.
func (h *ChannelHandler) Leave(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel id"})
	}
	if err := h.Channels.LeaveChannel(c.Request().Context(), middleware.CurrentUser(c).ID, id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
