package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/instant-messaging/internal/service"
)

// httpError maps a service error to a response. Known sentinel errors
// become 4xx with a stable message; anything else is logged and
// reported as an opaque 500 so internals never leak to clients.
func httpError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrChannelNotFound),
		errors.Is(err, service.ErrInvitationNotFound):
		status = http.StatusNotFound

	case errors.Is(err, service.ErrUsernameInUse),
		errors.Is(err, service.ErrChannelNameInUse),
		errors.Is(err, service.ErrAlreadyInChannel),
		errors.Is(err, service.ErrUserOwnsChannels):
		status = http.StatusConflict

	case errors.Is(err, service.ErrEmptyUsername),
		errors.Is(err, service.ErrEmptyPassword),
		errors.Is(err, service.ErrEmptyToken),
		errors.Is(err, service.ErrInsecurePassword),
		errors.Is(err, service.ErrPasswordUnchanged),
		errors.Is(err, service.ErrEmptyChannelName),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrInvalidExpiration),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidOffset),
		errors.Is(err, service.ErrInvitationExpired),
		errors.Is(err, service.ErrInvitationUsed):
		status = http.StatusBadRequest

	case errors.Is(err, service.ErrIncorrectPassword):
		status = http.StatusUnauthorized

	case errors.Is(err, service.ErrNotChannelMember),
		errors.Is(err, service.ErrNotAuthorized),
		errors.Is(err, service.ErrChannelNotPublic),
		errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrMemberIsOwner),
		errors.Is(err, service.ErrOwnerCannotLeave):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		c.Logger().Errorf("unhandled service error: %v", err)
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
