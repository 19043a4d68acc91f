// Package service implements the application's business operations on
// top of the persistence ports. Expected business failures are
// reported as the sentinel errors below so transport code can map
// each kind to a response with errors.Is; anything else that comes
// out of a service is a storage or programming fault and should be
// surfaced as an opaque internal error, with the detail kept in logs.
package service

import "errors"

// User and session errors.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameInUse     = errors.New("username already in use")
	ErrEmptyUsername     = errors.New("username must not be blank")
	ErrEmptyPassword     = errors.New("password must not be blank")
	ErrEmptyToken        = errors.New("invitation token required")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrInsecurePassword  = errors.New("password does not meet the safety policy")
	ErrPasswordUnchanged = errors.New("new password matches the current one")
	ErrUserOwnsChannels  = errors.New("user still owns channels")
)

// Invitation errors.
var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationExpired  = errors.New("invitation expired")
	ErrInvitationUsed     = errors.New("invitation already used")
	ErrInvalidExpiration  = errors.New("expiration must be in the future")
)

// Channel and membership errors.
var (
	ErrChannelNotFound  = errors.New("channel not found")
	ErrChannelNameInUse = errors.New("channel name already in use")
	ErrEmptyChannelName = errors.New("channel name must not be blank")
	ErrNotChannelMember = errors.New("user is not a member of the channel")
	ErrNotAuthorized    = errors.New("user is not authorized for this action")
	ErrNotOwner         = errors.New("only the channel owner may do this")
	ErrMemberIsOwner    = errors.New("the channel owner's access cannot be changed")
	ErrAlreadyInChannel = errors.New("user is already a member of the channel")
	ErrChannelNotPublic = errors.New("channel is not public")
	ErrOwnerCannotLeave = errors.New("the owner cannot leave the channel")
)

// Message errors.
var (
	ErrEmptyMessage  = errors.New("message content must not be blank")
	ErrInvalidLimit  = errors.New("limit must be positive")
	ErrInvalidOffset = errors.New("offset must not be negative")
)
