package model

import "time"

// InvitationStatus tracks the lifecycle of an invitation. Transitions
// are one-way: pending -> accepted or pending -> rejected.
type InvitationStatus string

const (
	StatusPending  InvitationStatus = "pending"
	StatusAccepted InvitationStatus = "accepted"
	StatusRejected InvitationStatus = "rejected"
)

// Invitation grants one user entry to a channel at a fixed access
// level. The token is an unguessable opaque string handed out of
// band; an invitation is consumed exactly once. Channel and access
// level are immutable after creation.
//
// Fields:
//  ID        – primary key identifier.
//  Token     – opaque invitation token (uuid).
//  CreatedBy – user that issued the invitation.
//  Channel   – channel the invitation grants entry to.
//  Access    – access level granted on acceptance.
//  ExpiresAt – invitation is unusable after this instant.
//  Status    – pending / accepted / rejected.
type Invitation struct {
	ID        uint64           // invitations.id
	Token     string           // invitations.token
	CreatedBy User             // invitations.created_by
	Channel   Channel          // invitations.channel_id
	Access    AccessType       // invitations.access_type
	ExpiresAt time.Time        // invitations.expires_at
	Status    InvitationStatus // invitations.status
}
