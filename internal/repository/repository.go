// Package repository defines the persistence ports consumed by the
// services, plus the unit-of-work contract that bundles them. The
// concrete stores live in the mysql and memory subpackages; services
// only ever see these interfaces.
//
// Lookup methods return (nil, nil) when the entity does not exist so
// callers can branch on absence without sentinel comparisons; errors
// are reserved for storage failures.
package repository

import (
	"context"
	"time"

	"github.com/iliyamo/instant-messaging/internal/model"
)

// UserRepository manages users and their session tokens.
type UserRepository interface {
	Create(ctx context.Context, username, passwordValidation string) (*model.User, error)
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Save(ctx context.Context, u model.User) error
	DeleteByID(ctx context.Context, id uint64) error
	Clear(ctx context.Context) error

	// CreateToken inserts a session token, first evicting the user's
	// least-recently-used tokens so at most maxTokens remain.
	CreateToken(ctx context.Context, tok model.Token, maxTokens int) error
	// FindTokenByFingerprint resolves a stored token together with its owner.
	FindTokenByFingerprint(ctx context.Context, fingerprint string) (*model.User, *model.Token, error)
	UpdateTokenLastUsed(ctx context.Context, tok model.Token, now time.Time) error
	// RemoveTokenByFingerprint deletes matching tokens and returns how
	// many were removed. Removing an unknown fingerprint is not an error.
	RemoveTokenByFingerprint(ctx context.Context, fingerprint string) (int, error)
}

// ChannelRepository manages channels.
type ChannelRepository interface {
	Create(ctx context.Context, name string, owner model.User, isPublic bool) (*model.Channel, error)
	FindByID(ctx context.Context, id uint64) (*model.Channel, error)
	FindByName(ctx context.Context, name string) (*model.Channel, error)
	FindAllByOwner(ctx context.Context, owner model.User) ([]model.Channel, error)
	FindAllPublic(ctx context.Context, limit, offset int) ([]model.Channel, error)
	// SearchByName matches public channels whose name contains query.
	SearchByName(ctx context.Context, query string, limit, offset int) ([]model.Channel, error)
	Save(ctx context.Context, ch model.Channel) error
	DeleteByID(ctx context.Context, id uint64) error
	Clear(ctx context.Context) error
}

// MemberRepository manages channel memberships.
type MemberRepository interface {
	Add(ctx context.Context, user model.User, ch model.Channel, access model.AccessType) (*model.ChannelMember, error)
	Find(ctx context.Context, user model.User, ch model.Channel) (*model.ChannelMember, error)
	ListChannelsForUser(ctx context.Context, user model.User, limit, offset int) ([]model.ChannelMember, error)
	ListMembers(ctx context.Context, ch model.Channel, limit, offset int) ([]model.ChannelMember, error)
	Remove(ctx context.Context, user model.User, ch model.Channel) error
	Save(ctx context.Context, m model.ChannelMember) error
	DeleteByID(ctx context.Context, id uint64) error
	Clear(ctx context.Context) error
}

// InvitationRepository manages channel invitations.
type InvitationRepository interface {
	Create(ctx context.Context, token string, createdBy model.User, ch model.Channel, access model.AccessType, expiresAt time.Time) (*model.Invitation, error)
	FindByID(ctx context.Context, id uint64) (*model.Invitation, error)
	FindByToken(ctx context.Context, token string) (*model.Invitation, error)
	FindByChannel(ctx context.Context, channelID uint64) ([]model.Invitation, error)
	Save(ctx context.Context, inv model.Invitation) error
	Clear(ctx context.Context) error
}

// MessageRepository manages messages. Creation timestamps are assigned
// here and are monotonic per channel.
type MessageRepository interface {
	Create(ctx context.Context, content string, user model.User, ch model.Channel) (*model.Message, error)
	FindByID(ctx context.Context, id uint64) (*model.Message, error)
	FindAllInChannel(ctx context.Context, ch model.Channel, limit, offset int) ([]model.Message, error)
	DeleteByID(ctx context.Context, id uint64) error
	Clear(ctx context.Context) error
}

// Tx bundles every port for the duration of one atomic unit of work.
type Tx interface {
	Users() UserRepository
	Channels() ChannelRepository
	Members() MemberRepository
	Invitations() InvitationRepository
	Messages() MessageRepository
}

// Manager runs a closure against a Tx atomically: all port operations
// inside fn commit together, or roll back when fn returns an error.
type Manager interface {
	Run(ctx context.Context, fn func(tx Tx) error) error
}
