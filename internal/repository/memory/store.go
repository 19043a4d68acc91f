// Package memory holds in-memory implementations of the persistence
// ports with sequential ids. The server falls back to it when no
// database is configured, and the unit tests run against it.
package memory

import (
	"context"
	"sync"

	"github.com/iliyamo/instant-messaging/internal/model"
	"github.com/iliyamo/instant-messaging/internal/repository"
)

// Store owns all entity state. A single mutex serializes units of
// work: each Manager.Run holds it from start to finish, so a unit of
// work observes and produces consistent state. There is no rollback;
// operations apply immediately, which is acceptable for tests and
// single-process development use.
type Store struct {
	mu sync.Mutex

	users       []model.User
	tokens      []model.Token
	channels    []model.Channel
	members     []model.ChannelMember
	invitations []model.Invitation
	messages    []model.Message

	nextUserID       uint64
	nextChannelID    uint64
	nextMemberID     uint64
	nextInvitationID uint64
	nextMessageID    uint64
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

type tx struct{ s *Store }

func (t tx) Users() repository.UserRepository             { return userRepo{t.s} }
func (t tx) Channels() repository.ChannelRepository       { return channelRepo{t.s} }
func (t tx) Members() repository.MemberRepository         { return memberRepo{t.s} }
func (t tx) Invitations() repository.InvitationRepository { return invitationRepo{t.s} }
func (t tx) Messages() repository.MessageRepository       { return messageRepo{t.s} }

// Manager implements repository.Manager over a Store.
type Manager struct{ store *Store }

// NewManager returns a unit-of-work manager bound to the store.
func NewManager(s *Store) *Manager { return &Manager{store: s} }

// Run executes fn while holding the store lock.
func (m *Manager) Run(_ context.Context, fn func(tx repository.Tx) error) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return fn(tx{m.store})
}

// paginate applies (limit, offset) to a slice, copying the window so
// callers never alias internal state.
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) || limit <= 0 {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-offset)
	copy(out, items[offset:end])
	return out
}
