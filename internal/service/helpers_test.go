package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/instant-messaging/internal/auth"
	"github.com/iliyamo/instant-messaging/internal/model"
	"github.com/iliyamo/instant-messaging/internal/repository/memory"
)

const testPassword = "Aa1#2345"

// fakeClock is an adjustable clock injected into the services.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	clock    *fakeClock
	users    *UserService
	channels *ChannelService
	invites  *InvitationService
	events   *EventService
	messages *MessageService
}

// newTestEnv wires every service against a fresh in-memory store with
// a small session quota and the cheapest bcrypt cost.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	domain, err := auth.NewDomain(auth.Config{
		TokenSizeBytes:   32,
		TokenTTL:         24 * time.Hour,
		TokenRollingTTL:  time.Hour,
		MaxTokensPerUser: 2,
		BcryptCost:       bcrypt.MinCost,
	})
	require.NoError(t, err)

	clock := newFakeClock()
	trx := memory.NewManager(memory.NewStore())

	// Long interval so the ticker never fires during a test;
	// keep-alive behavior is exercised by calling broadcastKeepAlive.
	events := NewEventService(trx, time.Hour)
	t.Cleanup(events.Close)

	return &testEnv{
		clock:    clock,
		users:    NewUserService(trx, domain, clock.Now),
		channels: NewChannelService(trx, clock.Now),
		invites:  NewInvitationService(trx, clock.Now),
		events:   events,
		messages: NewMessageService(trx, events, nil),
	}
}

// registerFirst creates the bootstrap user.
func registerFirst(t *testing.T, env *testEnv, username string) *model.User {
	t.Helper()
	u, err := env.users.Register(context.Background(), username, testPassword, "")
	require.NoError(t, err)
	return u
}

// createChannel makes a channel owned by the given user.
func createChannel(t *testing.T, env *testEnv, ownerID uint64, name string, public bool) *model.Channel {
	t.Helper()
	ch, err := env.channels.CreateChannel(context.Background(), name, ownerID, public)
	require.NoError(t, err)
	return ch
}

// invite issues an invitation from creator into the channel, valid
// for one hour of fake time.
func invite(t *testing.T, env *testEnv, creatorID, channelID uint64, access model.AccessType) *model.Invitation {
	t.Helper()
	inv, err := env.invites.CreateInvitation(context.Background(), creatorID, channelID, access, env.clock.Now().Add(time.Hour))
	require.NoError(t, err)
	return inv
}

// registerInvited registers a user through an invitation into the
// channel, returning the new member.
func registerInvited(t *testing.T, env *testEnv, username string, creatorID, channelID uint64, access model.AccessType) *model.User {
	t.Helper()
	inv := invite(t, env, creatorID, channelID, access)
	u, err := env.users.Register(context.Background(), username, testPassword, inv.Token)
	require.NoError(t, err)
	return u
}

// fakeEmitter records events; it can be told to fail every Emit, and
// its callbacks can be fired to simulate a closed transport.
type fakeEmitter struct {
	mu     sync.Mutex
	events []model.ChannelEvent
	fail   bool
	onDone []func()
	onErr  []func(error)
}

func (f *fakeEmitter) Emit(ev model.ChannelEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errEmitterBroken
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeEmitter) OnCompletion(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onDone = append(f.onDone, fn)
}

func (f *fakeEmitter) OnError(fn func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onErr = append(f.onErr, fn)
}

func (f *fakeEmitter) complete() {
	f.mu.Lock()
	fns := append([]func(){}, f.onDone...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (f *fakeEmitter) received() []model.ChannelEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.ChannelEvent, len(f.events))
	copy(out, f.events)
	return out
}

var errEmitterBroken = errors.New("emitter broken")
