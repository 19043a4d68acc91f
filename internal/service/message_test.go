package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/instant-messaging/internal/model"
)

// recordingQueue captures queued messages in place of a real broker.
type recordingQueue struct {
	mu   sync.Mutex
	msgs []model.Message
	err  error
}

func (q *recordingQueue) MessagePosted(_ context.Context, msg model.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.msgs = append(q.msgs, msg)
	return nil
}

func TestCreateMessageStoresAndFansOut(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	queue := &recordingQueue{}
	env.messages.queue = queue

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", true)

	em := &fakeEmitter{}
	r.NoError(env.events.Subscribe(ctx, ch.ID, em))

	msg, err := env.messages.CreateMessage(ctx, alice.ID, ch.ID, "hello")
	r.NoError(err)
	r.Equal("hello", msg.Content)
	r.Equal(alice.ID, msg.User.ID)

	evs := em.received()
	r.Len(evs, 1)
	nm, ok := evs[0].(model.NewMessage)
	r.True(ok)
	r.Equal(msg.ID, nm.Message.ID)

	r.Len(queue.msgs, 1)
	r.Equal(msg.ID, queue.msgs[0].ID)
}

func TestCreateMessageQueueFailureDoesNotFailRequest(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	env.messages.queue = &recordingQueue{err: errEmitterBroken}

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", true)

	msg, err := env.messages.CreateMessage(ctx, alice.ID, ch.ID, "hello")
	r.NoError(err)
	r.NotNil(msg)
}

func TestCreateMessageRequiresReadWriteAccess(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", false)
	bob := registerInvited(t, env, "bob", alice.ID, ch.ID, model.AccessReadOnly)

	_, err := env.messages.CreateMessage(ctx, bob.ID, ch.ID, "should fail")
	r.ErrorIs(err, ErrNotAuthorized)

	other := createChannel(t, env, alice.ID, "other", false)
	_, err = env.messages.CreateMessage(ctx, bob.ID, other.ID, "outsider")
	r.ErrorIs(err, ErrNotChannelMember)

	_, err = env.messages.CreateMessage(ctx, alice.ID, ch.ID, "")
	r.ErrorIs(err, ErrEmptyMessage)
}

func TestListMessagesNewestFirst(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", false)
	bob := registerInvited(t, env, "bob", alice.ID, ch.ID, model.AccessReadOnly)

	for _, text := range []string{"first", "second", "third"} {
		_, err := env.messages.CreateMessage(ctx, alice.ID, ch.ID, text)
		r.NoError(err)
	}

	// Read-only members can read.
	msgs, err := env.messages.ListMessages(ctx, bob.ID, ch.ID, 10, 0)
	r.NoError(err)
	r.Len(msgs, 3)
	r.Equal("third", msgs[0].Content)
	r.Equal("first", msgs[2].Content)

	// Order is strict even when messages land in one clock tick.
	r.True(msgs[0].CreatedAt.After(msgs[1].CreatedAt))
	r.True(msgs[1].CreatedAt.After(msgs[2].CreatedAt))

	page, err := env.messages.ListMessages(ctx, bob.ID, ch.ID, 1, 1)
	r.NoError(err)
	r.Len(page, 1)
	r.Equal("second", page[0].Content)
}

func TestListMessagesValidation(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", false)
	other := createChannel(t, env, alice.ID, "other", false)
	bob := registerInvited(t, env, "bob", alice.ID, ch.ID, model.AccessReadOnly)

	_, err := env.messages.ListMessages(ctx, alice.ID, ch.ID, 0, 0)
	r.ErrorIs(err, ErrInvalidLimit)
	_, err = env.messages.ListMessages(ctx, alice.ID, ch.ID, 10, -1)
	r.ErrorIs(err, ErrInvalidOffset)
	_, err = env.messages.ListMessages(ctx, bob.ID, other.ID, 10, 0)
	r.ErrorIs(err, ErrNotChannelMember)
}
