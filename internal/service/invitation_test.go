package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/instant-messaging/internal/model"
)

func TestCreateInvitation(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", false)

	inv, err := env.invites.CreateInvitation(ctx, alice.ID, ch.ID, model.AccessReadOnly, env.clock.Now().Add(time.Hour))
	r.NoError(err)
	r.NotEmpty(inv.Token)
	r.Equal(model.StatusPending, inv.Status)
	r.Equal(model.AccessReadOnly, inv.Access)
	r.Equal(ch.ID, inv.Channel.ID)
}

func TestCreateInvitationRules(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", false)
	bob := registerInvited(t, env, "bob", alice.ID, ch.ID, model.AccessReadOnly)

	// Expiry must lie in the future.
	_, err := env.invites.CreateInvitation(ctx, alice.ID, ch.ID, model.AccessReadWrite, env.clock.Now().Add(-time.Minute))
	r.ErrorIs(err, ErrInvalidExpiration)

	// Read-only members cannot invite; strangers are not members at all.
	_, err = env.invites.CreateInvitation(ctx, bob.ID, ch.ID, model.AccessReadWrite, env.clock.Now().Add(time.Hour))
	r.ErrorIs(err, ErrNotAuthorized)
	_, err = env.invites.CreateInvitation(ctx, 999, ch.ID, model.AccessReadWrite, env.clock.Now().Add(time.Hour))
	r.ErrorIs(err, ErrUserNotFound)
}

func TestListInvitations(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", false)
	bob := registerInvited(t, env, "bob", alice.ID, ch.ID, model.AccessReadOnly)
	invite(t, env, alice.ID, ch.ID, model.AccessReadWrite)

	invs, err := env.invites.ListInvitations(ctx, alice.ID, ch.ID)
	r.NoError(err)
	r.Len(invs, 2, "the consumed registration invitation is listed too")

	_, err = env.invites.ListInvitations(ctx, bob.ID, ch.ID)
	r.ErrorIs(err, ErrNotAuthorized)
}

func TestRevokeInvitation(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", false)
	bob := registerInvited(t, env, "bob", alice.ID, ch.ID, model.AccessReadWrite)
	inv := invite(t, env, alice.ID, ch.ID, model.AccessReadWrite)

	// Read-write membership alone is not enough to revoke.
	r.ErrorIs(env.invites.RevokeInvitation(ctx, bob.ID, ch.ID, inv.ID), ErrNotAuthorized)

	r.NoError(env.invites.RevokeInvitation(ctx, alice.ID, ch.ID, inv.ID))

	// A revoked invitation can no longer be consumed.
	_, err := env.users.Register(ctx, "carol", testPassword, inv.Token)
	r.ErrorIs(err, ErrInvitationUsed)

	r.ErrorIs(env.invites.RevokeInvitation(ctx, alice.ID, ch.ID, 999), ErrInvitationNotFound)
}
