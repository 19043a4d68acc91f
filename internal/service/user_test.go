package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/instant-messaging/internal/model"
)

func TestRegisterBootstrapNeedsNoInvitation(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)

	u, err := env.users.Register(context.Background(), "alice", testPassword, "")
	r.NoError(err)
	r.Equal("alice", u.Username)
	r.NotEqual(testPassword, u.PasswordValidation)
}

func TestRegisterAfterBootstrapRequiresInvitation(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()
	registerFirst(t, env, "alice")

	_, err := env.users.Register(ctx, "bob", testPassword, "")
	r.ErrorIs(err, ErrEmptyToken)

	_, err = env.users.Register(ctx, "bob", testPassword, "no-such-token")
	r.ErrorIs(err, ErrInvitationNotFound)
}

func TestRegisterJoinsInvitationChannel(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", false)
	inv := invite(t, env, alice.ID, ch.ID, model.AccessReadOnly)

	bob, err := env.users.Register(ctx, "bob", testPassword, inv.Token)
	r.NoError(err)

	access, err := env.channels.MemberAccess(ctx, bob.ID, ch.ID)
	r.NoError(err)
	r.Equal(model.AccessReadOnly, access)

	// The invitation is single use.
	_, err = env.users.Register(ctx, "carol", testPassword, inv.Token)
	r.ErrorIs(err, ErrInvitationUsed)
}

func TestRegisterRejectsExpiredInvitation(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", false)
	inv := invite(t, env, alice.ID, ch.ID, model.AccessReadWrite)

	env.clock.Advance(2 * time.Hour)
	_, err := env.users.Register(context.Background(), "bob", testPassword, inv.Token)
	r.ErrorIs(err, ErrInvitationExpired)
}

func TestRegisterValidation(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Register(ctx, "  ", testPassword, "")
	r.ErrorIs(err, ErrEmptyUsername)
	_, err = env.users.Register(ctx, "alice", "", "")
	r.ErrorIs(err, ErrEmptyPassword)
	_, err = env.users.Register(ctx, "alice", "weakpass", "")
	r.ErrorIs(err, ErrInsecurePassword)

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", false)
	inv := invite(t, env, alice.ID, ch.ID, model.AccessReadWrite)
	_, err = env.users.Register(ctx, "alice", testPassword, inv.Token)
	r.ErrorIs(err, ErrUsernameInUse)
}

func TestLoginAndResolveToken(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()
	alice := registerFirst(t, env, "alice")

	info, err := env.users.CreateToken(ctx, "alice", testPassword)
	r.NoError(err)
	r.NotEmpty(info.Value)
	r.Equal(env.clock.Now().Add(time.Hour), info.ExpiresAt, "fresh token expires at the rolling limit")

	resolved, err := env.users.ResolveToken(ctx, info.Value)
	r.NoError(err)
	r.NotNil(resolved)
	r.Equal(alice.ID, resolved.ID)
}

func TestLoginFailures(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()
	registerFirst(t, env, "alice")

	_, err := env.users.CreateToken(ctx, "alice", "Wrong#123")
	r.ErrorIs(err, ErrIncorrectPassword)
	_, err = env.users.CreateToken(ctx, "nobody", testPassword)
	r.ErrorIs(err, ErrUserNotFound)
	_, err = env.users.CreateToken(ctx, "", testPassword)
	r.ErrorIs(err, ErrEmptyUsername)
}

func TestResolveTokenRejectsInvalidValues(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()
	registerFirst(t, env, "alice")

	// Structurally impossible values never hit the store.
	u, err := env.users.ResolveToken(ctx, "definitely not a token")
	r.NoError(err)
	r.Nil(u)

	// Well-formed but unknown values resolve to nothing.
	u, err = env.users.ResolveToken(ctx, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	r.NoError(err)
	r.Nil(u)
}

func TestResolveTokenSlidesRollingWindow(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()
	registerFirst(t, env, "alice")

	info, err := env.users.CreateToken(ctx, "alice", testPassword)
	r.NoError(err)

	// Each use inside the window pushes the idle deadline forward.
	for i := 0; i < 3; i++ {
		env.clock.Advance(50 * time.Minute)
		u, err := env.users.ResolveToken(ctx, info.Value)
		r.NoError(err)
		r.NotNil(u)
	}

	// Left idle past the rolling TTL the token dies.
	env.clock.Advance(61 * time.Minute)
	u, err := env.users.ResolveToken(ctx, info.Value)
	r.NoError(err)
	r.Nil(u)
}

func TestResolveTokenAbsoluteLimit(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()
	registerFirst(t, env, "alice")

	info, err := env.users.CreateToken(ctx, "alice", testPassword)
	r.NoError(err)

	// Constant use cannot stretch a token past its absolute lifetime.
	for i := 0; i < 47; i++ {
		env.clock.Advance(30 * time.Minute)
		u, err := env.users.ResolveToken(ctx, info.Value)
		r.NoError(err)
		r.NotNil(u, "use %d still inside the absolute window", i)
	}
	env.clock.Advance(31 * time.Minute)
	u, err := env.users.ResolveToken(ctx, info.Value)
	r.NoError(err)
	r.Nil(u)
}

func TestTokenQuotaEvictsLeastRecentlyUsed(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()
	registerFirst(t, env, "alice")

	// Quota is 2 in the test configuration.
	first, err := env.users.CreateToken(ctx, "alice", testPassword)
	r.NoError(err)
	env.clock.Advance(time.Minute)
	second, err := env.users.CreateToken(ctx, "alice", testPassword)
	r.NoError(err)

	// Touch the first token so the second becomes least recently used.
	env.clock.Advance(time.Minute)
	u, err := env.users.ResolveToken(ctx, first.Value)
	r.NoError(err)
	r.NotNil(u)

	env.clock.Advance(time.Minute)
	third, err := env.users.CreateToken(ctx, "alice", testPassword)
	r.NoError(err)

	u, err = env.users.ResolveToken(ctx, second.Value)
	r.NoError(err)
	r.Nil(u, "least recently used token was evicted")
	for _, tok := range []string{first.Value, third.Value} {
		u, err = env.users.ResolveToken(ctx, tok)
		r.NoError(err)
		r.NotNil(u)
	}
}

func TestRevokeTokenIsIdempotent(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()
	registerFirst(t, env, "alice")

	info, err := env.users.CreateToken(ctx, "alice", testPassword)
	r.NoError(err)

	r.NoError(env.users.RevokeToken(ctx, info.Value))
	u, err := env.users.ResolveToken(ctx, info.Value)
	r.NoError(err)
	r.Nil(u)

	// Revoking again, or revoking garbage, is fine.
	r.NoError(env.users.RevokeToken(ctx, info.Value))
	r.NoError(env.users.RevokeToken(ctx, "junk"))
}

func TestUpdateUsername(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", false)
	bob := registerInvited(t, env, "bob", alice.ID, ch.ID, model.AccessReadWrite)

	updated, err := env.users.UpdateUsername(ctx, bob.ID, "robert")
	r.NoError(err)
	r.Equal("robert", updated.Username)

	_, err = env.users.UpdateUsername(ctx, bob.ID, "alice")
	r.ErrorIs(err, ErrUsernameInUse)
	_, err = env.users.UpdateUsername(ctx, 999, "ghost")
	r.ErrorIs(err, ErrUserNotFound)
}

func TestUpdatePassword(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()
	alice := registerFirst(t, env, "alice")

	r.ErrorIs(env.users.UpdatePassword(ctx, alice.ID, "weakpass"), ErrInsecurePassword)
	r.ErrorIs(env.users.UpdatePassword(ctx, alice.ID, testPassword), ErrPasswordUnchanged)

	r.NoError(env.users.UpdatePassword(ctx, alice.ID, "Brand#New1"))
	_, err := env.users.CreateToken(ctx, "alice", testPassword)
	r.ErrorIs(err, ErrIncorrectPassword)
	_, err = env.users.CreateToken(ctx, "alice", "Brand#New1")
	r.NoError(err)
}

func TestDeleteUser(t *testing.T) {
	r := require.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerFirst(t, env, "alice")
	ch := createChannel(t, env, alice.ID, "general", false)
	bob := registerInvited(t, env, "bob", alice.ID, ch.ID, model.AccessReadWrite)

	// Channel owners must divest first.
	r.ErrorIs(env.users.DeleteUser(ctx, alice.ID), ErrUserOwnsChannels)

	r.NoError(env.users.DeleteUser(ctx, bob.ID))
	_, err := env.users.GetUserByID(ctx, bob.ID)
	r.ErrorIs(err, ErrUserNotFound)

	members, err := env.channels.ListUsersInChannel(ctx, ch.ID, 10, 0)
	r.NoError(err)
	r.Len(members, 1, "bob's membership went with him")
}
