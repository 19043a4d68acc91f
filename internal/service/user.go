package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iliyamo/instant-messaging/internal/auth"
	"github.com/iliyamo/instant-messaging/internal/model"
	"github.com/iliyamo/instant-messaging/internal/repository"
)

// UserService orchestrates registration, login, logout and the
// token-to-identity hot path. All persistence runs through one unit
// of work per operation.
type UserService struct {
	trx    repository.Manager
	domain *auth.Domain
	now    func() time.Time
}

// NewUserService wires the service. The clock is injected so tests
// can move time; pass nil for the wall clock.
func NewUserService(trx repository.Manager, domain *auth.Domain, now func() time.Time) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{trx: trx, domain: domain, now: now}
}

// Register creates a new user. The very first user of the system
// needs no invitation (bootstrap); everyone after that must present
// a pending, unexpired invitation token and is added to the
// invitation's channel at its access level.
func (s *UserService) Register(ctx context.Context, username, password, invitationToken string) (*model.User, error) {
	var created *model.User
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		existing, err := tx.Users().FindAll(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if len(existing) == 0 {
			created, err = s.createUser(ctx, tx, username, password)
			return err
		}

		if strings.TrimSpace(invitationToken) == "" {
			return ErrEmptyToken
		}
		inv, err := tx.Invitations().FindByToken(ctx, invitationToken)
		if err != nil {
			return fmt.Errorf("find invitation: %w", err)
		}
		if inv == nil {
			return ErrInvitationNotFound
		}
		if inv.ExpiresAt.Before(s.now()) {
			return ErrInvitationExpired
		}
		if inv.Status != model.StatusPending {
			return ErrInvitationUsed
		}

		created, err = s.createUser(ctx, tx, username, password)
		if err != nil {
			return err
		}
		if _, err := tx.Members().Add(ctx, *created, inv.Channel, inv.Access); err != nil {
			return fmt.Errorf("add member: %w", err)
		}
		inv.Status = model.StatusAccepted
		if err := tx.Invitations().Save(ctx, *inv); err != nil {
			return fmt.Errorf("save invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *UserService) createUser(ctx context.Context, tx repository.Tx, username, password string) (*model.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrEmptyUsername
	}
	if strings.TrimSpace(password) == "" {
		return nil, ErrEmptyPassword
	}
	taken, err := tx.Users().FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find username: %w", err)
	}
	if taken != nil {
		return nil, ErrUsernameInUse
	}
	if !s.domain.IsSafePassword(password) {
		return nil, ErrInsecurePassword
	}
	validation, err := s.domain.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := tx.Users().Create(ctx, username, validation)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// CreateToken is the login operation: it verifies the credentials,
// evicts least-recently-used tokens over the quota, stores the new
// token's fingerprint and returns the raw value with its expiration.
func (s *UserService) CreateToken(ctx context.Context, username, password string) (*model.TokenInfo, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrEmptyUsername
	}
	if strings.TrimSpace(password) == "" {
		return nil, ErrEmptyPassword
	}

	var info *model.TokenInfo
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		user, err := tx.Users().FindByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		if !s.domain.VerifyPassword(user.PasswordValidation, password) {
			return ErrIncorrectPassword
		}

		value, err := s.domain.GenerateTokenValue()
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}
		now := s.now()
		tok := model.Token{
			Fingerprint: s.domain.TokenFingerprint(value),
			UserID:      user.ID,
			CreatedAt:   now,
			LastUsedAt:  now,
		}
		if err := tx.Users().CreateToken(ctx, tok, s.domain.MaxTokensPerUser()); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		info = &model.TokenInfo{Value: value, ExpiresAt: s.domain.TokenExpiration(tok)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// ResolveToken maps a bearer token value to its user. It returns
// (nil, nil) for anything that is not a currently valid token:
// malformed values, unknown fingerprints and expired windows all look
// the same to the caller. On success the token's last-used time
// slides forward. This is the hot path of every authenticated request.
func (s *UserService) ResolveToken(ctx context.Context, value string) (*model.User, error) {
	if !s.domain.CanBeToken(value) {
		return nil, nil
	}
	var resolved *model.User
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		user, tok, err := tx.Users().FindTokenByFingerprint(ctx, s.domain.TokenFingerprint(value))
		if err != nil {
			return fmt.Errorf("find token: %w", err)
		}
		if tok == nil || !s.domain.IsTokenTimeValid(s.now(), *tok) {
			return nil
		}
		if err := tx.Users().UpdateTokenLastUsed(ctx, *tok, s.now()); err != nil {
			return fmt.Errorf("slide token: %w", err)
		}
		resolved = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// RevokeToken is the logout operation. It is idempotent: revoking a
// token that does not exist is not an error.
func (s *UserService) RevokeToken(ctx context.Context, value string) error {
	fingerprint := s.domain.TokenFingerprint(value)
	return s.trx.Run(ctx, func(tx repository.Tx) error {
		if _, err := tx.Users().RemoveTokenByFingerprint(ctx, fingerprint); err != nil {
			return fmt.Errorf("remove token: %w", err)
		}
		return nil
	})
}

// GetUserByID looks a user up by id.
func (s *UserService) GetUserByID(ctx context.Context, id uint64) (*model.User, error) {
	var found *model.User
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		u, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if u == nil {
			return ErrUserNotFound
		}
		found = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// GetUserByUsername looks a user up by username.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrEmptyUsername
	}
	var found *model.User
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		u, err := tx.Users().FindByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if u == nil {
			return ErrUserNotFound
		}
		found = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// UpdateUsername renames a user, keeping usernames unique.
func (s *UserService) UpdateUsername(ctx context.Context, userID uint64, newUsername string) (*model.User, error) {
	if strings.TrimSpace(newUsername) == "" {
		return nil, ErrEmptyUsername
	}
	var updated *model.User
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		taken, err := tx.Users().FindByUsername(ctx, newUsername)
		if err != nil {
			return fmt.Errorf("find username: %w", err)
		}
		if taken != nil {
			return ErrUsernameInUse
		}
		user.Username = newUsername
		if err := tx.Users().Save(ctx, *user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdatePassword replaces the user's password. The new password must
// satisfy the safety policy and differ from the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID uint64, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return ErrEmptyPassword
	}
	if !s.domain.IsSafePassword(newPassword) {
		return ErrInsecurePassword
	}
	return s.trx.Run(ctx, func(tx repository.Tx) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		if s.domain.VerifyPassword(user.PasswordValidation, newPassword) {
			return ErrPasswordUnchanged
		}
		validation, err := s.domain.HashPassword(newPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordValidation = validation
		if err := tx.Users().Save(ctx, *user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		return nil
	})
}

// DeleteUser removes a user along with all memberships. A user that
// still owns channels cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, userID uint64) error {
	return s.trx.Run(ctx, func(tx repository.Tx) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		owned, err := tx.Channels().FindAllByOwner(ctx, *user)
		if err != nil {
			return fmt.Errorf("list owned channels: %w", err)
		}
		if len(owned) > 0 {
			return ErrUserOwnsChannels
		}
		memberships, err := tx.Members().ListChannelsForUser(ctx, *user, math.MaxInt32, 0)
		if err != nil {
			return fmt.Errorf("list memberships: %w", err)
		}
		for _, m := range memberships {
			if err := tx.Members().Remove(ctx, *user, m.Channel); err != nil {
				return fmt.Errorf("remove membership: %w", err)
			}
		}
		if err := tx.Users().DeleteByID(ctx, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}
