package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/instant-messaging/internal/model"
	"github.com/iliyamo/instant-messaging/internal/repository"
)

// ChannelService applies the membership and ownership rules around
// channels.
type ChannelService struct {
	trx repository.Manager
	now func() time.Time
}

// NewChannelService wires the service; pass nil for the wall clock.
func NewChannelService(trx repository.Manager, now func() time.Time) *ChannelService {
	if now == nil {
		now = time.Now
	}
	return &ChannelService{trx: trx, now: now}
}

// CreateChannel creates a channel with a globally unique name. The
// owner becomes a read-write member immediately.
func (s *ChannelService) CreateChannel(ctx context.Context, name string, ownerID uint64, isPublic bool) (*model.Channel, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyChannelName
	}
	var created *model.Channel
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		owner, err := tx.Users().FindByID(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("find owner: %w", err)
		}
		if owner == nil {
			return ErrUserNotFound
		}
		existing, err := tx.Channels().FindByName(ctx, name)
		if err != nil {
			return fmt.Errorf("find channel name: %w", err)
		}
		if existing != nil {
			return ErrChannelNameInUse
		}
		created, err = tx.Channels().Create(ctx, name, *owner, isPublic)
		if err != nil {
			return fmt.Errorf("create channel: %w", err)
		}
		if _, err := tx.Members().Add(ctx, *owner, *created, model.AccessReadWrite); err != nil {
			return fmt.Errorf("add owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetChannelByID looks a channel up by id.
func (s *ChannelService) GetChannelByID(ctx context.Context, channelID uint64) (*model.Channel, error) {
	var found *model.Channel
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		ch, err := tx.Channels().FindByID(ctx, channelID)
		if err != nil {
			return fmt.Errorf("find channel: %w", err)
		}
		if ch == nil {
			return ErrChannelNotFound
		}
		found = ch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// JoinedChannels lists the channels a user is a member of.
func (s *ChannelService) JoinedChannels(ctx context.Context, userID uint64, limit, offset int) ([]model.Channel, error) {
	var out []model.Channel
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		memberships, err := tx.Members().ListChannelsForUser(ctx, *user, limit, offset)
		if err != nil {
			return fmt.Errorf("list memberships: %w", err)
		}
		for _, m := range memberships {
			out = append(out, m.Channel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsersInChannel lists the members of a channel.
func (s *ChannelService) ListUsersInChannel(ctx context.Context, channelID uint64, limit, offset int) ([]model.User, error) {
	var out []model.User
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		ch, err := tx.Channels().FindByID(ctx, channelID)
		if err != nil {
			return fmt.Errorf("find channel: %w", err)
		}
		if ch == nil {
			return ErrChannelNotFound
		}
		members, err := tx.Members().ListMembers(ctx, *ch, limit, offset)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		for _, m := range members {
			out = append(out, m.User)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EditChannel renames a channel or toggles its visibility. Only the
// owner may edit.
func (s *ChannelService) EditChannel(ctx context.Context, ownerID, channelID uint64, name string, isPublic bool) (*model.Channel, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyChannelName
	}
	var updated *model.Channel
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		owner, err := tx.Users().FindByID(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if owner == nil {
			return ErrUserNotFound
		}
		ch, err := tx.Channels().FindByID(ctx, channelID)
		if err != nil {
			return fmt.Errorf("find channel: %w", err)
		}
		if ch == nil {
			return ErrChannelNotFound
		}
		if ch.Owner.ID != owner.ID {
			return ErrNotOwner
		}
		if name != ch.Name {
			existing, err := tx.Channels().FindByName(ctx, name)
			if err != nil {
				return fmt.Errorf("find channel name: %w", err)
			}
			if existing != nil {
				return ErrChannelNameInUse
			}
		}
		ch.Name = name
		ch.IsPublic = isPublic
		if err := tx.Channels().Save(ctx, *ch); err != nil {
			return fmt.Errorf("save channel: %w", err)
		}
		updated = ch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MemberAccess returns the caller's access level in a channel.
func (s *ChannelService) MemberAccess(ctx context.Context, userID, channelID uint64) (model.AccessType, error) {
	var access model.AccessType
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		_, _, membership, err := findMembership(ctx, tx, userID, channelID)
		if err != nil {
			return err
		}
		access = membership.Access
		return nil
	})
	if err != nil {
		return "", err
	}
	return access, nil
}

// UpdateMemberAccess changes another member's access level. Only the
// owner may do this, and the owner's own membership is untouchable.
func (s *ChannelService) UpdateMemberAccess(ctx context.Context, ownerID, channelID, userID uint64, access model.AccessType) (*model.ChannelMember, error) {
	var updated *model.ChannelMember
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		owner, ch, _, err := findMembership(ctx, tx, ownerID, channelID)
		if err != nil {
			return err
		}
		if ch.Owner.ID != owner.ID {
			return ErrNotOwner
		}
		if userID == ch.Owner.ID {
			return ErrMemberIsOwner
		}
		target, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if target == nil {
			return ErrUserNotFound
		}
		membership, err := tx.Members().Find(ctx, *target, *ch)
		if err != nil {
			return fmt.Errorf("find membership: %w", err)
		}
		if membership == nil {
			return ErrNotChannelMember
		}
		membership.Access = access
		if err := tx.Members().Save(ctx, *membership); err != nil {
			return fmt.Errorf("save membership: %w", err)
		}
		updated = membership
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SearchChannels finds public channels by name; a blank query lists
// all public channels.
func (s *ChannelService) SearchChannels(ctx context.Context, query string, limit, offset int) ([]model.Channel, error) {
	var out []model.Channel
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		var err error
		if strings.TrimSpace(query) == "" {
			out, err = tx.Channels().FindAllPublic(ctx, limit, offset)
		} else {
			out, err = tx.Channels().SearchByName(ctx, query, limit, offset)
		}
		if err != nil {
			return fmt.Errorf("search channels: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// JoinPublicChannel adds the user to a public channel with read-write
// access.
func (s *ChannelService) JoinPublicChannel(ctx context.Context, userID, channelID uint64) error {
	return s.trx.Run(ctx, func(tx repository.Tx) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		ch, err := tx.Channels().FindByID(ctx, channelID)
		if err != nil {
			return fmt.Errorf("find channel: %w", err)
		}
		if ch == nil {
			return ErrChannelNotFound
		}
		if !ch.IsPublic {
			return ErrChannelNotPublic
		}
		existing, err := tx.Members().Find(ctx, *user, *ch)
		if err != nil {
			return fmt.Errorf("find membership: %w", err)
		}
		if existing != nil {
			return ErrAlreadyInChannel
		}
		if _, err := tx.Members().Add(ctx, *user, *ch, model.AccessReadWrite); err != nil {
			return fmt.Errorf("add member: %w", err)
		}
		return nil
	})
}

// JoinPrivateChannel consumes a pending invitation token and adds the
// user at the invitation's access level.
func (s *ChannelService) JoinPrivateChannel(ctx context.Context, userID uint64, invitationToken string) (*model.Channel, error) {
	var joined *model.Channel
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
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
		ch, err := tx.Channels().FindByID(ctx, inv.Channel.ID)
		if err != nil {
			return fmt.Errorf("find channel: %w", err)
		}
		if ch == nil {
			return ErrChannelNotFound
		}
		existing, err := tx.Members().Find(ctx, *user, *ch)
		if err != nil {
			return fmt.Errorf("find membership: %w", err)
		}
		if existing != nil {
			return ErrAlreadyInChannel
		}
		if _, err := tx.Members().Add(ctx, *user, *ch, inv.Access); err != nil {
			return fmt.Errorf("add member: %w", err)
		}
		inv.Status = model.StatusAccepted
		if err := tx.Invitations().Save(ctx, *inv); err != nil {
			return fmt.Errorf("save invitation: %w", err)
		}
		joined = ch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return joined, nil
}

// LeaveChannel removes the user's membership. The owner can never
// leave their own channel.
func (s *ChannelService) LeaveChannel(ctx context.Context, userID, channelID uint64) error {
	return s.trx.Run(ctx, func(tx repository.Tx) error {
		user, ch, membership, err := findMembership(ctx, tx, userID, channelID)
		if err != nil {
			return err
		}
		if ch.Owner.ID == user.ID {
			return ErrOwnerCannotLeave
		}
		if err := tx.Members().DeleteByID(ctx, membership.ID); err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		return nil
	})
}

// findMembership resolves user, channel and the user's membership,
// mapping each missing piece to its business error.
func findMembership(ctx context.Context, tx repository.Tx, userID, channelID uint64) (*model.User, *model.Channel, *model.ChannelMember, error) {
	user, err := tx.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, nil, nil, ErrUserNotFound
	}
	ch, err := tx.Channels().FindByID(ctx, channelID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("find channel: %w", err)
	}
	if ch == nil {
		return nil, nil, nil, ErrChannelNotFound
	}
	membership, err := tx.Members().Find(ctx, *user, *ch)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("find membership: %w", err)
	}
	if membership == nil {
		return nil, nil, nil, ErrNotChannelMember
	}
	return user, ch, membership, nil
}
