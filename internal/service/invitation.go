package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/instant-messaging/internal/model"
	"github.com/iliyamo/instant-messaging/internal/repository"
)

// InvitationService manages channel invitations. Creating and
// listing require read-write membership; revoking is owner-only.
type InvitationService struct {
	trx repository.Manager
	now func() time.Time
}

// NewInvitationService wires the service; pass nil for the wall clock.
func NewInvitationService(trx repository.Manager, now func() time.Time) *InvitationService {
	if now == nil {
		now = time.Now
	}
	return &InvitationService{trx: trx, now: now}
}

// CreateInvitation issues an invitation to a channel with a fixed
// access level and expiry. The token is an unguessable uuid.
func (s *InvitationService) CreateInvitation(ctx context.Context, creatorID, channelID uint64, access model.AccessType, expiresAt time.Time) (*model.Invitation, error) {
	if expiresAt.Before(s.now()) {
		return nil, ErrInvalidExpiration
	}
	var created *model.Invitation
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		creator, ch, membership, err := findMembership(ctx, tx, creatorID, channelID)
		if err != nil {
			return err
		}
		if membership.Access != model.AccessReadWrite {
			return ErrNotAuthorized
		}
		token := uuid.NewString()
		created, err = tx.Invitations().Create(ctx, token, *creator, *ch, access, expiresAt)
		if err != nil {
			return fmt.Errorf("create invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListInvitations returns every invitation issued for a channel.
func (s *InvitationService) ListInvitations(ctx context.Context, requesterID, channelID uint64) ([]model.Invitation, error) {
	var out []model.Invitation
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		_, ch, membership, err := findMembership(ctx, tx, requesterID, channelID)
		if err != nil {
			return err
		}
		if membership.Access != model.AccessReadWrite {
			return ErrNotAuthorized
		}
		out, err = tx.Invitations().FindByChannel(ctx, ch.ID)
		if err != nil {
			return fmt.Errorf("list invitations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RevokeInvitation rejects a pending invitation so it can no longer
// be consumed. Only the channel owner may revoke.
func (s *InvitationService) RevokeInvitation(ctx context.Context, userID, channelID, invitationID uint64) error {
	return s.trx.Run(ctx, func(tx repository.Tx) error {
		user, ch, membership, err := findMembership(ctx, tx, userID, channelID)
		if err != nil {
			return err
		}
		if ch.Owner.ID != user.ID || membership.Access != model.AccessReadWrite {
			return ErrNotAuthorized
		}
		inv, err := tx.Invitations().FindByID(ctx, invitationID)
		if err != nil {
			return fmt.Errorf("find invitation: %w", err)
		}
		if inv == nil {
			return ErrInvitationNotFound
		}
		inv.Status = model.StatusRejected
		if err := tx.Invitations().Save(ctx, *inv); err != nil {
			return fmt.Errorf("save invitation: %w", err)
		}
		return nil
	})
}
