package memory

import (
	"context"
	"time"

	"github.com/iliyamo/instant-messaging/internal/model"
)

type invitationRepo struct{ s *Store }

func (r invitationRepo) Create(_ context.Context, token string, createdBy model.User, ch model.Channel, access model.AccessType, expiresAt time.Time) (*model.Invitation, error) {
	r.s.nextInvitationID++
	inv := model.Invitation{
		ID:        r.s.nextInvitationID,
		Token:     token,
		CreatedBy: createdBy,
		Channel:   ch,
		Access:    access,
		ExpiresAt: expiresAt,
		Status:    model.StatusPending,
	}
	r.s.invitations = append(r.s.invitations, inv)
	return &inv, nil
}

func (r invitationRepo) FindByID(_ context.Context, id uint64) (*model.Invitation, error) {
	for _, inv := range r.s.invitations {
		if inv.ID == id {
			inv := inv
			return &inv, nil
		}
	}
	return nil, nil
}

func (r invitationRepo) FindByToken(_ context.Context, token string) (*model.Invitation, error) {
	for _, inv := range r.s.invitations {
		if inv.Token == token {
			inv := inv
			return &inv, nil
		}
	}
	return nil, nil
}

func (r invitationRepo) FindByChannel(_ context.Context, channelID uint64) ([]model.Invitation, error) {
	var out []model.Invitation
	for _, inv := range r.s.invitations {
		if inv.Channel.ID == channelID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r invitationRepo) Save(_ context.Context, inv model.Invitation) error {
	for i := range r.s.invitations {
		if r.s.invitations[i].ID == inv.ID {
			r.s.invitations[i] = inv
			return nil
		}
	}
	r.s.invitations = append(r.s.invitations, inv)
	return nil
}

func (r invitationRepo) Clear(_ context.Context) error {
	r.s.invitations = nil
	return nil
}
