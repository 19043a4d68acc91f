package memory

import (
	"context"

	"github.com/iliyamo/instant-messaging/internal/model"
)

type memberRepo struct{ s *Store }

func (r memberRepo) Add(_ context.Context, user model.User, ch model.Channel, access model.AccessType) (*model.ChannelMember, error) {
	r.s.nextMemberID++
	m := model.ChannelMember{ID: r.s.nextMemberID, User: user, Channel: ch, Access: access}
	r.s.members = append(r.s.members, m)
	return &m, nil
}

func (r memberRepo) Find(_ context.Context, user model.User, ch model.Channel) (*model.ChannelMember, error) {
	for _, m := range r.s.members {
		if m.User.ID == user.ID && m.Channel.ID == ch.ID {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (r memberRepo) ListChannelsForUser(_ context.Context, user model.User, limit, offset int) ([]model.ChannelMember, error) {
	var out []model.ChannelMember
	for _, m := range r.s.members {
		if m.User.ID == user.ID {
			out = append(out, m)
		}
	}
	return paginate(out, limit, offset), nil
}

func (r memberRepo) ListMembers(_ context.Context, ch model.Channel, limit, offset int) ([]model.ChannelMember, error) {
	var out []model.ChannelMember
	for _, m := range r.s.members {
		if m.Channel.ID == ch.ID {
			out = append(out, m)
		}
	}
	return paginate(out, limit, offset), nil
}

func (r memberRepo) Remove(_ context.Context, user model.User, ch model.Channel) error {
	for i := range r.s.members {
		if r.s.members[i].User.ID == user.ID && r.s.members[i].Channel.ID == ch.ID {
			r.s.members = append(r.s.members[:i], r.s.members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r memberRepo) Save(_ context.Context, m model.ChannelMember) error {
	for i := range r.s.members {
		if r.s.members[i].ID == m.ID {
			r.s.members[i] = m
			return nil
		}
	}
	r.s.members = append(r.s.members, m)
	return nil
}

func (r memberRepo) DeleteByID(_ context.Context, id uint64) error {
	for i := range r.s.members {
		if r.s.members[i].ID == id {
			r.s.members = append(r.s.members[:i], r.s.members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r memberRepo) Clear(_ context.Context) error {
	r.s.members = nil
	return nil
}
