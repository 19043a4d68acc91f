package memory

import (
	"context"
	"strings"

	"github.com/iliyamo/instant-messaging/internal/model"
)

type channelRepo struct{ s *Store }

func (r channelRepo) Create(_ context.Context, name string, owner model.User, isPublic bool) (*model.Channel, error) {
	r.s.nextChannelID++
	ch := model.Channel{ID: r.s.nextChannelID, Name: name, Owner: owner, IsPublic: isPublic}
	r.s.channels = append(r.s.channels, ch)
	return &ch, nil
}

func (r channelRepo) FindByID(_ context.Context, id uint64) (*model.Channel, error) {
	for _, ch := range r.s.channels {
		if ch.ID == id {
			ch := ch
			return &ch, nil
		}
	}
	return nil, nil
}

func (r channelRepo) FindByName(_ context.Context, name string) (*model.Channel, error) {
	for _, ch := range r.s.channels {
		if ch.Name == name {
			ch := ch
			return &ch, nil
		}
	}
	return nil, nil
}

func (r channelRepo) FindAllByOwner(_ context.Context, owner model.User) ([]model.Channel, error) {
	var out []model.Channel
	for _, ch := range r.s.channels {
		if ch.Owner.ID == owner.ID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (r channelRepo) FindAllPublic(_ context.Context, limit, offset int) ([]model.Channel, error) {
	var public []model.Channel
	for _, ch := range r.s.channels {
		if ch.IsPublic {
			public = append(public, ch)
		}
	}
	return paginate(public, limit, offset), nil
}

func (r channelRepo) SearchByName(_ context.Context, query string, limit, offset int) ([]model.Channel, error) {
	var matched []model.Channel
	for _, ch := range r.s.channels {
		if ch.IsPublic && strings.Contains(strings.ToLower(ch.Name), strings.ToLower(query)) {
			matched = append(matched, ch)
		}
	}
	return paginate(matched, limit, offset), nil
}

func (r channelRepo) Save(_ context.Context, ch model.Channel) error {
	for i := range r.s.channels {
		if r.s.channels[i].ID == ch.ID {
			r.s.channels[i] = ch
			return nil
		}
	}
	r.s.channels = append(r.s.channels, ch)
	return nil
}

func (r channelRepo) DeleteByID(_ context.Context, id uint64) error {
	for i := range r.s.channels {
		if r.s.channels[i].ID == id {
			r.s.channels = append(r.s.channels[:i], r.s.channels[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r channelRepo) Clear(_ context.Context) error {
	r.s.channels = nil
	return nil
}
