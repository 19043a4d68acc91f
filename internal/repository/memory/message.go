package memory

import (
	"context"
	"time"

	"github.com/iliyamo/instant-messaging/internal/model"
)

type messageRepo struct{ s *Store }

// Create stamps the message with a per-channel monotonic timestamp:
// never earlier than the previous message in the same channel, so
// listings keep a stable order even within one clock tick.
func (r messageRepo) Create(_ context.Context, content string, user model.User, ch model.Channel) (*model.Message, error) {
	now := time.Now().UTC()
	for _, m := range r.s.messages {
		if m.Channel.ID == ch.ID && !m.CreatedAt.Before(now) {
			now = m.CreatedAt.Add(time.Nanosecond)
		}
	}
	r.s.nextMessageID++
	msg := model.Message{ID: r.s.nextMessageID, Content: content, User: user, Channel: ch, CreatedAt: now}
	r.s.messages = append(r.s.messages, msg)
	return &msg, nil
}

func (r messageRepo) FindByID(_ context.Context, id uint64) (*model.Message, error) {
	for _, m := range r.s.messages {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

// FindAllInChannel returns messages newest first.
func (r messageRepo) FindAllInChannel(_ context.Context, ch model.Channel, limit, offset int) ([]model.Message, error) {
	var out []model.Message
	for i := len(r.s.messages) - 1; i >= 0; i-- {
		if r.s.messages[i].Channel.ID == ch.ID {
			out = append(out, r.s.messages[i])
		}
	}
	return paginate(out, limit, offset), nil
}

func (r messageRepo) DeleteByID(_ context.Context, id uint64) error {
	for i := range r.s.messages {
		if r.s.messages[i].ID == id {
			r.s.messages = append(r.s.messages[:i], r.s.messages[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r messageRepo) Clear(_ context.Context) error {
	r.s.messages = nil
	return nil
}
