package handler

import (
	"time"

	"github.com/iliyamo/instant-messaging/internal/model"
)

// Response DTOs shared across handlers. Domain models never reach the
// wire directly; in particular User carries the password hash.

type userView struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

type channelView struct {
	ID       uint64   `json:"id"`
	Name     string   `json:"name"`
	Owner    userView `json:"owner"`
	IsPublic bool     `json:"is_public"`
}

type invitationView struct {
	ID        uint64    `json:"id"`
	Token     string    `json:"token"`
	ChannelID uint64    `json:"channel_id"`
	Access    string    `json:"access"`
	ExpiresAt time.Time `json:"expires_at"`
	Status    string    `json:"status"`
}

type messageView struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	User      userView  `json:"user"`
	ChannelID uint64    `json:"channel_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserView(u model.User) userView {
	return userView{ID: u.ID, Username: u.Username}
}

func toChannelView(ch model.Channel) channelView {
	return channelView{ID: ch.ID, Name: ch.Name, Owner: toUserView(ch.Owner), IsPublic: ch.IsPublic}
}

func toInvitationView(inv model.Invitation) invitationView {
	return invitationView{
		ID:        inv.ID,
		Token:     inv.Token,
		ChannelID: inv.Channel.ID,
		Access:    string(inv.Access),
		ExpiresAt: inv.ExpiresAt,
		Status:    string(inv.Status),
	}
}

func toMessageView(m model.Message) messageView {
	return messageView{
		ID:        m.ID,
		Content:   m.Content,
		User:      toUserView(m.User),
		ChannelID: m.Channel.ID,
		CreatedAt: m.CreatedAt,
	}
}

func toUserViews(users []model.User) []userView {
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, toUserView(u))
	}
	return out
}

func toChannelViews(chs []model.Channel) []channelView {
	out := make([]channelView, 0, len(chs))
	for _, ch := range chs {
		out = append(out, toChannelView(ch))
	}
	return out
}

func toInvitationViews(invs []model.Invitation) []invitationView {
	out := make([]invitationView, 0, len(invs))
	for _, inv := range invs {
		out = append(out, toInvitationView(inv))
	}
	return out
}

func toMessageViews(msgs []model.Message) []messageView {
	out := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageView(m))
	}
	return out
}
