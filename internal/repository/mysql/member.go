package mysql

import (
	"context"
	"database/sql"

	"github.com/iliyamo/instant-messaging/internal/model"
)

type memberRepo struct{ tx *sql.Tx }

// Membership rows carry the member user, the channel, and the
// channel's owner (aliased o) so the full aggregate comes back in
// one round trip.
const memberSelect = `SELECT m.id, m.access_type,
	u.id, u.username, u.password_validation,
	c.id, c.name, c.is_public,
	o.id, o.username, o.password_validation
	FROM channel_members m
	JOIN users u ON u.id = m.user_id
	JOIN channels c ON c.id = m.channel_id
	JOIN users o ON o.id = c.owner_id`

func scanMember(scan func(dest ...any) error) (model.ChannelMember, error) {
	var m model.ChannelMember
	err := scan(&m.ID, &m.Access,
		&m.User.ID, &m.User.Username, &m.User.PasswordValidation,
		&m.Channel.ID, &m.Channel.Name, &m.Channel.IsPublic,
		&m.Channel.Owner.ID, &m.Channel.Owner.Username, &m.Channel.Owner.PasswordValidation)
	return m, err
}

func (r memberRepo) queryMany(ctx context.Context, suffix string, args ...any) ([]model.ChannelMember, error) {
	rows, err := r.tx.QueryContext(ctx, memberSelect+" "+suffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ChannelMember
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r memberRepo) Add(ctx context.Context, user model.User, ch model.Channel, access model.AccessType) (*model.ChannelMember, error) {
	res, err := r.tx.ExecContext(ctx,
		"INSERT INTO channel_members (user_id, channel_id, access_type) VALUES (?,?,?)",
		user.ID, ch.ID, string(access))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.ChannelMember{ID: uint64(id), User: user, Channel: ch, Access: access}, nil
}

func (r memberRepo) Find(ctx context.Context, user model.User, ch model.Channel) (*model.ChannelMember, error) {
	m, err := scanMember(r.tx.QueryRowContext(ctx,
		memberSelect+" WHERE m.user_id=? AND m.channel_id=? LIMIT 1", user.ID, ch.ID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r memberRepo) ListChannelsForUser(ctx context.Context, user model.User, limit, offset int) ([]model.ChannelMember, error) {
	return r.queryMany(ctx, "WHERE m.user_id=? ORDER BY m.id LIMIT ? OFFSET ?", user.ID, limit, offset)
}

func (r memberRepo) ListMembers(ctx context.Context, ch model.Channel, limit, offset int) ([]model.ChannelMember, error) {
	return r.queryMany(ctx, "WHERE m.channel_id=? ORDER BY m.id LIMIT ? OFFSET ?", ch.ID, limit, offset)
}

func (r memberRepo) Remove(ctx context.Context, user model.User, ch model.Channel) error {
	_, err := r.tx.ExecContext(ctx,
		"DELETE FROM channel_members WHERE user_id=? AND channel_id=?", user.ID, ch.ID)
	return err
}

func (r memberRepo) Save(ctx context.Context, m model.ChannelMember) error {
	_, err := r.tx.ExecContext(ctx,
		"UPDATE channel_members SET access_type=? WHERE id=?", string(m.Access), m.ID)
	return err
}

func (r memberRepo) DeleteByID(ctx context.Context, id uint64) error {
	_, err := r.tx.ExecContext(ctx, "DELETE FROM channel_members WHERE id=?", id)
	return err
}

func (r memberRepo) Clear(ctx context.Context) error {
	_, err := r.tx.ExecContext(ctx, "DELETE FROM channel_members")
	return err
}
