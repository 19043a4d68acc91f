package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/instant-messaging/internal/model"
)

type messageRepo struct{ tx *sql.Tx }

const messageSelect = `SELECT msg.id, msg.content, msg.created_at,
	u.id, u.username, u.password_validation,
	c.id, c.name, c.is_public,
	o.id, o.username, o.password_validation
	FROM messages msg
	JOIN users u ON u.id = msg.user_id
	JOIN channels c ON c.id = msg.channel_id
	JOIN users o ON o.id = c.owner_id`

func scanMessage(scan func(dest ...any) error) (model.Message, error) {
	var m model.Message
	err := scan(&m.ID, &m.Content, &m.CreatedAt,
		&m.User.ID, &m.User.Username, &m.User.PasswordValidation,
		&m.Channel.ID, &m.Channel.Name, &m.Channel.IsPublic,
		&m.Channel.Owner.ID, &m.Channel.Owner.Username, &m.Channel.Owner.PasswordValidation)
	return m, err
}

// Create stamps the row inside the unit of work with a per-channel
// monotonic timestamp: never earlier than the newest message already
// in the channel, so ordering survives clock granularity.
func (r messageRepo) Create(ctx context.Context, content string, user model.User, ch model.Channel) (*model.Message, error) {
	now := time.Now().UTC()
	var last sql.NullTime
	err := r.tx.QueryRowContext(ctx,
		"SELECT MAX(created_at) FROM messages WHERE channel_id=?", ch.ID).Scan(&last)
	if err != nil {
		return nil, err
	}
	if last.Valid && !last.Time.Before(now) {
		now = last.Time.Add(time.Microsecond)
	}
	res, err := r.tx.ExecContext(ctx,
		"INSERT INTO messages (content, user_id, channel_id, created_at) VALUES (?,?,?,?)",
		content, user.ID, ch.ID, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Message{ID: uint64(id), Content: content, User: user, Channel: ch, CreatedAt: now}, nil
}

func (r messageRepo) FindByID(ctx context.Context, id uint64) (*model.Message, error) {
	m, err := scanMessage(r.tx.QueryRowContext(ctx, messageSelect+" WHERE msg.id=? LIMIT 1", id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindAllInChannel returns messages newest first.
func (r messageRepo) FindAllInChannel(ctx context.Context, ch model.Channel, limit, offset int) ([]model.Message, error) {
	rows, err := r.tx.QueryContext(ctx,
		messageSelect+" WHERE msg.channel_id=? ORDER BY msg.created_at DESC LIMIT ? OFFSET ?",
		ch.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Message
	for rows.Next() {
		m, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r messageRepo) DeleteByID(ctx context.Context, id uint64) error {
	_, err := r.tx.ExecContext(ctx, "DELETE FROM messages WHERE id=?", id)
	return err
}

func (r messageRepo) Clear(ctx context.Context) error {
	_, err := r.tx.ExecContext(ctx, "DELETE FROM messages")
	return err
}
