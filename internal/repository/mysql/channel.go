package mysql

import (
	"context"
	"database/sql"

	"github.com/iliyamo/instant-messaging/internal/model"
)

type channelRepo struct{ tx *sql.Tx }

// Channel rows are always loaded together with their owner.
const channelSelect = `SELECT c.id, c.name, c.is_public, u.id, u.username, u.password_validation
	FROM channels c JOIN users u ON u.id = c.owner_id`

func scanChannel(scan func(dest ...any) error) (model.Channel, error) {
	var ch model.Channel
	err := scan(&ch.ID, &ch.Name, &ch.IsPublic, &ch.Owner.ID, &ch.Owner.Username, &ch.Owner.PasswordValidation)
	return ch, err
}

func (r channelRepo) queryOne(ctx context.Context, where string, args ...any) (*model.Channel, error) {
	ch, err := scanChannel(r.tx.QueryRowContext(ctx, channelSelect+" "+where+" LIMIT 1", args...).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r channelRepo) queryMany(ctx context.Context, suffix string, args ...any) ([]model.Channel, error) {
	rows, err := r.tx.QueryContext(ctx, channelSelect+" "+suffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Channel
	for rows.Next() {
		ch, err := scanChannel(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (r channelRepo) Create(ctx context.Context, name string, owner model.User, isPublic bool) (*model.Channel, error) {
	res, err := r.tx.ExecContext(ctx,
		"INSERT INTO channels (name, owner_id, is_public) VALUES (?,?,?)",
		name, owner.ID, isPublic)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Channel{ID: uint64(id), Name: name, Owner: owner, IsPublic: isPublic}, nil
}

func (r channelRepo) FindByID(ctx context.Context, id uint64) (*model.Channel, error) {
	return r.queryOne(ctx, "WHERE c.id=?", id)
}

func (r channelRepo) FindByName(ctx context.Context, name string) (*model.Channel, error) {
	return r.queryOne(ctx, "WHERE c.name=?", name)
}

func (r channelRepo) FindAllByOwner(ctx context.Context, owner model.User) ([]model.Channel, error) {
	return r.queryMany(ctx, "WHERE c.owner_id=? ORDER BY c.id", owner.ID)
}

func (r channelRepo) FindAllPublic(ctx context.Context, limit, offset int) ([]model.Channel, error) {
	return r.queryMany(ctx, "WHERE c.is_public=TRUE ORDER BY c.id LIMIT ? OFFSET ?", limit, offset)
}

func (r channelRepo) SearchByName(ctx context.Context, query string, limit, offset int) ([]model.Channel, error) {
	return r.queryMany(ctx, "WHERE c.is_public=TRUE AND c.name LIKE CONCAT('%', ?, '%') ORDER BY c.id LIMIT ? OFFSET ?",
		query, limit, offset)
}

func (r channelRepo) Save(ctx context.Context, ch model.Channel) error {
	_, err := r.tx.ExecContext(ctx,
		"UPDATE channels SET name=?, owner_id=?, is_public=? WHERE id=?",
		ch.Name, ch.Owner.ID, ch.IsPublic, ch.ID)
	return err
}

func (r channelRepo) DeleteByID(ctx context.Context, id uint64) error {
	_, err := r.tx.ExecContext(ctx, "DELETE FROM channels WHERE id=?", id)
	return err
}

func (r channelRepo) Clear(ctx context.Context) error {
	_, err := r.tx.ExecContext(ctx, "DELETE FROM channels")
	return err
}
