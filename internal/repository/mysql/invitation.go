package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/instant-messaging/internal/model"
)

type invitationRepo struct{ tx *sql.Tx }

const invitationSelect = `SELECT i.id, i.token, i.access_type, i.expires_at, i.status,
	u.id, u.username, u.password_validation,
	c.id, c.name, c.is_public,
	o.id, o.username, o.password_validation
	FROM invitations i
	JOIN users u ON u.id = i.created_by
	JOIN channels c ON c.id = i.channel_id
	JOIN users o ON o.id = c.owner_id`

func scanInvitation(scan func(dest ...any) error) (model.Invitation, error) {
	var inv model.Invitation
	err := scan(&inv.ID, &inv.Token, &inv.Access, &inv.ExpiresAt, &inv.Status,
		&inv.CreatedBy.ID, &inv.CreatedBy.Username, &inv.CreatedBy.PasswordValidation,
		&inv.Channel.ID, &inv.Channel.Name, &inv.Channel.IsPublic,
		&inv.Channel.Owner.ID, &inv.Channel.Owner.Username, &inv.Channel.Owner.PasswordValidation)
	return inv, err
}

func (r invitationRepo) queryOne(ctx context.Context, where string, args ...any) (*model.Invitation, error) {
	inv, err := scanInvitation(r.tx.QueryRowContext(ctx, invitationSelect+" "+where+" LIMIT 1", args...).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r invitationRepo) Create(ctx context.Context, token string, createdBy model.User, ch model.Channel, access model.AccessType, expiresAt time.Time) (*model.Invitation, error) {
	res, err := r.tx.ExecContext(ctx,
		"INSERT INTO invitations (token, created_by, channel_id, access_type, expires_at, status) VALUES (?,?,?,?,?,?)",
		token, createdBy.ID, ch.ID, string(access), expiresAt, string(model.StatusPending))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Invitation{
		ID:        uint64(id),
		Token:     token,
		CreatedBy: createdBy,
		Channel:   ch,
		Access:    access,
		ExpiresAt: expiresAt,
		Status:    model.StatusPending,
	}, nil
}

func (r invitationRepo) FindByID(ctx context.Context, id uint64) (*model.Invitation, error) {
	return r.queryOne(ctx, "WHERE i.id=?", id)
}

func (r invitationRepo) FindByToken(ctx context.Context, token string) (*model.Invitation, error) {
	return r.queryOne(ctx, "WHERE i.token=?", token)
}

func (r invitationRepo) FindByChannel(ctx context.Context, channelID uint64) ([]model.Invitation, error) {
	rows, err := r.tx.QueryContext(ctx, invitationSelect+" WHERE i.channel_id=? ORDER BY i.id", channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Save only touches status: channel and access level are immutable
// once an invitation has been issued.
func (r invitationRepo) Save(ctx context.Context, inv model.Invitation) error {
	_, err := r.tx.ExecContext(ctx,
		"UPDATE invitations SET status=? WHERE id=?", string(inv.Status), inv.ID)
	return err
}

func (r invitationRepo) Clear(ctx context.Context) error {
	_, err := r.tx.ExecContext(ctx, "DELETE FROM invitations")
	return err
}
