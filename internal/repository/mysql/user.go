package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/instant-messaging/internal/model"
)

type userRepo struct{ tx *sql.Tx }

const userColumns = "id, username, password_validation"

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordValidation)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r userRepo) Create(ctx context.Context, username, passwordValidation string) (*model.User, error) {
	res, err := r.tx.ExecContext(ctx,
		"INSERT INTO users (username, password_validation) VALUES (?,?)",
		username, passwordValidation)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.User{ID: uint64(id), Username: username, PasswordValidation: passwordValidation}, nil
}

func (r userRepo) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.tx.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

func (r userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(r.tx.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

func (r userRepo) FindAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.tx.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordValidation); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r userRepo) Save(ctx context.Context, u model.User) error {
	_, err := r.tx.ExecContext(ctx,
		"UPDATE users SET username=?, password_validation=? WHERE id=?",
		u.Username, u.PasswordValidation, u.ID)
	return err
}

func (r userRepo) DeleteByID(ctx context.Context, id uint64) error {
	_, err := r.tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return err
}

func (r userRepo) Clear(ctx context.Context) error {
	if _, err := r.tx.ExecContext(ctx, "DELETE FROM tokens"); err != nil {
		return err
	}
	_, err := r.tx.ExecContext(ctx, "DELETE FROM users")
	return err
}

// CreateToken deletes the user's least-recently-used tokens until the
// quota has room, then inserts the new row. Both statements run in
// the enclosing transaction, but concurrent logins may still race on
// the count; the quota is soft, so approximate eviction is accepted.
func (r userRepo) CreateToken(ctx context.Context, tok model.Token, maxTokens int) error {
	var count int
	err := r.tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tokens WHERE user_id=?", tok.UserID).Scan(&count)
	if err != nil {
		return err
	}
	if excess := count - maxTokens + 1; excess > 0 {
		_, err = r.tx.ExecContext(ctx,
			"DELETE FROM tokens WHERE user_id=? ORDER BY last_used_at ASC LIMIT ?",
			tok.UserID, excess)
		if err != nil {
			return err
		}
	}
	_, err = r.tx.ExecContext(ctx,
		"INSERT INTO tokens (fingerprint, user_id, created_at, last_used_at) VALUES (?,?,?,?)",
		tok.Fingerprint, tok.UserID, tok.CreatedAt, tok.LastUsedAt)
	return err
}

func (r userRepo) FindTokenByFingerprint(ctx context.Context, fingerprint string) (*model.User, *model.Token, error) {
	var (
		u model.User
		t model.Token
	)
	err := r.tx.QueryRowContext(ctx,
		`SELECT u.id, u.username, u.password_validation, t.fingerprint, t.user_id, t.created_at, t.last_used_at
		 FROM tokens t JOIN users u ON u.id = t.user_id
		 WHERE t.fingerprint=? LIMIT 1`, fingerprint).
		Scan(&u.ID, &u.Username, &u.PasswordValidation, &t.Fingerprint, &t.UserID, &t.CreatedAt, &t.LastUsedAt)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &u, &t, nil
}

func (r userRepo) UpdateTokenLastUsed(ctx context.Context, tok model.Token, now time.Time) error {
	_, err := r.tx.ExecContext(ctx,
		"UPDATE tokens SET last_used_at=? WHERE fingerprint=?", now, tok.Fingerprint)
	return err
}

func (r userRepo) RemoveTokenByFingerprint(ctx context.Context, fingerprint string) (int, error) {
	res, err := r.tx.ExecContext(ctx, "DELETE FROM tokens WHERE fingerprint=?", fingerprint)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
