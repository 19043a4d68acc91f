// Package mysql implements the persistence ports on MySQL. Every
// repository method runs against the *sql.Tx of the enclosing unit
// of work, so a service operation commits or rolls back as a whole.
package mysql

import (
	"context"
	"database/sql"

	"github.com/iliyamo/instant-messaging/internal/repository"
)

// Manager implements repository.Manager on a database handle.
type Manager struct{ DB *sql.DB }

// NewManager returns a unit-of-work manager bound to db.
func NewManager(db *sql.DB) *Manager { return &Manager{DB: db} }

// Run opens a transaction, executes fn, and commits when fn returns
// nil. Any error (or panic) rolls the whole unit of work back.
func (m *Manager) Run(ctx context.Context, fn func(tx repository.Tx) error) (err error) {
	sqlTx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
			return
		}
		err = sqlTx.Commit()
	}()
	return fn(tx{sqlTx})
}

type tx struct{ tx *sql.Tx }

func (t tx) Users() repository.UserRepository             { return userRepo{t.tx} }
func (t tx) Channels() repository.ChannelRepository       { return channelRepo{t.tx} }
func (t tx) Members() repository.MemberRepository         { return memberRepo{t.tx} }
func (t tx) Invitations() repository.InvitationRepository { return invitationRepo{t.tx} }
func (t tx) Messages() repository.MessageRepository       { return messageRepo{t.tx} }
