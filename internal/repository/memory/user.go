package memory

import (
	"context"
	"time"

	"github.com/iliyamo/instant-messaging/internal/model"
)

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, username, passwordValidation string) (*model.User, error) {
	r.s.nextUserID++
	u := model.User{ID: r.s.nextUserID, Username: username, PasswordValidation: passwordValidation}
	r.s.users = append(r.s.users, u)
	return &u, nil
}

func (r userRepo) FindByID(_ context.Context, id uint64) (*model.User, error) {
	for _, u := range r.s.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) FindAll(_ context.Context) ([]model.User, error) {
	out := make([]model.User, len(r.s.users))
	copy(out, r.s.users)
	return out, nil
}

func (r userRepo) Save(_ context.Context, u model.User) error {
	for i := range r.s.users {
		if r.s.users[i].ID == u.ID {
			r.s.users[i] = u
			return nil
		}
	}
	r.s.users = append(r.s.users, u)
	return nil
}

func (r userRepo) DeleteByID(_ context.Context, id uint64) error {
	for i := range r.s.users {
		if r.s.users[i].ID == id {
			r.s.users = append(r.s.users[:i], r.s.users[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r userRepo) Clear(_ context.Context) error {
	r.s.users = nil
	r.s.tokens = nil
	return nil
}

// CreateToken evicts the user's least-recently-used tokens until the
// quota has room, then inserts. Read-modify-write under the store
// lock; across processes this would only be approximate, which is
// fine for a soft quota.
func (r userRepo) CreateToken(_ context.Context, tok model.Token, maxTokens int) error {
	for r.countTokens(tok.UserID) >= maxTokens {
		oldest := -1
		for i, t := range r.s.tokens {
			if t.UserID != tok.UserID {
				continue
			}
			if oldest < 0 || t.LastUsedAt.Before(r.s.tokens[oldest].LastUsedAt) {
				oldest = i
			}
		}
		r.s.tokens = append(r.s.tokens[:oldest], r.s.tokens[oldest+1:]...)
	}
	r.s.tokens = append(r.s.tokens, tok)
	return nil
}

func (r userRepo) countTokens(userID uint64) int {
	n := 0
	for _, t := range r.s.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

func (r userRepo) FindTokenByFingerprint(ctx context.Context, fingerprint string) (*model.User, *model.Token, error) {
	for _, t := range r.s.tokens {
		if t.Fingerprint == fingerprint {
			u, err := r.FindByID(ctx, t.UserID)
			if err != nil || u == nil {
				return nil, nil, err
			}
			t := t
			return u, &t, nil
		}
	}
	return nil, nil, nil
}

func (r userRepo) UpdateTokenLastUsed(_ context.Context, tok model.Token, now time.Time) error {
	for i := range r.s.tokens {
		if r.s.tokens[i].Fingerprint == tok.Fingerprint {
			r.s.tokens[i].LastUsedAt = now
		}
	}
	return nil
}

func (r userRepo) RemoveTokenByFingerprint(_ context.Context, fingerprint string) (int, error) {
	kept := r.s.tokens[:0]
	removed := 0
	for _, t := range r.s.tokens {
		if t.Fingerprint == fingerprint {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	r.s.tokens = kept
	return removed, nil
}
