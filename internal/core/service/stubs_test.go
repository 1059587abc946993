package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/srushti128/kodbank/internal/core/domain"
)

// stubUserRepo is an in-memory ports.UserRepository. The duplicate check in
// Create mirrors the store's unique indexes on username and email.
type stubUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User // keyed by UID

	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}

	r.seq++
	created := cloneUser(user)
	created.UID = fmt.Sprintf("uid-%d", r.seq)
	r.users[created.UID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUID(_ context.Context, uid string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[uid]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Delete(_ context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[uid]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, uid)
	return nil
}

// stubSessionRepo is an in-memory ports.SessionRepository with injectable
// failures and call counting, so tests can prove which calls happened.
type stubSessionRepo struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*domain.SessionRecord // keyed by token

	createErr error
	findErr   error

	findCalls int
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*domain.SessionRecord)}
}

func (r *stubSessionRepo) Create(_ context.Context, tokenValue, ownerUID string, expiry time.Time) (*domain.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.sessions[tokenValue]; exists {
		return nil, domain.ErrDuplicateSession
	}

	r.seq++
	rec := &domain.SessionRecord{
		ID:        fmt.Sprintf("sid-%d", r.seq),
		Token:     tokenValue,
		OwnerUID:  ownerUID,
		Expiry:    expiry,
		CreatedAt: time.Now().UTC(),
	}
	r.sessions[tokenValue] = rec
	clone := *rec
	return &clone, nil
}

func (r *stubSessionRepo) FindActive(_ context.Context, tokenValue string) (*domain.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.findCalls++
	if r.findErr != nil {
		return nil, r.findErr
	}

	rec, ok := r.sessions[tokenValue]
	if !ok || !rec.Active(time.Now().UTC()) {
		return nil, domain.ErrSessionNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *stubSessionRepo) DeleteByToken(_ context.Context, tokenValue string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[tokenValue]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, tokenValue)
	return nil
}

func (r *stubSessionRepo) DeleteAllByOwner(_ context.Context, ownerUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for tok, rec := range r.sessions {
		if rec.OwnerUID == ownerUID {
			delete(r.sessions, tok)
		}
	}
	return nil
}

func (r *stubSessionRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for tok, rec := range r.sessions {
		if !rec.Expiry.After(before) {
			delete(r.sessions, tok)
			n++
		}
	}
	return n, nil
}

func (r *stubSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
