// Package session keeps server-side login sessions for the demo auth server.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/logger"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Create(ctx context.Context, user models.SessionUser) (string, error)
	Get(ctx context.Context, id string) (models.SessionUser, error)
	Delete(ctx context.Context, id string) error
}

type memEntry struct {
	user    models.SessionUser
	expires time.Time
}

// MemStore keeps sessions in process memory. Expired entries are dropped
// when read and swept on every Create.
type MemStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memEntry
	now      func() time.Time
}

func NewMemStore(ttl time.Duration) *MemStore {
	return &MemStore{
		ttl:      ttl,
		sessions: make(map[string]memEntry),
		now:      time.Now,
	}
}

func (ms *MemStore) Create(_ context.Context, user models.SessionUser) (string, error) {
	id := uuid.NewString()
	ms.mu.Lock()
	defer ms.mu.Unlock()
	now := ms.now()
	for sid, e := range ms.sessions {
		if !now.Before(e.expires) {
			delete(ms.sessions, sid)
		}
	}
	ms.sessions[id] = memEntry{user: user, expires: now.Add(ms.ttl)}
	logger.Get().Debug().Str("username", user.Username).Msg("session created")
	return id, nil
}

func (ms *MemStore) Get(_ context.Context, id string) (models.SessionUser, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	e, ok := ms.sessions[id]
	if !ok {
		return models.SessionUser{}, ErrNotFound
	}
	if !ms.now().Before(e.expires) {
		delete(ms.sessions, id)
		return models.SessionUser{}, ErrNotFound
	}
	return e.user, nil
}

func (ms *MemStore) Delete(_ context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.sessions, id)
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (ms *MemStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.sessions)
}
