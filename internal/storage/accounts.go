package storage

import (
	"context"
	"sync"
	"time"

	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/logger"
	storerrors "github.com/azaliaz/bookshop/internal/storage/errors"
)

// AccountStorage holds the accounts of the session demo server, keyed by
// username.
type AccountStorage struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
}

func NewAccounts() *AccountStorage {
	return &AccountStorage{accounts: make(map[string]models.Account)}
}

func (as *AccountStorage) SaveAccount(_ context.Context, acc models.Account) error {
	as.mu.Lock()
	defer as.mu.Unlock()
	if _, ok := as.accounts[acc.Username]; ok {
		return storerrors.ErrAccountExists
	}
	as.accounts[acc.Username] = acc
	logger.Get().Debug().Str("username", acc.Username).Msg("account saved")
	return nil
}

func (as *AccountStorage) GetAccount(_ context.Context, username string) (models.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	acc, ok := as.accounts[username]
	if !ok {
		return models.Account{}, storerrors.ErrAccountNotFound
	}
	return acc, nil
}

func (as *AccountStorage) TouchLogin(_ context.Context, username string, at time.Time) error {
	as.mu.Lock()
	defer as.mu.Unlock()
	acc, ok := as.accounts[username]
	if !ok {
		return storerrors.ErrAccountNotFound
	}
	acc.LastLogin = &at
	as.accounts[username] = acc
	return nil
}
