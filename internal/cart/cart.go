// Package cart is the client-local shopping cart. Every change is written
// through a Store so the cart survives restarts.
package cart

import (
	"errors"
	"slices"
	"sync"

	"github.com/azaliaz/bookshop/internal/domain/consts"
	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/localstore"
	"github.com/azaliaz/bookshop/internal/logger"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNotInCart       = errors.New("book is not in the cart")
)

type Store interface {
	Load() ([]models.CartItem, error)
	Save(items []models.CartItem) error
}

type Cart struct {
	mu    sync.Mutex
	store Store
	items []models.CartItem
}

// Open loads the persisted cart. Unreadable data is logged and replaced by
// an empty cart.
func Open(store Store) *Cart {
	items, err := store.Load()
	if err != nil {
		logger.Get().Warn().Err(err).Msg("stored cart is unreadable, starting empty")
		items = nil
	}
	items = slices.DeleteFunc(items, func(it models.CartItem) bool { return it.Quantity < 1 })
	return &Cart{store: store, items: items}
}

func (c *Cart) index(bookID int) int {
	return slices.IndexFunc(c.items, func(it models.CartItem) bool { return it.Book.ID == bookID })
}

// Add merges qty into the entry for book or appends a new one.
func (c *Cart) Add(book models.Book, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	items := slices.Clone(c.items)
	if i := c.index(book.ID); i >= 0 {
		items[i].Quantity += qty
	} else {
		items = append(items, models.CartItem{Book: book, Quantity: qty})
	}
	return c.commit(items)
}

// SetQuantity overwrites the quantity of a book; qty <= 0 removes it.
func (c *Cart) SetQuantity(bookID, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(bookID)
	if i < 0 {
		return ErrNotInCart
	}
	items := slices.Clone(c.items)
	if qty <= 0 {
		items = slices.Delete(items, i, i+1)
	} else {
		items[i].Quantity = qty
	}
	return c.commit(items)
}

func (c *Cart) Remove(bookID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(bookID)
	if i < 0 {
		return ErrNotInCart
	}
	return c.commit(slices.Delete(slices.Clone(c.items), i, i+1))
}

func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit([]models.CartItem{})
}

// commit persists items and only then makes them the cart contents.
func (c *Cart) commit(items []models.CartItem) error {
	if err := c.store.Save(items); err != nil {
		return err
	}
	c.items = items
	return nil
}

func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Total is the sum of price times quantity.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, it := range c.items {
		total += it.Book.Price * float64(it.Quantity)
	}
	return total
}

// Count is the number of copies in the cart.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// LocalStore persists the cart in a local file store under a fixed key.
type LocalStore struct {
	files *localstore.FileStore
}

func NewLocalStore(files *localstore.FileStore) *LocalStore {
	return &LocalStore{files: files}
}

func (ls *LocalStore) Load() ([]models.CartItem, error) {
	var items []models.CartItem
	if _, err := ls.files.Load(consts.CartKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (ls *LocalStore) Save(items []models.CartItem) error {
	return ls.files.Save(consts.CartKey, items)
}

// MemoryStore keeps the cart in memory only.
type MemoryStore struct {
	items []models.CartItem
}

func NewMemoryStore(items ...models.CartItem) *MemoryStore {
	return &MemoryStore{items: slices.Clone(items)}
}

func (ms *MemoryStore) Load() ([]models.CartItem, error) {
	return slices.Clone(ms.items), nil
}

func (ms *MemoryStore) Save(items []models.CartItem) error {
	ms.items = slices.Clone(items)
	return nil
}
