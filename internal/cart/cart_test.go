package cart

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/localstore"
)

var (
	gatsby = models.Book{ID: 3, Title: "The Great Gatsby", Price: 9.99}
	hobbit = models.Book{ID: 5, Title: "The Hobbit", Price: 14.99}
)

func TestCart_AddMerges(t *testing.T) {
	c := Open(NewMemoryStore())
	require.NoError(t, c.Add(gatsby, 1))
	require.NoError(t, c.Add(hobbit, 2))
	require.NoError(t, c.Add(gatsby, 2))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 2, items[1].Quantity)
	assert.Equal(t, 5, c.Count())
	assert.InDelta(t, 3*9.99+2*14.99, c.Total(), 1e-9)

	assert.ErrorIs(t, c.Add(gatsby, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add(gatsby, -1), ErrInvalidQuantity)
	assert.Equal(t, 5, c.Count())
}

func TestCart_SetQuantity(t *testing.T) {
	c := Open(NewMemoryStore())
	require.NoError(t, c.Add(gatsby, 1))
	require.NoError(t, c.Add(hobbit, 1))

	require.NoError(t, c.SetQuantity(gatsby.ID, 4))
	assert.Equal(t, 4, c.Items()[0].Quantity)

	require.NoError(t, c.SetQuantity(gatsby.ID, 0))
	require.Len(t, c.Items(), 1)
	assert.Equal(t, hobbit.ID, c.Items()[0].Book.ID)

	require.NoError(t, c.SetQuantity(hobbit.ID, -3))
	assert.Empty(t, c.Items())
	assert.Zero(t, c.Total())

	assert.ErrorIs(t, c.SetQuantity(42, 1), ErrNotInCart)
}

func TestCart_QuantityNeverBelowOne(t *testing.T) {
	c := Open(NewMemoryStore())
	ops := []func() error{
		func() error { return c.Add(gatsby, 2) },
		func() error { return c.SetQuantity(gatsby.ID, -1) },
		func() error { return c.Add(hobbit, 1) },
		func() error { return c.SetQuantity(hobbit.ID, 7) },
		func() error { return c.Add(gatsby, 1) },
		func() error { return c.SetQuantity(gatsby.ID, 0) },
	}
	for _, op := range ops {
		_ = op()
		for _, it := range c.Items() {
			assert.GreaterOrEqual(t, it.Quantity, 1)
		}
	}
}

func TestCart_RemoveAndClear(t *testing.T) {
	store := NewMemoryStore()
	c := Open(store)
	require.NoError(t, c.Add(gatsby, 1))
	require.NoError(t, c.Add(hobbit, 1))

	require.NoError(t, c.Remove(gatsby.ID))
	assert.ErrorIs(t, c.Remove(gatsby.ID), ErrNotInCart)
	assert.Len(t, c.Items(), 1)

	require.NoError(t, c.Clear())
	assert.Empty(t, c.Items())
	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestCart_PersistsAcrossOpen(t *testing.T) {
	files := localstore.New(t.TempDir())
	c := Open(NewLocalStore(files))
	require.NoError(t, c.Add(gatsby, 2))
	require.NoError(t, c.Add(hobbit, 1))

	reopened := Open(NewLocalStore(files))
	assert.Equal(t, c.Items(), reopened.Items())
	assert.InDelta(t, c.Total(), reopened.Total(), 1e-9)
}

func TestCart_CorruptStoreStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cart.json"), []byte("[{oops"), 0o600))

	c := Open(NewLocalStore(localstore.New(dir)))
	assert.Empty(t, c.Items())
	require.NoError(t, c.Add(hobbit, 1))

	reopened := Open(NewLocalStore(localstore.New(dir)))
	assert.Len(t, reopened.Items(), 1)
}

func TestCart_DropsInvalidStoredEntries(t *testing.T) {
	c := Open(NewMemoryStore(
		models.CartItem{Book: gatsby, Quantity: 0},
		models.CartItem{Book: hobbit, Quantity: 2},
	))
	require.Len(t, c.Items(), 1)
	assert.Equal(t, hobbit.ID, c.Items()[0].Book.ID)
}

var errDiskFull = errors.New("disk full")

// brokenStore loads fine and refuses every save.
type brokenStore struct {
	items []models.CartItem
}

func (bs *brokenStore) Load() ([]models.CartItem, error) {
	return bs.items, nil
}

func (bs *brokenStore) Save([]models.CartItem) error {
	return errDiskFull
}

func TestCart_FailedSaveKeepsContents(t *testing.T) {
	c := Open(&brokenStore{items: []models.CartItem{{Book: gatsby, Quantity: 2}}})
	want := c.Items()

	assert.ErrorIs(t, c.Add(gatsby, 1), errDiskFull)
	assert.ErrorIs(t, c.Add(hobbit, 1), errDiskFull)
	assert.ErrorIs(t, c.SetQuantity(gatsby.ID, 5), errDiskFull)
	assert.ErrorIs(t, c.SetQuantity(gatsby.ID, 0), errDiskFull)
	assert.ErrorIs(t, c.Remove(gatsby.ID), errDiskFull)
	assert.ErrorIs(t, c.Clear(), errDiskFull)

	assert.Equal(t, want, c.Items())
	assert.Equal(t, 2, c.Count())
}
