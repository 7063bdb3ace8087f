// Package localstore keeps client-owned JSON values in files, one per key.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/azaliaz/bookshop/internal/domain/consts"
)

var ErrInvalidKey = errors.New("invalid key")

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

type FileStore struct {
	dir string
}

func New(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// DefaultDir is ~/.bookshop.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, consts.DefaultStateDir), nil
}

func (st *FileStore) Dir() string {
	return st.dir
}

func (st *FileStore) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(st.dir, key+".json"), nil
}

// Load decodes the value stored under key into v. found is false when
// nothing has been saved yet.
func (st *FileStore) Load(key string, v any) (bool, error) {
	p, err := st.path(key)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Save replaces the value under key. The file is written next to its final
// name and renamed into place.
func (st *FileStore) Save(key string, v any) error {
	p, err := st.path(key)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(st.dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(st.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (st *FileStore) Delete(key string) error {
	p, err := st.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
