package localfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists index snapshots on the local filesystem. Writes go through
// a temp file and rename so a crashed writer never leaves a torn snapshot
// for the next restore.
type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if basePath == "" {
		basePath = "./data/snapshots"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) Save(name string, data []byte) error {
	path := filepath.Join(s.basePath, name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// Load returns ok=false for a snapshot that has never been written; that is
// the normal first-boot case, not an error.
func (s *Store) Load(name string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.basePath, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}
	return data, true, nil
}
