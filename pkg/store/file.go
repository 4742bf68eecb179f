package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/errors"
	"github.com/stormboard/stormboard/pkg/observability"
)

// FileStore keeps each board as <dir>/<name>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating the directory
// if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to create board directory: %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Get loads a board by instance name.
func (s *FileStore) Get(ctx context.Context, name string) (*board.Board, error) {
	start := time.Now()
	if err := errors.ValidateInstanceName(name); err != nil {
		return nil, err
	}

	b, err := board.ReadFile(s.path(name))
	observability.Store().OnGet(ctx, name, err == nil, time.Since(start))
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return nil, errors.New(errors.ErrCodeBoardNotFound, "board %q does not exist", name)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Put saves a board under its InstanceName.
func (s *FileStore) Put(ctx context.Context, b *board.Board) error {
	start := time.Now()
	err := s.put(b)
	observability.Store().OnPut(ctx, b.InstanceName, time.Since(start), err)
	return err
}

func (s *FileStore) put(b *board.Board) error {
	if err := errors.ValidateInstanceName(b.InstanceName); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	return board.WriteFile(s.path(b.InstanceName), b)
}

// Delete removes a board by instance name.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := s.delete(name)
	observability.Store().OnDelete(ctx, name, time.Since(start), err)
	return err
}

func (s *FileStore) delete(name string) error {
	if err := errors.ValidateInstanceName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return errors.New(errors.ErrCodeBoardNotFound, "board %q does not exist", name)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "failed to delete board %q", name)
	}
	return nil
}

// List returns all stored instance names, sorted.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to list boards")
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
