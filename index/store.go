package index

import (
	"errors"
	"fmt"
	"os"

	"github.com/eak1mov/go-libframes/frame"
	"github.com/eak1mov/go-libframes/layout"
)

// Store persists the whole index.
//
// Load returns an empty index if nothing has been saved yet and fails with
// frame.ErrParse if the stored index is malformed.
type Store interface {
	Load() (*Index, error)
	Save(ix *Index) error
}

// CoordsFinder is implemented by stores that can look up a coordinate
// without loading the whole index.
type CoordsFinder interface {
	FindAt(c frame.Coords) (assetID string, inst Instance, ok bool, err error)
}

// FileStore keeps the index in a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(filePath string) *FileStore {
	return &FileStore{path: filePath}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*Index, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", frame.ErrIO, err)
	}

	ix, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: index %v: %w", frame.ErrParse, s.path, err)
	}
	return ix, nil
}

func (s *FileStore) Save(ix *Index) error {
	data, err := ix.Encode()
	if err != nil {
		return fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	return layout.WriteFile(s.path, data)
}
