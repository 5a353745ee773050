// Package file stores whiteboard documents as JSON files and watches them
// for changes made outside the app.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"whiteboard/document"
	"whiteboard/internal/storage"
)

// Ext is the extension of saved documents.
const Ext = ".json"

// Store keeps each named document in <dir>/<name>.json.
type Store struct {
	dir string
}

var _ storage.Store = (*Store)(nil)

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file a document name is stored in. Names that already
// carry the extension or are absolute are used as they are.
func (s *Store) Path(name string) string {
	if !strings.HasSuffix(name, Ext) {
		name += Ext
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

func (s *Store) Save(_ context.Context, name string, m document.Model) error {
	if name == "" {
		return errors.New("saving document: empty name")
	}
	return WriteFile(s.Path(name), m)
}

func (s *Store) Load(_ context.Context, name string) (document.Model, error) {
	return ReadFile(s.Path(name))
}

// Marshal encodes a model as indented JSON.
func Marshal(m document.Model) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling document: %w", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes a model.
func Unmarshal(data []byte) (document.Model, error) {
	var m document.Model
	if err := json.Unmarshal(data, &m); err != nil {
		return document.Model{}, fmt.Errorf("%w: %v", document.ErrInvalidModel, err)
	}
	return m, nil
}

// WriteFile writes m to path through a temporary file so readers never see
// a partial document.
func WriteFile(path string, m document.Model) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing document: %w", err)
	}
	return nil
}

// ReadFile reads the model saved at path.
func ReadFile(path string) (document.Model, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return document.Model{}, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
	}
	if err != nil {
		return document.Model{}, fmt.Errorf("reading document: %w", err)
	}
	return Unmarshal(data)
}
