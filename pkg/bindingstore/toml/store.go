package toml

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"codeberg.org/miketth/keebect/pkg/bindingstore"
	"codeberg.org/miketth/keebect/pkg/keebect"
	"github.com/BurntSushi/toml"
)

type BindingStore struct {
	path string
	lock sync.Mutex
}

func NewBindingStore(path string) *BindingStore {
	return &BindingStore{path: path}
}

func (s *BindingStore) Path() string {
	return s.path
}

// Load returns no bindings when the file does not exist yet.
func (s *BindingStore) Load() ([]keebect.Binding, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var f bindingstore.File
	_, err := toml.DecodeFile(s.path, &f)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}

	return f.Bindings()
}

func (s *BindingStore) Save(bindings []keebect.Binding) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(bindingstore.FromBindings(bindings)); err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}

	return bindingstore.WriteFile(s.path, buf.Bytes())
}
