package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"codeberg.org/miketth/keebect/pkg/bindingstore"
	"codeberg.org/miketth/keebect/pkg/keebect"
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

func (s *BindingStore) Load() ([]keebect.Binding, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var f bindingstore.File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	return f.Bindings()
}

func (s *BindingStore) Save(bindings []keebect.Binding) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := json.MarshalIndent(bindingstore.FromBindings(bindings), "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return bindingstore.WriteFile(s.path, append(data, '\n'))
}
