package memory

import (
	"sync"

	"codeberg.org/miketth/keebect/pkg/keebect"
)

type BindingStore struct {
	bindings []keebect.Binding
	lock     sync.Mutex
}

func NewBindingStore(bindings ...keebect.Binding) *BindingStore {
	return &BindingStore{bindings: keebect.DedupeBindings(bindings)}
}

func (s *BindingStore) Load() ([]keebect.Binding, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]keebect.Binding(nil), s.bindings...), nil
}

func (s *BindingStore) Save(bindings []keebect.Binding) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.bindings = keebect.DedupeBindings(bindings)
	return nil
}
