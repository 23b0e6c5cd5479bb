package keebect

import (
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var (
	kbA = DiscoveredKeyboard{Identity: Identity{Vendor: 0x0001, Product: 0x0001}, Name: "Alpha Keyboard", Path: "/dev/input/event3"}
	kbB = DiscoveredKeyboard{Identity: Identity{Vendor: 0x0002, Product: 0x0002}, Name: "Bravo Keyboard", Path: "/dev/input/event5"}
	kbC = DiscoveredKeyboard{Identity: Identity{Vendor: 0x0003, Product: 0x0003}, Name: "Charlie Keyboard", Path: "/dev/input/event9"}

	bindingA = Binding{Identity: kbA.Identity, Name: kbA.Name, LayoutIndex: 0}
	bindingB = Binding{Identity: kbB.Identity, Name: kbB.Name, LayoutIndex: 1}
)

var (
	press   = RawEvent{Type: evKey, Code: 30, Value: 1}
	release = RawEvent{Type: evKey, Code: 30, Value: 0}
	repeat  = RawEvent{Type: evKey, Code: 30, Value: 2}
	syn     = RawEvent{Type: 0, Code: 0, Value: 1}
)

type fakeStream struct {
	events    chan RawEvent
	closed    chan struct{}
	closeOnce sync.Once
	closes    atomic.Int32
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		events: make(chan RawEvent, 16),
		closed: make(chan struct{}),
	}
}

// ReadEvent returns io.EOF once events is closed, like an unplugged device.
func (s *fakeStream) ReadEvent() (RawEvent, error) {
	select {
	case ev, ok := <-s.events:
		if !ok {
			return RawEvent{}, io.EOF
		}
		return ev, nil
	case <-s.closed:
		return RawEvent{}, os.ErrClosed
	}
}

func (s *fakeStream) Close() error {
	s.closes.Add(1)
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeStream) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

type fakeSource struct {
	mu        sync.Mutex
	keyboards []DiscoveredKeyboard
	enumErr   error
	openErr   map[string]error
	streams   map[string][]*fakeStream
	opens     int
}

func newFakeSource(keyboards ...DiscoveredKeyboard) *fakeSource {
	return &fakeSource{
		keyboards: keyboards,
		openErr:   make(map[string]error),
		streams:   make(map[string][]*fakeStream),
	}
}

func (s *fakeSource) set(keyboards ...DiscoveredKeyboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyboards = keyboards
}

func (s *fakeSource) failEnumeration(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enumErr = err
}

func (s *fakeSource) failOpen(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.openErr, path)
		return
	}
	s.openErr[path] = err
}

func (s *fakeSource) Enumerate() ([]DiscoveredKeyboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enumErr != nil {
		return nil, s.enumErr
	}
	return append([]DiscoveredKeyboard(nil), s.keyboards...), nil
}

func (s *fakeSource) Open(path string) (EventStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openErr[path]; err != nil {
		return nil, err
	}
	s.opens++
	st := newFakeStream()
	s.streams[path] = append(s.streams[path], st)
	return st, nil
}

func (s *fakeSource) openCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens
}

// stream returns the most recently opened stream for path.
func (s *fakeSource) stream(path string) *fakeStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	streams := s.streams[path]
	if len(streams) == 0 {
		return nil
	}
	return streams[len(streams)-1]
}

type fakeLayouts struct {
	mu      sync.Mutex
	names   []string
	current uint32
	nexts   int
	failAt  int // fail the n-th advance, 1-based; 0 never fails
	getErr  error
}

func (l *fakeLayouts) KeyboardLayouts() (Layouts, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.getErr != nil {
		return Layouts{}, l.getErr
	}
	return Layouts{Names: append([]string(nil), l.names...), Current: l.current}, nil
}

func (l *fakeLayouts) SwitchLayoutNext() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nexts++
	if l.failAt != 0 && l.nexts == l.failAt {
		return errors.New("niri went away")
	}
	l.current = (l.current + 1) % uint32(len(l.names))
	return nil
}

func (l *fakeLayouts) nextCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nexts
}

type fakeSwitcher struct {
	mu      sync.Mutex
	targets []uint32
	err     error
}

func (s *fakeSwitcher) SwitchTo(target uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = append(s.targets, target)
	return s.err
}

func (s *fakeSwitcher) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *fakeSwitcher) calls() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.targets...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeHotplug struct {
	events    chan HotplugEvent
	errs      chan error
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeHotplug() *fakeHotplug {
	return &fakeHotplug{
		events: make(chan HotplugEvent),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (h *fakeHotplug) Next() (HotplugEvent, error) {
	select {
	case ev := <-h.events:
		return ev, nil
	case err := <-h.errs:
		return HotplugEvent{}, err
	case <-h.closed:
		return HotplugEvent{}, os.ErrClosed
	}
}

func (h *fakeHotplug) Close() error {
	h.closeOnce.Do(func() { close(h.closed) })
	return nil
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []string
}

func (j *fakeJournal) Record(component string, err error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, component+": "+err.Error())
	return nil
}

func (j *fakeJournal) recorded() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}
