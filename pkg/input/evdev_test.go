package input

import (
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingDevice behaves like a blocking-mode evdev fd: only a revoke wakes
// a pending read, close does not.
type blockingDevice struct {
	events  chan *evdev.InputEvent
	revoked chan struct{}

	mu    sync.Mutex
	calls []string
}

func newBlockingDevice() *blockingDevice {
	return &blockingDevice{
		events:  make(chan *evdev.InputEvent, 1),
		revoked: make(chan struct{}),
	}
}

func (d *blockingDevice) record(call string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call)
}

func (d *blockingDevice) ReadOne() (*evdev.InputEvent, error) {
	select {
	case ev := <-d.events:
		return ev, nil
	case <-d.revoked:
		return nil, syscall.ENODEV
	}
}

func (d *blockingDevice) Revoke() error {
	d.record("revoke")
	close(d.revoked)
	return nil
}

func (d *blockingDevice) Close() error {
	d.record("close")
	return nil
}

func TestStreamReadEvent(t *testing.T) {
	dev := newBlockingDevice()
	s := &Stream{dev: dev}

	dev.events <- &evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 1}

	ev, err := s.ReadEvent()
	require.NoError(t, err)
	assert.True(t, ev.IsKeyPress())
	assert.Equal(t, uint16(evdev.KEY_A), ev.Code)
}

func TestStreamCloseWakesPendingRead(t *testing.T) {
	dev := newBlockingDevice()
	s := &Stream{dev: dev}

	readErr := make(chan error, 1)
	go func() {
		_, err := s.ReadEvent()
		readErr <- err
	}()

	require.NoError(t, s.Close())

	select {
	case err := <-readErr:
		assert.ErrorIs(t, err, syscall.ENODEV)
	case <-time.After(2 * time.Second):
		t.Fatal("read still blocked after Close")
	}

	// a second Close must not revoke twice
	require.NoError(t, s.Close())

	dev.mu.Lock()
	defer dev.mu.Unlock()
	assert.Equal(t, []string{"revoke", "close"}, dev.calls)
}

type failingRevokeDevice struct {
	blockingDevice
	closed bool
}

func (d *failingRevokeDevice) Revoke() error {
	return os.ErrClosed
}

func (d *failingRevokeDevice) Close() error {
	d.closed = true
	return nil
}

func TestStreamCloseAfterFailedRevoke(t *testing.T) {
	dev := &failingRevokeDevice{}
	s := &Stream{dev: dev}

	err := s.Close()
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.True(t, dev.closed)
}
