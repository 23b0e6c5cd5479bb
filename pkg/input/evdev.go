package input

import (
	"errors"
	"fmt"
	"sync"

	"codeberg.org/miketth/keebect/pkg/keebect"
	"github.com/holoplot/go-evdev"
)

const unknownName = "Unknown"

func probeEvdev(path string) (deviceInfo, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return deviceInfo{}, fmt.Errorf("open device: %w", err)
	}
	defer dev.Close()

	name, err := dev.Name()
	if err != nil {
		name = unknownName
	}

	id, err := dev.InputID()
	if err != nil {
		return deviceInfo{}, fmt.Errorf("get input id: %w", err)
	}

	return deviceInfo{
		name:     name,
		identity: keebect.Identity{Vendor: id.Vendor, Product: id.Product},
	}, nil
}

type device interface {
	ReadOne() (*evdev.InputEvent, error)
	Revoke() error
	Close() error
}

// Stream is an open evdev device.
type Stream struct {
	dev       device
	closeOnce sync.Once
	closeErr  error
}

func OpenStream(path string) (*Stream, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &Stream{dev: dev}, nil
}

// ReadEvent blocks until the next event. Closing the stream from another
// goroutine makes it return an error (ENODEV).
func (s *Stream) ReadEvent() (keebect.RawEvent, error) {
	ev, err := s.dev.ReadOne()
	if err != nil {
		return keebect.RawEvent{}, fmt.Errorf("read event: %w", err)
	}

	return keebect.RawEvent{
		Type:  uint16(ev.Type),
		Code:  uint16(ev.Code),
		Value: ev.Value,
	}, nil
}

// Close revokes the device before closing it. go-evdev leaves the fd in
// blocking mode, where close(2) does not wake a pending read but EVIOCREVOKE does.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		var revokeErr error
		if err := s.dev.Revoke(); err != nil {
			revokeErr = fmt.Errorf("revoke device: %w", err)
		}
		s.closeErr = errors.Join(revokeErr, s.dev.Close())
	})
	return s.closeErr
}
