package keebect

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Monitor watches one keyboard and forwards its key presses as activations.
// It is owned by the Reconciler.
type Monitor struct {
	Identity    Identity
	Name        string
	LayoutIndex uint32

	stream    EventStream
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	log       *zap.SugaredLogger
}

// StartMonitor takes ownership of stream and reads it until ctx is cancelled, Stop
// is called, or the stream fails. A stream error is the normal end when the device
// is unplugged and is not reported upward.
func StartMonitor(
	ctx context.Context,
	binding Binding,
	stream EventStream,
	out chan<- ActivationEvent,
	log *zap.SugaredLogger,
) *Monitor {
	ctx, cancel := context.WithCancel(ctx)
	m := &Monitor{
		Identity:    binding.Identity,
		Name:        binding.Name,
		LayoutIndex: binding.LayoutIndex,
		stream:      stream,
		cancel:      cancel,
		done:        make(chan struct{}),
		log:         log.With("device", binding.Identity.String(), "name", binding.Name),
	}

	go func() {
		defer close(m.done)
		m.run(ctx, out)
	}()

	return m
}

func (m *Monitor) run(ctx context.Context, out chan<- ActivationEvent) {
	// closing the device unblocks a pending read
	stopClose := context.AfterFunc(ctx, m.closeStream)
	defer stopClose()
	defer m.closeStream()

	activation := ActivationEvent{Identity: m.Identity, Name: m.Name, LayoutIndex: m.LayoutIndex}

	for {
		ev, err := m.stream.ReadEvent()
		if err != nil {
			if ctx.Err() == nil {
				m.log.Infow("keyboard stream ended", "error", err)
			}
			return
		}

		if !ev.IsKeyPress() {
			continue
		}

		select {
		case out <- activation:
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) closeStream() {
	m.closeOnce.Do(func() {
		if err := m.stream.Close(); err != nil {
			m.log.Debugw("close keyboard stream", "error", err)
		}
	})
}

// Stop cancels the monitor. It does not wait; use Done for that.
func (m *Monitor) Stop() {
	m.cancel()
}

func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Alive reports whether the read loop is still running.
func (m *Monitor) Alive() bool {
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}
