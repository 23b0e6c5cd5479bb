package keebect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const waitFor = 2 * time.Second

func TestMonitorForwardsOnlyPresses(t *testing.T) {
	stream := newFakeStream()
	out := make(chan ActivationEvent, 8)
	m := StartMonitor(context.Background(), bindingB, stream, out, zap.NewNop().Sugar())
	defer m.Stop()

	for _, ev := range []RawEvent{syn, press, repeat, release, press} {
		stream.events <- ev
	}

	for i := 0; i < 2; i++ {
		select {
		case got := <-out:
			assert.Equal(t, ActivationEvent{Identity: kbB.Identity, Name: kbB.Name, LayoutIndex: 1}, got)
		case <-time.After(waitFor):
			t.Fatal("activation not delivered")
		}
	}

	select {
	case got := <-out:
		t.Fatalf("unexpected activation %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMonitorEndsOnStreamError(t *testing.T) {
	stream := newFakeStream()
	m := StartMonitor(context.Background(), bindingA, stream, make(chan ActivationEvent), zap.NewNop().Sugar())

	close(stream.events)

	select {
	case <-m.Done():
	case <-time.After(waitFor):
		t.Fatal("monitor did not end")
	}
	assert.False(t, m.Alive())
	assert.True(t, stream.isClosed())
	assert.Equal(t, int32(1), stream.closes.Load())
}

func TestMonitorStopReleasesDevice(t *testing.T) {
	stream := newFakeStream()
	m := StartMonitor(context.Background(), bindingA, stream, make(chan ActivationEvent), zap.NewNop().Sugar())
	require.True(t, m.Alive())

	m.Stop()
	m.Stop()

	select {
	case <-m.Done():
	case <-time.After(waitFor):
		t.Fatal("monitor did not stop")
	}
	assert.Equal(t, int32(1), stream.closes.Load())
}

func TestMonitorStopsWhileBlockedOnSend(t *testing.T) {
	stream := newFakeStream()
	ctx, cancel := context.WithCancel(context.Background())
	m := StartMonitor(ctx, bindingA, stream, make(chan ActivationEvent), zap.NewNop().Sugar())

	stream.events <- press
	cancel()

	select {
	case <-m.Done():
	case <-time.After(waitFor):
		t.Fatal("monitor did not stop")
	}
}
