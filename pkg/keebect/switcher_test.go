package keebect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSteps(t *testing.T) {
	tests := []struct {
		current, target, n uint32
		want               uint32
	}{
		{current: 3, target: 1, n: 4, want: 2},
		{current: 1, target: 1, n: 4, want: 0},
		{current: 0, target: 3, n: 4, want: 3},
		{current: 2, target: 0, n: 3, want: 1},
		{current: 0, target: 0, n: 1, want: 0},
		{current: 0, target: 0, n: 0, want: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Steps(tt.current, tt.target, tt.n), "current=%d target=%d n=%d", tt.current, tt.target, tt.n)
	}
}

func TestSwitchToAdvancesForward(t *testing.T) {
	layouts := &fakeLayouts{names: []string{"us", "ru", "de", "fr"}, current: 3}
	s := NewSwitcher(layouts, zap.NewNop().Sugar())

	require.NoError(t, s.SwitchTo(1))
	assert.Equal(t, 2, layouts.nextCount())
	assert.Equal(t, uint32(1), layouts.current)
}

func TestSwitchToCurrentIsNoop(t *testing.T) {
	layouts := &fakeLayouts{names: []string{"us", "ru"}, current: 1}
	s := NewSwitcher(layouts, zap.NewNop().Sugar())

	require.NoError(t, s.SwitchTo(1))
	assert.Zero(t, layouts.nextCount())
}

func TestSwitchToAbortsOnFailedAdvance(t *testing.T) {
	layouts := &fakeLayouts{names: []string{"us", "ru", "de", "fr"}, current: 0, failAt: 2}
	s := NewSwitcher(layouts, zap.NewNop().Sugar())

	err := s.SwitchTo(3)
	require.ErrorIs(t, err, ErrSwitch)
	assert.Equal(t, 2, layouts.nextCount())
	// partial progress stays
	assert.Equal(t, uint32(1), layouts.current)
}

func TestSwitchToInvalidState(t *testing.T) {
	tests := []struct {
		name    string
		layouts *fakeLayouts
		target  uint32
		want    error
	}{
		{name: "no layouts", layouts: &fakeLayouts{}, target: 0, want: ErrNoLayouts},
		{name: "target out of range", layouts: &fakeLayouts{names: []string{"us", "ru"}}, target: 2, want: ErrIndexOutOfRange},
		{name: "current out of range", layouts: &fakeLayouts{names: []string{"us"}, current: 4}, target: 0, want: ErrIndexOutOfRange},
		{name: "service down", layouts: &fakeLayouts{getErr: errors.New("no niri")}, target: 0, want: ErrSwitch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSwitcher(tt.layouts, zap.NewNop().Sugar()).SwitchTo(tt.target)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, tt.layouts.nextCount())
		})
	}
}
