package keebect

import (
	"fmt"

	"go.uber.org/zap"
)

// Switcher moves the compositor to an absolute layout index using only
// "next layout" commands.
type Switcher struct {
	layouts LayoutService
	log     *zap.SugaredLogger
}

func NewSwitcher(layouts LayoutService, log *zap.SugaredLogger) *Switcher {
	return &Switcher{
		layouts: layouts,
		log:     log,
	}
}

// Steps returns the forward cyclic distance from current to target over n layouts.
func Steps(current, target, n uint32) uint32 {
	if n == 0 {
		return 0
	}
	return (target + n - current) % n
}

// SwitchTo issues the advances needed to reach target. A failed advance aborts the
// sequence and leaves the layout where it stopped; there is no rollback.
func (s *Switcher) SwitchTo(target uint32) error {
	state, err := s.layouts.KeyboardLayouts()
	if err != nil {
		return fmt.Errorf("%w: get keyboard layouts: %w", ErrSwitch, err)
	}

	n := uint32(len(state.Names))
	switch {
	case n == 0:
		return fmt.Errorf("%w: %w", ErrSwitch, ErrNoLayouts)
	case target >= n:
		return fmt.Errorf("%w: target %d with %d layouts: %w", ErrSwitch, target, n, ErrIndexOutOfRange)
	case state.Current >= n:
		return fmt.Errorf("%w: current %d with %d layouts: %w", ErrSwitch, state.Current, n, ErrIndexOutOfRange)
	}

	if state.Current == target {
		return nil
	}

	steps := Steps(state.Current, target, n)
	s.log.Debugw("switching layout", "from", state.Current, "to", target, "steps", steps)

	for i := uint32(0); i < steps; i++ {
		if err := s.layouts.SwitchLayoutNext(); err != nil {
			return fmt.Errorf("%w: advance %d/%d: %w", ErrSwitch, i+1, steps, err)
		}
	}

	return nil
}
