package keebect

import (
	"time"

	"go.uber.org/zap"
)

// DebounceWindow is the minimum time between two switches.
const DebounceWindow = 100 * time.Millisecond

// Controller decides which activations turn into layout switches.
//
// An activation is suppressed when it comes from the keyboard that caused the
// last switch, or when it arrives within DebounceWindow of the last switch. The
// window starts at construction, so presses right after startup are ignored too.
type Controller struct {
	switcher LayoutSwitcher
	dryRun   bool
	now      Clock

	lastIdentity Identity
	hasLast      bool
	lastSwitch   time.Time

	log *zap.SugaredLogger
}

func NewController(switcher LayoutSwitcher, dryRun bool, now Clock, log *zap.SugaredLogger) *Controller {
	if now == nil {
		now = time.Now
	}

	return &Controller{
		switcher:   switcher,
		dryRun:     dryRun,
		now:        now,
		lastSwitch: now(),
		log:        log,
	}
}

// Handle processes one activation and reports whether a switch was made. In
// dry-run mode nothing is issued but the debounce state still advances. On a
// switch error the state is left unchanged so the same keyboard can retry.
func (c *Controller) Handle(ev ActivationEvent) (bool, error) {
	now := c.now()
	if c.hasLast && ev.Identity == c.lastIdentity {
		return false, nil
	}
	if now.Sub(c.lastSwitch) <= DebounceWindow {
		c.log.Debugw("debounced activation", "device", ev.Identity.String(), "since_last", now.Sub(c.lastSwitch))
		return false, nil
	}

	if c.dryRun {
		c.log.Infow("[dry-run] would switch layout", "layout", ev.LayoutIndex, "device", ev.Identity.String())
	} else {
		if err := c.switcher.SwitchTo(ev.LayoutIndex); err != nil {
			return false, err
		}
		c.log.Infow("switched layout", "layout", ev.LayoutIndex, "device", ev.Identity.String())
	}

	c.lastIdentity = ev.Identity
	c.hasLast = true
	c.lastSwitch = c.now()

	return true, nil
}

// LastSwitched returns the identity of the keyboard behind the last switch.
func (c *Controller) LastSwitched() (Identity, bool) {
	return c.lastIdentity, c.hasLast
}
