package keebect

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// HotplugWatcher turns USB notifications for configured keyboards into
// reconciliation signals. Filtering uses the configured set, not the set of
// running monitors.
type HotplugWatcher struct {
	source     HotplugSource
	configured ConfiguredSet
	log        *zap.SugaredLogger
}

func NewHotplugWatcher(source HotplugSource, configured ConfiguredSet, log *zap.SugaredLogger) *HotplugWatcher {
	return &HotplugWatcher{
		source:     source,
		configured: configured,
		log:        log,
	}
}

// Run blocks on the source until ctx is cancelled or the source fails, and owns
// closing it. Signals are sent without blocking: if one is already pending the
// new one is merged into it.
func (w *HotplugWatcher) Run(ctx context.Context, signals chan<- struct{}) error {
	defer w.source.Close()
	stop := context.AfterFunc(ctx, func() {
		_ = w.source.Close()
	})
	defer stop()

	for {
		ev, err := w.source.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrHotplug, err)
		}

		if !w.configured.Contains(ev.Identity) {
			w.log.Debugw("ignoring hotplug event", "action", ev.Action, "device", ev.Identity.String())
			continue
		}

		w.log.Infow("configured keyboard hotplugged", "action", ev.Action, "device", ev.Identity.String())
		select {
		case signals <- struct{}{}:
		default:
		}
	}
}
