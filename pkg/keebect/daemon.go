package keebect

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const activationBuffer = 64

type Options struct {
	DryRun bool
	// Hotplug is nil when the platform has no hotplug notifications. There is
	// no polling fallback: device changes go unnoticed until restart.
	Hotplug HotplugSource
	Journal Journal
	Clock   Clock
	// OnReconciled is called with the monitored identities after every pass.
	OnReconciled func(monitored []Identity)
}

// Daemon runs the reconciler, the hotplug watcher and the switch controller.
type Daemon struct {
	source   DeviceSource
	switcher LayoutSwitcher
	bindings []Binding
	opts     Options
	log      *zap.SugaredLogger
}

func NewDaemon(
	source DeviceSource,
	switcher LayoutSwitcher,
	bindings []Binding,
	opts Options,
	log *zap.SugaredLogger,
) (*Daemon, error) {
	if len(bindings) == 0 {
		return nil, ErrNoBindings
	}

	return &Daemon{
		source:   source,
		switcher: switcher,
		bindings: bindings,
		opts:     opts,
		log:      log,
	}, nil
}

// Run blocks until ctx is cancelled or a fatal error occurs. Fatal errors are
// written to the journal before being returned. On cancellation it returns
// ctx.Err() after every monitor has stopped.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl := NewController(d.switcher, d.opts.DryRun, d.opts.Clock, d.log)
	activations := make(chan ActivationEvent, activationBuffer)
	signals := make(chan struct{}, 1)

	rec := NewReconciler(d.source, d.bindings, activations, d.log)
	defer rec.Shutdown()

	if err := d.reconcile(ctx, rec); err != nil {
		return d.fatal("reconciler", err)
	}

	var hotplugErr chan error
	if d.opts.Hotplug != nil {
		hotplugErr = make(chan error, 1)
		watcher := NewHotplugWatcher(d.opts.Hotplug, rec.Configured(), d.log)
		go func() {
			hotplugErr <- watcher.Run(ctx, signals)
		}()
	} else {
		d.log.Warn("hotplug notifications unavailable, keyboards attached later will not be picked up until restart")
		if len(rec.Monitored()) == 0 {
			return d.fatal("daemon", ErrNoKeyboardsPresent)
		}
	}

	if len(rec.Monitored()) == 0 {
		d.log.Warn("no configured keyboard attached, waiting for hotplug")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-activations:
			if _, err := ctrl.Handle(ev); err != nil {
				d.log.Warnw("failed to switch layout", "device", ev.Identity.String(),
					"layout", ev.LayoutIndex, "error", err)
			}

		case <-signals:
			if err := d.reconcile(ctx, rec); err != nil {
				return d.fatal("reconciler", err)
			}

		case err := <-hotplugErr:
			hotplugErr = nil
			if err == nil {
				continue
			}
			d.log.Errorw("hotplug watcher stopped, continuing without hotplug", "error", err)
			d.record("hotplug", err)
		}
	}
}

func (d *Daemon) reconcile(ctx context.Context, rec *Reconciler) error {
	if err := rec.Reconcile(ctx); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	if d.opts.OnReconciled != nil {
		d.opts.OnReconciled(rec.Monitored())
	}

	return nil
}

func (d *Daemon) fatal(component string, err error) error {
	d.record(component, err)
	return err
}

func (d *Daemon) record(component string, err error) {
	if d.opts.Journal == nil {
		return
	}
	if jerr := d.opts.Journal.Record(component, err); jerr != nil {
		d.log.Errorw("failed to write journal", "error", jerr)
	}
}
