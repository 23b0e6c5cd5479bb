package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"codeberg.org/miketth/keebect/pkg/input"
	journal "codeberg.org/miketth/keebect/pkg/journal/sqlite"
	"codeberg.org/miketth/keebect/pkg/keebect"
	"codeberg.org/miketth/keebect/pkg/udev"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRun    bool
	noHotplug bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run as background daemon",
	Long:  `Watch the configured keyboards and switch the niri layout to the one bound to the keyboard in use.`,
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func init() {
	daemonCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log layout switches without performing them")
	daemonCmd.Flags().BoolVar(&noHotplug, "no-hotplug", false, "do not watch for keyboards being plugged in or removed")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	log, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	ctx := cmd.Context()

	path, err := getConfigPath()
	if err != nil {
		return err
	}
	bindings, err := openBindingStore(path).Load()
	if err != nil {
		return fmt.Errorf("load bindings: %w", err)
	}
	if len(bindings) == 0 {
		return keebect.ErrNoBindings
	}

	layouts, err := newLayoutService(ipcMode)
	if err != nil {
		return fmt.Errorf("create layout service: %w", err)
	}

	jPath, err := getJournalPath()
	if err != nil {
		return err
	}
	j, err := journal.NewJournal(jPath, log)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	opts := keebect.Options{
		DryRun:  dryRun,
		Journal: j,
	}

	if !noHotplug {
		conn, err := udev.Dial(udev.UdevGroup, log)
		switch {
		case errors.Is(err, udev.ErrUnsupported):
			log.Warnw("hotplug unavailable", "error", err)
		case err != nil:
			return fmt.Errorf("dial udev: %w", err)
		default:
			opts.Hotplug = conn
		}
	}

	notifier := newSystemdNotifier(log)
	opts.OnReconciled = notifier.reconciled

	d, err := keebect.NewDaemon(
		input.NewEnumerator(input.DefaultByIDDir, log),
		keebect.NewSwitcher(layouts, log),
		bindings,
		opts,
		log,
	)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	if dryRun {
		log.Info("dry-run mode, layout switches will be logged but not executed")
	}
	log.Infow("started keebect", "bindings", len(bindings), "run", j.RunID())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := d.Run(ctx)
		if err != nil {
			errChan <- fmt.Errorf("run daemon: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := notifier.loop(ctx)
		if err != nil {
			errChan <- fmt.Errorf("systemd notify: %w", err)
		}
	}()

	err = <-errChan
	cancel()
	wg.Wait()

	if errors.Is(err, context.Canceled) {
		log.Info("shutting down")
		return nil
	}
	return err
}

// systemdNotifier reports readiness once the first reconciliation finished and
// keeps the status line up to date.
type systemdNotifier struct {
	ready chan struct{}
	once  sync.Once
	log   *zap.SugaredLogger
}

func newSystemdNotifier(log *zap.SugaredLogger) *systemdNotifier {
	return &systemdNotifier{
		ready: make(chan struct{}),
		log:   log,
	}
}

func (n *systemdNotifier) reconciled(monitored []keebect.Identity) {
	_, err := daemon.SdNotify(false, statusLine(monitored))
	if err != nil {
		n.log.Debugw("update systemd status", "error", err)
	}
	n.once.Do(func() { close(n.ready) })
}

func statusLine(monitored []keebect.Identity) string {
	switch len(monitored) {
	case 0:
		return "STATUS=Waiting for a configured keyboard"
	case 1:
		return "STATUS=Watching 1 keyboard"
	default:
		return fmt.Sprintf("STATUS=Watching %d keyboards", len(monitored))
	}
}

func (n *systemdNotifier) loop(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-n.ready:
	}

	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		<-ctx.Done()
		return ctx.Err()
	}

	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}
