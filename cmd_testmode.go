package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"codeberg.org/miketth/keebect/pkg/input"
	"codeberg.org/miketth/keebect/pkg/keebect"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errKeyboardsGone = errors.New("every keyboard went away")

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Show which keyboard generates events",
	Args:  cobra.NoArgs,
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	log, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Monitoring keyboards... (press Ctrl+C to stop)")
	fmt.Fprintln(out)

	err = watchKeyboards(cmd.Context(), input.NewEnumerator(input.DefaultByIDDir, log), time.Now, out, log)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchKeyboards prints a line for every key press on any keyboard until ctx is
// cancelled or every keyboard went away.
func watchKeyboards(
	ctx context.Context,
	source keebect.DeviceSource,
	now keebect.Clock,
	out io.Writer,
	log *zap.SugaredLogger,
) error {
	keyboards, err := source.Enumerate()
	if err != nil {
		return fmt.Errorf("enumerate keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return errNoKeyboards
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	activations := make(chan keebect.ActivationEvent)
	monitors := make([]*keebect.Monitor, 0, len(keyboards))

	for _, kb := range keyboards {
		stream, err := source.Open(kb.Path)
		if err != nil {
			log.Warnw("cannot open keyboard", "path", kb.Path, "error", err)
			continue
		}

		binding := keebect.Binding{Identity: kb.Identity, Name: kb.Name}
		monitors = append(monitors, keebect.StartMonitor(ctx, binding, stream, activations, log))
	}

	defer func() {
		cancel()
		for _, m := range monitors {
			<-m.Done()
		}
	}()

	allDone := make(chan struct{})
	go func() {
		defer close(allDone)
		for _, m := range monitors {
			<-m.Done()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-allDone:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errKeyboardsGone
		case ev := <-activations:
			fmt.Fprintf(out, "[%s] Event from: %s\n", now().Format(time.TimeOnly), ev.Name)
		}
	}
}
