package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"codeberg.org/miketth/keebect/pkg/input"
	"codeberg.org/miketth/keebect/pkg/keebect"
	"codeberg.org/miketth/keebect/pkg/xkblayouts"
	"github.com/spf13/cobra"
)

var errNoKeyboards = errors.New("no keyboards detected, check permissions")

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup to map keyboards to layouts",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	log, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	service, err := newLayoutService(ipcMode)
	if err != nil {
		return fmt.Errorf("create layout service: %w", err)
	}

	path, err := getConfigPath()
	if err != nil {
		return err
	}

	w := &setupWizard{
		source:   input.NewEnumerator(input.DefaultByIDDir, log),
		layouts:  service,
		registry: loadRegistry(log),
		store:    openBindingStore(path),
		in:       bufio.NewScanner(cmd.InOrStdin()),
		out:      cmd.OutOrStdout(),
	}
	if err := w.run(); err != nil {
		return err
	}

	fmt.Fprintf(w.out, "Configuration saved to %s\n", path)
	return nil
}

type setupWizard struct {
	source   keebect.DeviceSource
	layouts  keebect.LayoutService
	registry *xkblayouts.Registry
	store    keebect.BindingStore
	in       *bufio.Scanner
	out      io.Writer
}

func (w *setupWizard) run() error {
	keyboards, err := w.source.Enumerate()
	if err != nil {
		return fmt.Errorf("enumerate keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return errNoKeyboards
	}

	layouts, err := w.layouts.KeyboardLayouts()
	if err != nil {
		return fmt.Errorf("get keyboard layouts: %w", err)
	}
	n := len(layouts.Names)
	if n == 0 {
		return keebect.ErrNoLayouts
	}

	fmt.Fprintf(w.out, "Found %d keyboard(s)\n", len(keyboards))
	fmt.Fprintln(w.out, "\nAvailable niri layouts:")
	printLayouts(w.out, layouts, w.registry)

	bindings := make([]keebect.Binding, 0, len(keyboards))
	for _, kb := range keyboards {
		fmt.Fprintf(w.out, "\nConfigure: %s\n", kb.Name)

		index, err := w.promptIndex(n)
		if err != nil {
			return err
		}

		bindings = append(bindings, keebect.Binding{
			Identity:    kb.Identity,
			Name:        kb.Name,
			LayoutIndex: index,
		})
	}

	if err := w.store.Save(bindings); err != nil {
		return fmt.Errorf("save bindings: %w", err)
	}

	fmt.Fprintln(w.out, "\nAdd to your niri config (~/.config/niri/config.kdl):")
	fmt.Fprintln(w.out, `  spawn-at-startup "keebect" "daemon"`)
	fmt.Fprintln(w.out, "\nOr run manually:")
	fmt.Fprintln(w.out, "  keebect daemon")

	return nil
}

// promptIndex asks until it gets a number in [0, n).
func (w *setupWizard) promptIndex(n int) (uint32, error) {
	for {
		fmt.Fprintf(w.out, "Layout index (0-%d): ", n-1)

		if !w.in.Scan() {
			if err := w.in.Err(); err != nil {
				return 0, fmt.Errorf("read input: %w", err)
			}
			return 0, fmt.Errorf("read input: %w", io.ErrUnexpectedEOF)
		}

		index, err := strconv.ParseUint(strings.TrimSpace(w.in.Text()), 10, 32)
		if err != nil || index >= uint64(n) {
			fmt.Fprintf(w.out, "Invalid index. Must be 0-%d\n", n-1)
			continue
		}

		return uint32(index), nil
	}
}
