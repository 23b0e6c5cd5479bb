package main

import (
	"fmt"
	"io"

	"codeberg.org/miketth/keebect/pkg/keebect"
	"codeberg.org/miketth/keebect/pkg/xkblayouts"
	"github.com/spf13/cobra"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List the keyboard layouts configured in niri",
	Args:  cobra.NoArgs,
	RunE:  runLayouts,
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
}

func runLayouts(cmd *cobra.Command, args []string) error {
	log, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	service, err := newLayoutService(ipcMode)
	if err != nil {
		return fmt.Errorf("create layout service: %w", err)
	}

	layouts, err := service.KeyboardLayouts()
	if err != nil {
		return fmt.Errorf("get keyboard layouts: %w", err)
	}

	printLayouts(cmd.OutOrStdout(), layouts, loadRegistry(log))
	return nil
}

// printLayouts writes one line per layout, marking the active one with '*'.
func printLayouts(out io.Writer, layouts keebect.Layouts, registry *xkblayouts.Registry) {
	for i, name := range layouts.Names {
		marker := " "
		if uint32(i) == layouts.Current {
			marker = "*"
		}

		line := fmt.Sprintf("%s [%d] %s", marker, i, name)
		if code, ok := registry.Lookup(name); ok {
			line += fmt.Sprintf(" (%s)", code)
		}
		fmt.Fprintln(out, line)
	}
}
