package main

import (
	"fmt"
	"io"

	"codeberg.org/miketth/keebect/pkg/input"
	"codeberg.org/miketth/keebect/pkg/keebect"
	"github.com/spf13/cobra"
)

const inputGroupHint = `Note: You may need to be in the 'input' group:
  sudo usermod -aG input $USER
  (then log out and back in)
`

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List detected keyboards",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	log, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	return listKeyboards(input.NewEnumerator(input.DefaultByIDDir, log), cmd.OutOrStdout())
}

func listKeyboards(source keebect.DeviceSource, out io.Writer) error {
	keyboards, err := source.Enumerate()
	if err != nil {
		return fmt.Errorf("enumerate keyboards: %w", err)
	}

	if len(keyboards) == 0 {
		fmt.Fprintln(out, "No keyboards found.")
		fmt.Fprintln(out)
		fmt.Fprint(out, inputGroupHint)
		return nil
	}

	fmt.Fprintf(out, "Found %d keyboard(s):\n\n", len(keyboards))
	for i, kb := range keyboards {
		fmt.Fprintf(out, "%d. %s\n", i+1, kb.Name)
		fmt.Fprintf(out, "   Path: %s\n", kb.Path)
		fmt.Fprintf(out, "   ID: %s\n\n", kb.Identity)
	}

	return nil
}
