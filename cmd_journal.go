package main

import (
	"context"
	"fmt"
	"io"
	"time"

	journal "codeberg.org/miketth/keebect/pkg/journal/sqlite"
	"github.com/spf13/cobra"
)

var journalLimit int

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show the most recent daemon failures",
	Args:  cobra.NoArgs,
	RunE:  runJournal,
}

func init() {
	journalCmd.Flags().IntVar(&journalLimit, "limit", 20, "number of entries to show")
	rootCmd.AddCommand(journalCmd)
}

func runJournal(cmd *cobra.Command, args []string) error {
	log, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	path, err := getJournalPath()
	if err != nil {
		return err
	}

	j, err := journal.NewJournal(path, log)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	return printJournal(cmd.Context(), j, journalLimit, cmd.OutOrStdout())
}

type journalReader interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

func printJournal(ctx context.Context, j journalReader, limit int, out io.Writer) error {
	entries, err := j.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No failures recorded.")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-10s  %s  %s\n",
			e.OccurredAt.Local().Format(time.DateTime), e.Component, e.RunID, e.Message)
	}

	return nil
}
