package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kemari/confsync/internal/config"
	"github.com/kemari/confsync/internal/history"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [file]",
		Short: "Show recorded sync outcomes",
		Long: `History lists past sync outcomes from the journal, newest first.

Examples:
  # Last 20 outcomes across all documents
  confsync history

  # Outcomes for one document
  confsync history docs/guide.md

  # Outcomes for one remote page
  confsync history --page 123456`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("page", "", "List outcomes for this page ID")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of entries to show (0 = all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	pageID, err := cmd.Flags().GetString("page")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if pageID != "" && len(args) > 0 {
		return errors.New("specify either a file or --page, not both")
	}

	journal, err := history.Open(config.XDGDataDir(), history.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no sync history available: %w", err)
	}
	defer journal.Close() //nolint:errcheck

	ctx := cmd.Context()
	var entries []history.Entry
	switch {
	case pageID != "":
		entries, err = journal.ListByPage(ctx, pageID, limit)
	case len(args) == 1:
		entries, err = journal.ListByFile(ctx, args[0], limit)
	default:
		entries, err = journal.Recent(ctx, limit)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no recorded syncs")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintln(cmd.OutOrStdout(), formatEntry(e))
	}
	return nil
}

// formatEntry renders one journal entry as a single line.
func formatEntry(e history.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-8s %s", e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.File)
	if e.PageID != "" {
		fmt.Fprintf(&b, " (page %s", e.PageID)
		if e.ToVersion > 0 {
			fmt.Fprintf(&b, ", v%d", e.ToVersion)
		}
		b.WriteString(")")
	}
	if e.Error != "" {
		fmt.Fprintf(&b, " error: %s", e.Error)
	}
	return b.String()
}
