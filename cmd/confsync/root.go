// Package main provides the entry point for the confsync CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for confsync.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confsync",
		Short: "Synchronize markdown documents with wiki pages",
		Long: `confsync keeps local markdown documents consistent with pages in a
Confluence-style wiki. Each document records its remote page and last
synchronized state in YAML front matter, so confsync can tell whether
the local file, the remote page, both, or neither changed since the
last run, and act accordingly.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewPutCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
