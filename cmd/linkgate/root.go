// Package main provides the entry point for the LinkGate CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for LinkGate.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkgate",
		Short: "Link risk scanner and navigation gate",
		Long: `LinkGate discovers outbound links in a page, scores each unique URL
through a phishing analysis service, and gates navigation to risky targets.

Links scoring at or above the block threshold are denied outright; links in
the warning band require explicit confirmation before navigation proceeds.
Unscored links always pass: a slow or failed analysis never locks the user
out of the web.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewInitCmd())
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
