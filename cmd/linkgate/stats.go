package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkgate/linkgate/internal/config"
	"github.com/linkgate/linkgate/internal/stats"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show persisted scanning statistics",
		Long: `Stats prints the statistics accumulated across scans: how many URLs have
been scored and how many reached the block threshold.

Statistics persist in the XDG data directory by default.`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	cmd.Flags().String("stats-dir", "",
		"Directory of the statistics database (default: XDG data directory)")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()

	var err error
	cfg.StatsDir, err = cmd.Flags().GetString("stats-dir")
	if err != nil {
		return err
	}

	store, err := stats.Open(cfg.DataDir())
	if err != nil {
		return fmt.Errorf("failed to open stats store: %w", err)
	}
	defer store.Close()

	s := store.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "URLs scanned:    %d\n", s.URLsScanned)
	fmt.Fprintf(cmd.OutOrStdout(), "Threats blocked: %d\n", s.ThreatsBlocked)
	if s.LastScan.IsZero() {
		fmt.Fprintf(cmd.OutOrStdout(), "Last scan:       never\n")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Last scan:       %s\n", s.LastScan.Format("2006-01-02 15:04:05 MST"))
	}

	return nil
}
