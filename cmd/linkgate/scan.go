package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/linkgate/linkgate/internal/config"
	"github.com/linkgate/linkgate/internal/metrics"
	"github.com/linkgate/linkgate/internal/session"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [page-url or file]",
		Short: "Scan a page's outbound links and report their risk",
		Long: `Scan fetches a page, discovers every outbound http(s) link, scores each
unique URL through the scoring service, and reports the results.

Duplicate links are scored once. Requests for the initial link set are paced
at one per stagger interval so a link-heavy page does not burst the service.
Links that fail to score are reported as unscored; they are never retried
and never block the report.

Examples:
  # Scan a live page
  linkgate scan https://example.com/newsletter

  # Scan a local HTML file
  linkgate scan page.html

  # Output JSON report to a file
  linkgate scan --json -o report.json https://example.com/

  # Slow the scoring request rate down
  linkgate scan --stagger 500ms https://example.com/`,
		Args: cobra.ExactArgs(1),
		RunE: runScanCmd,
	}

	addClientFlags(cmd)
	addReportFlags(cmd)
	cmd.Flags().DurationP("stagger", "s", config.DefaultStaggerInterval,
		"Delay between successive scoring requests of the initial scan")
	cmd.Flags().String("metrics", "",
		"Expose Prometheus metrics on the given address (e.g. 127.0.0.1:9091)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	ctx, cancel := signalContext(logger)
	defer cancel()

	if cfg.MetricsAddr != "" {
		go metrics.Expose(cfg.MetricsAddr)
	}

	target := args[0]
	doc, err := fetchDocument(ctx, cfg, target)
	if err != nil {
		return err
	}

	links := doc.Links()
	fmt.Fprintf(os.Stderr, "Scanning %d link(s) on %s...\n", len(links), doc.URL())
	startTime := time.Now()

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithStaggerInterval(cfg.StaggerInterval),
	}
	store := openStats(cfg, logger)
	if store != nil {
		defer store.Close()
		opts = append(opts, session.WithStats(store))
	}

	s := session.New(doc, newRiskClient(cfg, logger), opts...)
	defer s.Close()

	s.Start(ctx)
	s.Wait()

	elapsed := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "Scan completed in %s\n", elapsed.Round(time.Millisecond))

	return outputReport(cfg, s.Report())
}
