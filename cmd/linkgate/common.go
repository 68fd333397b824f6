package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linkgate/linkgate/internal/config"
	"github.com/linkgate/linkgate/internal/log"
	"github.com/linkgate/linkgate/internal/model"
	"github.com/linkgate/linkgate/internal/page"
	"github.com/linkgate/linkgate/internal/report"
	"github.com/linkgate/linkgate/internal/riskclient"
	"github.com/linkgate/linkgate/internal/stats"
)

// addClientFlags registers the flags shared by every command that talks
// to the scoring service.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("api", "a", config.DefaultAPIBaseURL,
		"Scoring service base URL")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each scoring request")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkgate in current or home directory)")
}

// addReportFlags registers the report output flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// buildConfig creates a Config from cobra command flags, layered over
// the optional configuration file. Flags win over the file, the file
// wins over defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file exists.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if cmd.Flags().Changed("api") {
		cfg.APIBaseURL, err = cmd.Flags().GetString("api")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Lookup("stagger") != nil && cmd.Flags().Changed("stagger") {
		cfg.StaggerInterval, err = cmd.Flags().GetDuration("stagger")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Lookup("metrics") != nil && cmd.Flags().Changed("metrics") {
		cfg.MetricsAddr, err = cmd.Flags().GetString("metrics")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Lookup("json") != nil {
		cfg.JSONReport, err = cmd.Flags().GetBool("json")
		if err != nil {
			return nil, err
		}
		cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
		if err != nil {
			return nil, err
		}
		cfg.OutputPath, err = cmd.Flags().GetString("output")
		if err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the redacting structured logger and installs it
// as the slog default.
func setupLogger(cfg *config.Config) *slog.Logger {
	logger := log.NewLogger(os.Stderr, cfg.Verbose, cfg.LogFilePath)
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// newRiskClient creates the scoring client from the configuration.
func newRiskClient(cfg *config.Config, logger *slog.Logger) *riskclient.Client {
	return riskclient.New(cfg.APIBaseURL,
		riskclient.WithTimeout(cfg.Timeout),
		riskclient.WithUserAgent(cfg.UserAgent),
		riskclient.WithLogger(logger),
	)
}

// openStats opens the persistent statistics store. Failure to open is
// downgraded to a warning; the caller falls back to in-memory stats by
// passing a nil store.
func openStats(cfg *config.Config, logger *slog.Logger) *stats.Store {
	store, err := stats.Open(cfg.DataDir())
	if err != nil {
		logger.Warn("failed to open stats store, statistics will not persist",
			"dir", cfg.DataDir(), "error", err)
		return nil
	}
	return store
}

// fetchDocument retrieves and parses a page. A file path is read
// directly; anything else is fetched over HTTP with the configured
// User-Agent and size limit.
func fetchDocument(ctx context.Context, cfg *config.Config, target string) (*page.Document, error) {
	if _, err := os.Stat(target); err == nil {
		return parseFile(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", target, err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch page: unexpected status %d", resp.StatusCode)
	}

	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = config.DefaultMaxBodySize
	}
	return page.Parse(io.LimitReader(resp.Body, maxBody), target)
}

// parseFile parses a local HTML file into a document. The document URL
// is the absolute file path.
func parseFile(path string) (*page.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	f, err := os.Open(path) //nolint:gosec // User-provided page path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open page file: %w", err)
	}
	defer f.Close()

	return page.Parse(f, abs)
}

// outputReport writes the page report in the requested format.
func outputReport(cfg *config.Config, pageReport *model.PageReport) error {
	var output *os.File
	if cfg.OutputPath != "" {
		dir := filepath.Dir(cfg.OutputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may name flagged URLs; keep them owner-readable only.
		f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(pageReport)
	return err
}
