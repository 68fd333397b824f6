package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/linkgate/linkgate/internal/gate"
	"github.com/linkgate/linkgate/internal/model"
	"github.com/linkgate/linkgate/internal/warning"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze a single URL or email content on demand",
		Long: `Analyze requests a fresh risk score for one URL, outside any page scan.
This is the remediation path: the score is recorded in the statistics, and a
score at the block threshold raises a high-priority alert.

With --email, the positional argument is a file containing email content
("-" reads standard input) and the service's email detector is used instead
of the URL detector.

Examples:
  # Analyze a suspicious URL
  linkgate analyze https://paypa1-login.example/verify

  # Analyze saved email content
  linkgate analyze --email --sender alerts@bank.example message.txt

  # Analyze email content from a pipe
  cat message.txt | linkgate analyze --email -`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCmd,
	}

	addClientFlags(cmd)
	cmd.Flags().BoolP("email", "e", false,
		"Treat the argument as a file of email content instead of a URL")
	cmd.Flags().String("sender", "",
		"Sender address for email analysis")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
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

	emailMode, err := cmd.Flags().GetBool("email")
	if err != nil {
		return err
	}

	client := newRiskClient(cfg, logger)

	if emailMode {
		sender, err := cmd.Flags().GetString("sender")
		if err != nil {
			return err
		}
		content, err := readEmailContent(args[0])
		if err != nil {
			return err
		}

		result, err := client.AnalyzeEmail(ctx, content, sender)
		if err != nil {
			return fmt.Errorf("email analysis failed: %w", err)
		}
		printResult(cmd.OutOrStdout(), result)
		return nil
	}

	gateOpts := []gate.Option{
		gate.WithSurface(warning.NewTerminal(os.Stdin, os.Stdout)),
		gate.WithLogger(logger),
	}
	store := openStats(cfg, logger)
	if store != nil {
		defer store.Close()
		gateOpts = append(gateOpts, gate.WithStats(store))
	}

	g := gate.New(client, gateOpts...)
	result, err := g.Remediate(ctx, args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	printResult(cmd.OutOrStdout(), result)
	return nil
}

// readEmailContent reads email content from a file, or stdin for "-".
func readEmailContent(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read email content: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // User-provided content path is intentional
	if err != nil {
		return "", fmt.Errorf("failed to read email content: %w", err)
	}
	return string(data), nil
}

// printResult prints an analysis result for terminal consumption.
func printResult(out io.Writer, result *model.AnalysisResult) {
	fmt.Fprintf(out, "\nRisk score:     %d/100 (%s)\n", result.RiskScore, result.RiskLevel)
	fmt.Fprintf(out, "Verdict:        %s\n", result.Verdict())
	if result.Recommendation != "" {
		fmt.Fprintf(out, "Recommendation: %s\n", result.Recommendation)
	}
	if result.MLConfidence != nil {
		fmt.Fprintf(out, "ML confidence:  %.2f\n", *result.MLConfidence)
	}
	if result.AnalysisTimeMS > 0 {
		fmt.Fprintf(out, "Analysis time:  %.0fms\n", result.AnalysisTimeMS)
	}

	if len(result.Threats) > 0 {
		fmt.Fprintf(out, "\nThreats:\n")
		for _, threat := range result.Threats {
			fmt.Fprintf(out, "  * %s\n", threat)
		}
	}
	if len(result.Details) > 0 {
		fmt.Fprintf(out, "\nDetails:\n")
		for _, detail := range result.Details {
			fmt.Fprintf(out, "  - %s\n", detail)
		}
	}
}
