package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linkgate/linkgate/internal/annotate"
	"github.com/linkgate/linkgate/internal/config"
	"github.com/linkgate/linkgate/internal/messaging"
	"github.com/linkgate/linkgate/internal/metrics"
	"github.com/linkgate/linkgate/internal/page"
	"github.com/linkgate/linkgate/internal/session"
	"github.com/linkgate/linkgate/internal/warning"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <html-file>",
		Short: "Watch a local HTML file and gate navigation interactively",
		Long: `Watch monitors a local HTML file, scores its outbound links, and keeps
scoring links that appear in later edits. Edits are picked up automatically;
newly inserted links are scored immediately without pacing.

The session is interactive. Type a link number to open it through the
navigation gate: safe links open, warned links ask for confirmation, and
blocked links are denied. Type "l" to list links, "r" to rescan the page,
"s" for statistics, and "q" to quit.

Examples:
  # Watch a file and gate link opening
  linkgate watch inbox.html

  # Expose Prometheus metrics while watching
  linkgate watch --metrics 127.0.0.1:9091 inbox.html`,
		Args: cobra.ExactArgs(1),
		RunE: runWatchCmd,
	}

	addClientFlags(cmd)
	cmd.Flags().DurationP("stagger", "s", config.DefaultStaggerInterval,
		"Delay between successive scoring requests of the initial scan")
	cmd.Flags().String("metrics", "",
		"Expose Prometheus metrics on the given address (e.g. 127.0.0.1:9091)")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, args []string) error {
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

	doc, err := parseFile(args[0])
	if err != nil {
		return err
	}

	// One buffered reader serves both the command loop and the gate's
	// confirmation prompts. bufio.NewReader returns the same reader when
	// wrapped again, so the two never fight over buffered input.
	stdin := bufio.NewReader(os.Stdin)
	surface := warning.NewTerminal(stdin, os.Stdout)

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithStaggerInterval(cfg.StaggerInterval),
		session.WithSurface(surface),
	}
	store := openStats(cfg, logger)
	if store != nil {
		defer store.Close()
		opts = append(opts, session.WithStats(store))
	}

	s := session.New(doc, newRiskClient(cfg, logger), opts...)
	defer s.Close()

	s.Start(ctx)

	// Feed file edits into the document as mutations.
	watcher := page.NewFileWatcher(args[0], doc, logger)
	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("file watcher stopped", "error", err)
		}
	}()

	fmt.Printf("Watching %s. Type \"h\" for help.\n", args[0])
	s.Wait()
	listLinks(doc)

	return commandLoop(ctx, s, doc, stdin)
}

// commandLoop reads interactive commands until quit or cancellation.
func commandLoop(ctx context.Context, s *session.Session, doc *page.Document, stdin *bufio.Reader) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Print("> ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return nil
		}

		switch input := strings.TrimSpace(line); input {
		case "":
			continue
		case "q", "quit":
			return nil
		case "h", "help":
			fmt.Println("  <n>  open link n through the gate")
			fmt.Println("  l    list links with current scores")
			fmt.Println("  r    rescan the page")
			fmt.Println("  s    show statistics")
			fmt.Println("  q    quit")
		case "l", "list":
			s.Wait()
			listLinks(doc)
		case "r", "rescan":
			resp, err := s.Bus().Send(ctx, messaging.Request{Action: messaging.ActionRescanPage})
			if err != nil || !resp.Success {
				fmt.Println("rescan failed")
				continue
			}
			s.Wait()
			fmt.Println("rescan complete")
			listLinks(doc)
		case "s", "stats":
			resp, err := s.Bus().Send(ctx, messaging.Request{Action: messaging.ActionGetStats})
			if err != nil || resp.Stats == nil {
				fmt.Println("stats unavailable")
				continue
			}
			fmt.Printf("URLs scanned: %d  Threats blocked: %d\n",
				resp.Stats.URLsScanned, resp.Stats.ThreatsBlocked)
		default:
			n, err := strconv.Atoi(input)
			if err != nil {
				fmt.Printf("unknown command %q (try \"h\")\n", input)
				continue
			}
			openLink(s, doc, n)
		}
	}
}

// listLinks prints the document's links with their current annotations.
func listLinks(doc *page.Document) {
	links := doc.Links()
	if len(links) == 0 {
		fmt.Println("no outbound links")
		return
	}

	for i, el := range links {
		score := "-"
		if v := annotate.Score(el); v != nil {
			score = strconv.Itoa(*v)
		}
		level := annotate.Level(el)
		if level == "" {
			level = "unscored"
		}
		fmt.Printf("  [%d] %s (score %s, %s)\n", i+1, el.Href(), score, level)
	}
}

// openLink routes a simulated click on the nth link through the gate.
func openLink(s *session.Session, doc *page.Document, n int) {
	links := doc.Links()
	if n < 1 || n > len(links) {
		fmt.Printf("no link %d (1-%d)\n", n, len(links))
		return
	}

	el := links[n-1]
	decision := s.HandleClick(el)
	switch {
	case decision.Proceed:
		fmt.Printf("→ opening %s\n", el.Href())
	case decision.Reported:
		fmt.Printf("✗ blocked and reported: %s\n", el.Href())
	default:
		fmt.Printf("✗ not opened: %s\n", el.Href())
	}
}
