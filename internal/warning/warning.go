// Package warning defines the user-facing presentation invoked by the
// navigation gate: a blocking surface for denied navigation, a
// synchronous confirmation for warned navigation, and notifications
// for the reactive path. The engine only depends on the Surface
// interface; the terminal implementation here serves the CLI, and
// callers embedding the engine provide their own.
package warning

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// BlockedAction is the user's choice on the blocking surface. There is
// deliberately no "proceed" action: a denied navigation offers only
// dismissal or filing a report.
type BlockedAction int

const (
	// ActionDismiss closes the surface without further effect.
	ActionDismiss BlockedAction = iota

	// ActionReport records a local acknowledgment that the user wants
	// the link reported. Delivery beyond a log entry is not guaranteed.
	ActionReport
)

// Priority ranks notifications raised outside the click flow.
type Priority int

const (
	// PriorityNormal is routine feedback, e.g. an analysis failure the
	// user asked about.
	PriorityNormal Priority = iota

	// PriorityHigh marks urgent alerts, e.g. a visited page scoring at
	// the block threshold.
	PriorityHigh
)

// Surface is the presentation layer consulted by the navigation gate.
//
// Design decision: Confirm is synchronous and returns a plain bool
// because the click handler must consume the answer before the
// navigation default action is allowed to continue or be cancelled.
// An implementation with no way to ask (headless operation) must
// return false: the decision defaults to deny, never to silently
// proceeding.
type Surface interface {
	// ShowBlocked presents the full-page blocking surface for a denied
	// navigation and returns the user's choice.
	ShowBlocked(url string, score int, level string) BlockedAction

	// Confirm presents the warn-tier yes/no decision. True means the
	// user chose to proceed.
	Confirm(url string, score int, level string) bool

	// Notify raises a notification outside the click flow.
	Notify(priority Priority, title, message string)
}

// Terminal is a Surface backed by an interactive terminal. Prompts are
// written to the output writer and answers read line-wise from the
// input reader.
type Terminal struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a terminal surface reading from in and writing
// to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ShowBlocked prints the blocking warning and asks whether to file a
// report. Any answer other than an explicit "r" dismisses.
func (t *Terminal) ShowBlocked(url string, score int, level string) BlockedAction {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "\n⛔ BLOCKED: %s\n", url)
	fmt.Fprintf(t.out, "   Risk score %d (%s). Navigation has been cancelled.\n", score, level)
	fmt.Fprintf(t.out, "   [d]ismiss / [r]eport: ")

	answer, err := t.in.ReadString('\n')
	if err != nil {
		return ActionDismiss
	}
	if strings.EqualFold(strings.TrimSpace(answer), "r") {
		return ActionReport
	}
	return ActionDismiss
}

// Confirm asks the warn-tier yes/no question. Only an explicit "y" or
// "yes" proceeds; anything else, including read errors, denies.
func (t *Terminal) Confirm(url string, score int, level string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "\n⚠ WARNING: %s\n", url)
	fmt.Fprintf(t.out, "   Risk score %d (%s). Proceed anyway? [y/N]: ", score, level)

	answer, err := t.in.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Notify prints a notification line.
func (t *Terminal) Notify(priority Priority, title, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prefix := "notice"
	if priority == PriorityHigh {
		prefix = "ALERT"
	}
	fmt.Fprintf(t.out, "[%s] %s: %s\n", prefix, title, message)
}
