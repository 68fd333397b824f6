package warning

import (
	"strings"
	"testing"
)

// TestTerminalConfirm tests the warn-tier confirmation prompt.
func TestTerminalConfirm(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected bool
	}{
		{"explicit yes", "y\n", true},
		{"full yes", "yes\n", true},
		{"uppercase yes", "Y\n", true},
		{"explicit no", "n\n", false},
		{"empty answer denies", "\n", false},
		{"garbage denies", "maybe\n", false},
		{"eof denies", "", false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var out strings.Builder
			term := NewTerminal(strings.NewReader(tc.input), &out)

			got := term.Confirm("https://example.com/", 55, "MEDIUM RISK")
			if got != tc.expected {
				t.Errorf("Confirm = %v, expected %v", got, tc.expected)
			}
			if !strings.Contains(out.String(), "55") {
				t.Errorf("prompt should include the score: %q", out.String())
			}
		})
	}
}

// TestTerminalShowBlocked tests the blocking surface.
func TestTerminalShowBlocked(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected BlockedAction
	}{
		{"report", "r\n", ActionReport},
		{"dismiss", "d\n", ActionDismiss},
		{"default dismiss", "\n", ActionDismiss},
		{"eof dismisses", "", ActionDismiss},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var out strings.Builder
			term := NewTerminal(strings.NewReader(tc.input), &out)

			got := term.ShowBlocked("https://bad.example/", 85, "HIGH RISK")
			if got != tc.expected {
				t.Errorf("ShowBlocked = %v, expected %v", got, tc.expected)
			}
			if !strings.Contains(out.String(), "https://bad.example/") {
				t.Errorf("surface should name the URL: %q", out.String())
			}
		})
	}
}

// TestTerminalNotify tests notification formatting.
func TestTerminalNotify(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	term := NewTerminal(strings.NewReader(""), &out)

	term.Notify(PriorityHigh, "Threat detected", "page blocked")
	if !strings.Contains(out.String(), "ALERT") {
		t.Errorf("high priority should render as ALERT: %q", out.String())
	}

	out.Reset()
	term.Notify(PriorityNormal, "Analysis failed", "network error")
	if !strings.Contains(out.String(), "notice") {
		t.Errorf("normal priority should render as notice: %q", out.String())
	}
}
