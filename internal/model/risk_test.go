package model

import "testing"

// TestClassifyFullRange verifies the verdict for every score in the
// integer domain. The policy must be total and non-overlapping:
// DENY iff score >= 70, WARN iff 40 <= score < 70, ALLOW otherwise.
func TestClassifyFullRange(t *testing.T) {
	t.Parallel()

	for score := 0; score <= 100; score++ {
		s := score
		got := Classify(&s)

		var expected Verdict
		switch {
		case score >= BlockThreshold:
			expected = VerdictDeny
		case score >= WarnThreshold:
			expected = VerdictWarn
		default:
			expected = VerdictAllow
		}

		if got != expected {
			t.Errorf("Classify(%d) = %v, expected %v", score, got, expected)
		}
	}
}

// TestClassifyNilScore verifies that unscored links never block.
func TestClassifyNilScore(t *testing.T) {
	t.Parallel()

	if got := Classify(nil); got != VerdictAllow {
		t.Errorf("Classify(nil) = %v, expected VerdictAllow", got)
	}
}

// TestClassifyBoundaries tests the exact threshold cut points.
func TestClassifyBoundaries(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		score    int
		expected Verdict
	}{
		{"just below warn", 39, VerdictAllow},
		{"exactly warn", 40, VerdictWarn},
		{"just below block", 69, VerdictWarn},
		{"exactly block", 70, VerdictDeny},
		{"maximum", 100, VerdictDeny},
		{"minimum", 0, VerdictAllow},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := tc.score
			if got := Classify(&s); got != tc.expected {
				t.Errorf("Classify(%d) = %v, expected %v", tc.score, got, tc.expected)
			}
		})
	}
}

// TestVerdictString tests the String method of Verdict.
func TestVerdictString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		verdict  Verdict
		expected string
	}{
		{VerdictAllow, "ALLOW"},
		{VerdictWarn, "WARN"},
		{VerdictDeny, "DENY"},
		{Verdict(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.verdict.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.verdict.String(), tc.expected)
			}
		})
	}
}

// TestTierFor tests the four-tier presentation classification.
func TestTierFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		score    int
		expected Tier
	}{
		{0, TierSafe},
		{19, TierSafe},
		{20, TierInfo},
		{39, TierInfo},
		{40, TierWarn},
		{69, TierWarn},
		{70, TierBlock},
		{100, TierBlock},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.expected.String(), func(t *testing.T) {
			t.Parallel()
			if got := TierFor(tc.score); got != tc.expected {
				t.Errorf("TierFor(%d) = %v, expected %v", tc.score, got, tc.expected)
			}
		})
	}
}

// TestTierOrdering tests that tiers are ordered for severity comparison.
func TestTierOrdering(t *testing.T) {
	t.Parallel()

	if TierSafe >= TierInfo {
		t.Error("expected TierSafe < TierInfo")
	}
	if TierInfo >= TierWarn {
		t.Error("expected TierInfo < TierWarn")
	}
	if TierWarn >= TierBlock {
		t.Error("expected TierWarn < TierBlock")
	}
}

// TestTierColor tests the tier color mapping used in reports.
func TestTierColor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		tier     Tier
		expected string
	}{
		{TierBlock, "red"},
		{TierWarn, "yellow"},
		{TierInfo, "blue"},
		{TierSafe, "green"},
		{Tier(999), "gray"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if got := tc.tier.Color(); got != tc.expected {
				t.Errorf("Color() = %q, expected %q", got, tc.expected)
			}
		})
	}
}
