package version

import (
	"testing"

	"github.com/fatih/color"
)

func withBuildInfo(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = version, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func TestSummary(t *testing.T) {
	cases := []struct {
		version, commit, date string
		want                  string
	}{
		{"0.1.0-dev", "", "", "slotwise 0.1.0-dev"},
		{"1.2.3", "1234567890abcdef", "", "slotwise 1.2.3 (commit 1234567890ab)"},
		{"1.2.3", "abc", "2026-01-15", "slotwise 1.2.3 (commit abc, built 2026-01-15)"},
	}
	for _, tc := range cases {
		withBuildInfo(t, tc.version, tc.commit, tc.date)
		if got := Summary(false); got != tc.want {
			t.Fatalf("Summary() = %q, want %q", got, tc.want)
		}
	}
}

func TestColoredWithoutColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	withBuildInfo(t, "2.0.1-rc.1", "", "")
	if got := Colored(); got != "2.0.1-rc.1" {
		t.Fatalf("Colored() = %q", got)
	}
	withBuildInfo(t, "nightly", "", "")
	if got := Colored(); got != "nightly" {
		t.Fatalf("Colored() = %q", got)
	}
}
