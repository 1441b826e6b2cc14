package diag

import (
	"strings"

	"github.com/fatih/color"
)

// Severity orders diagnostics; higher is more serious.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityInfo = [...]struct {
	label string
	fg    color.Attribute
}{
	SevInfo:    {"info", color.FgCyan},
	SevWarning: {"warning", color.FgYellow},
	SevError:   {"error", color.FgRed},
}

func (s Severity) known() bool { return int(s) < len(severityInfo) }

func (s Severity) String() string {
	if !s.known() {
		return "UNKNOWN"
	}
	return strings.ToUpper(severityInfo[s].label)
}

// Label is the lowercase form used in one-line output. Unknown values
// render as info.
func (s Severity) Label() string {
	if !s.known() {
		return severityInfo[SevInfo].label
	}
	return severityInfo[s].label
}

// severityColor forces color on; callers decide whether to use it.
func severityColor(s Severity) *color.Color {
	fg := severityInfo[SevInfo].fg
	if s.known() {
		fg = severityInfo[s].fg
	}
	c := color.New(color.Bold, fg)
	c.EnableColor()
	return c
}
