package diag

import (
	"fmt"
	"io"
)

// FormatOptions controls FormatShort output.
type FormatOptions struct {
	Color     bool
	ShowNotes bool
}

// FormatShort writes one line per diagnostic:
//
//	error MAN1003 slots.toml:type[2] duplicate type definition "A"
//
// Notes follow on indented lines when ShowNotes is set.
func FormatShort(w io.Writer, bag *Bag, opts FormatOptions) error {
	if bag == nil {
		return nil
	}
	for _, d := range bag.Items() {
		label := d.Severity.Label()
		if opts.Color {
			label = severityColor(d.Severity).Sprint(label)
		}
		subject := d.Subject.String()
		if subject == "" {
			subject = "-"
		}
		if _, err := fmt.Fprintf(w, "%s %s %s %s\n", label, d.Code.ID(), subject, d.Message); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			line := "  note: " + n.Msg
			if s := n.Subject.String(); s != "" {
				line = "  note: " + s + ": " + n.Msg
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}
