package main

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"slotwise/internal/dispatch"
	"slotwise/internal/typesys"
)

func newSlotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots <manifest>",
		Short: "List the virtual slots of a type",
		Args:  cobra.ExactArgs(1),
		RunE:  runSlots,
	}
	cmd.Flags().String("type", "", "type reference")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func runSlots(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close(cmd)

	typeRef, err := cmd.Flags().GetString("type")
	if err != nil {
		return fmt.Errorf("failed to get type flag: %w", err)
	}
	m, err := s.loadManifest(cmd, args[0])
	if err != nil {
		return err
	}
	ty, err := m.Type(typeRef)
	if err != nil {
		return fmt.Errorf("type %q: %w", typeRef, err)
	}

	idx := s.timer.Begin("enumerate")
	var slots []*typesys.Method
	for slot := range dispatch.EnumerateAllVirtualSlots(ty) {
		slots = append(slots, slot)
	}
	s.timer.End(idx, fmt.Sprintf("%d slots", len(slots)))

	out := cmd.OutOrStdout()
	if len(slots) == 0 {
		if !s.quiet {
			_, err = fmt.Fprintf(out, "%s has no virtual slots\n", ty)
		}
		return err
	}
	return writeSlotTable(out, slots)
}

// writeSlotTable prints one row per slot with columns padded to display
// width.
func writeSlotTable(w io.Writer, slots []*typesys.Method) error {
	rows := make([][3]string, 0, len(slots)+1)
	rows = append(rows, [3]string{"SLOT", "SIGNATURE", "FLAGS"})
	for _, slot := range slots {
		rows = append(rows, [3]string{slot.String(), slot.Signature().String(), slot.Flags().String()})
	}
	var widths [2]int
	for _, row := range rows {
		for col := range widths {
			widths[col] = max(widths[col], runewidth.StringWidth(row[col]))
		}
	}
	for i, row := range rows {
		line := runewidth.FillRight(row[0], widths[0]) + "  " + runewidth.FillRight(row[1], widths[1]) + "  " + row[2]
		if i == 0 {
			line = labelColor.Sprint(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
