package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"slotwise/internal/dispatch"
	"slotwise/internal/typesys"
)

func newGroupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group <manifest>",
		Short: "Print the unification group virtual dispatch builds for a method",
		Args:  cobra.ExactArgs(1),
		RunE:  runGroup,
	}
	cmd.Flags().String("method", "", "method reference")
	cmd.Flags().String("type", "", "object type reference")
	_ = cmd.MarkFlagRequired("method")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func runGroup(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close(cmd)

	method, ty, err := s.loadTarget(cmd, args[0])
	if err != nil {
		return err
	}
	idx := s.timer.Begin("group")
	g, err := dispatch.BuildUnificationGroup(method, ty)
	s.timer.End(idx, "")
	if err != nil {
		return fmt.Errorf("%s on %s: %w", method, ty, err)
	}
	if g == nil {
		return fmt.Errorf("%s has no counterpart on %s", method, ty)
	}
	return writeGroup(cmd.OutOrStdout(), g)
}

func writeGroup(w io.Writer, g *dispatch.UnificationGroup) error {
	if _, err := fmt.Fprintf(w, "defining      %s\n", resultColor.Sprint(g.Defining())); err != nil {
		return err
	}
	if err := writeMethodList(w, "members", g.Members()); err != nil {
		return err
	}
	return writeMethodList(w, "slot-unified", g.SlotUnified())
}

func writeMethodList(w io.Writer, label string, methods []*typesys.Method) error {
	if len(methods) == 0 {
		_, err := fmt.Fprintf(w, "%-13s %s\n", label, absentColor.Sprint("(none)"))
		return err
	}
	for i, m := range methods {
		if i > 0 {
			label = ""
		}
		if _, err := fmt.Fprintf(w, "%-13s %s\n", label, m); err != nil {
			return err
		}
	}
	return nil
}
