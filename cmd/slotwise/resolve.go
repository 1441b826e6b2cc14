package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"slotwise/internal/dispatch"
	"slotwise/internal/dispcache"
	"slotwise/internal/typesys"
)

var (
	resultColor = color.New(color.FgGreen, color.Bold)
	absentColor = color.New(color.FgYellow)
	labelColor  = color.New(color.Faint)
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <manifest>",
		Short: "Resolve one dispatch query against a manifest",
		Long: `Resolve answers a single dispatch question. --op selects the resolver:
` + strings.Join(opNames(), ", ") + `.`,
		Args: cobra.ExactArgs(1),
		RunE: runResolve,
	}
	cmd.Flags().String("op", "virtual", "resolver to run")
	cmd.Flags().String("method", "", "method reference, e.g. IBox<int>.Get or A.M(int)")
	cmd.Flags().String("type", "", "type reference of the object type")
	_ = cmd.MarkFlagRequired("method")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func opNames() []string {
	ops := dispcache.Ops()
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.String()
	}
	return out
}

func runResolve(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close(cmd)

	opStr, err := cmd.Flags().GetString("op")
	if err != nil {
		return fmt.Errorf("failed to get op flag: %w", err)
	}
	op, err := dispcache.ParseOp(opStr)
	if err != nil {
		return err
	}
	method, ty, err := s.loadTarget(cmd, args[0])
	if err != nil {
		return err
	}

	idx := s.timer.Begin("resolve")
	res := dispcache.Resolve(op, method, ty)
	s.timer.End(idx, op.String())
	if res.Err != nil {
		return fmt.Errorf("%s %s on %s: %w", op, method, ty, res.Err)
	}

	out := cmd.OutOrStdout()
	outcome := res.Outcome()
	if res.Method != nil {
		outcome = resultColor.Sprint(outcome)
	} else {
		outcome = absentColor.Sprint(outcome)
	}
	line := fmt.Sprintf("%s %s on %s: %s", op, method, ty, outcome)
	switch op {
	case dispcache.OpDefault, dispcache.OpVariantDefault:
		if res.Default != dispatch.DefaultNone {
			line += labelColor.Sprintf(" (%s)", res.Default)
		}
	case dispcache.OpCall:
		line += labelColor.Sprintf(" (%s)", res.Call.Kind)
	}
	_, err = fmt.Fprintln(out, line)
	return err
}

// loadTarget loads the manifest and resolves the --method and --type flags.
func (s *session) loadTarget(cmd *cobra.Command, path string) (*typesys.Method, *typesys.Type, error) {
	methodRef, err := cmd.Flags().GetString("method")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get method flag: %w", err)
	}
	typeRef, err := cmd.Flags().GetString("type")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get type flag: %w", err)
	}
	m, err := s.loadManifest(cmd, path)
	if err != nil {
		return nil, nil, err
	}
	method, err := m.Method(methodRef)
	if err != nil {
		return nil, nil, fmt.Errorf("method %q: %w", methodRef, err)
	}
	ty, err := m.Type(typeRef)
	if err != nil {
		return nil, nil, fmt.Errorf("type %q: %w", typeRef, err)
	}
	return method, ty, nil
}
