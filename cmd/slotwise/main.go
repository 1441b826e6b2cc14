package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"slotwise/internal/version"
)

// newRootCmd assembles the command tree. Each call returns fresh commands so
// tests can execute them in isolation.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "slotwise",
		Short:         "Resolve virtual, interface and static virtual dispatch over type hierarchies",
		Long:          `slotwise answers method dispatch questions for hierarchies described in TOML or YAML manifests`,
		Version:       version.Version,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newSlotsCmd())
	rootCmd.AddCommand(newGroupCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newVersionCmd())

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.String("config", "", "path to slotwise.toml (default: search upward from the working directory)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "ring", "trace storage mode (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "number of events kept in ring mode")
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
