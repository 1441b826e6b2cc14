package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"slotwise/internal/diag"
	"slotwise/internal/manifest"
	"slotwise/internal/observ"
	"slotwise/internal/project"
	"slotwise/internal/trace"
)

// toggle is an auto|on|off setting; auto follows whether the output is a terminal.
type toggle uint8

const (
	toggleAuto toggle = iota
	toggleOn
	toggleOff
)

var toggleNames = [...]string{toggleAuto: "auto", toggleOn: "on", toggleOff: "off"}

func (t toggle) String() string { return toggleNames[t] }

func parseToggle(flag, value string) (toggle, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return toggleAuto, nil
	}
	for t, name := range toggleNames {
		if name == value {
			return toggle(t), nil
		}
	}
	return toggleAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

func (t toggle) enabled(f *os.File) bool {
	switch t {
	case toggleOn:
		return true
	case toggleOff:
		return false
	}
	return isTerminal(f)
}

// session carries the per-invocation state shared by the subcommands.
type session struct {
	cfg      project.Config
	color    bool
	quiet    bool
	maxDiags int
	timer    *observ.Timer // nil unless --timings
	cache    *manifest.DiskCache
	span     *trace.Span
	cleanup  func()
}

// newSession reads the persistent flags and slotwise.toml, then installs the
// tracer on cmd's context. Callers must defer close.
func newSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Root().PersistentFlags()
	s := &session{}

	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return nil, err
	}
	s.cfg = cfg

	colorFlag, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	if !flags.Changed("color") && cfg.UI.Color != "" {
		colorFlag = cfg.UI.Color
	}
	colorMode, err := parseToggle("color", colorFlag)
	if err != nil {
		return nil, err
	}
	s.color = colorMode.enabled(os.Stdout)
	color.NoColor = !s.color

	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if timings {
		s.timer = observ.NewTimer()
	}
	if s.maxDiags, err = flags.GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !flags.Changed("max-diagnostics") && cfg.Resolve.MaxDiagnostics > 0 {
		s.maxDiags = cfg.Resolve.MaxDiagnostics
	}
	if s.maxDiags <= 0 {
		return nil, fmt.Errorf("--max-diagnostics must be positive, got %d", s.maxDiags)
	}

	if s.cleanup, err = setupTracing(cmd, cfg.Trace); err != nil {
		return nil, err
	}
	ctx, span := trace.StartSpan(cmd.Context(), trace.ScopeDriver, "slotwise "+cmd.Name())
	cmd.SetContext(ctx)
	s.span = span

	if cfg.Cache.Enable {
		cache, err := manifest.OpenDiskCache(cfg.CacheDir(), "slotwise")
		if err != nil {
			// run uncached rather than fail
			s.warnf(cmd, "cache disabled: %v", err)
		} else {
			s.cache = cache
		}
	}
	return s, nil
}

// loadProjectConfig honors --config, else discovers slotwise.toml upward
// from the working directory. Unknown keys are reported as warnings.
func loadProjectConfig(cmd *cobra.Command) (project.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return project.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	var (
		cfg     project.Config
		unknown []string
	)
	if path != "" {
		cfg, unknown, err = project.LoadConfig(path)
	} else {
		var wd string
		if wd, err = os.Getwd(); err != nil {
			return project.Config{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg, unknown, _, err = project.Discover(wd)
	}
	if err != nil {
		return project.Config{}, err
	}
	if len(unknown) > 0 {
		bag := diag.NewBag(len(unknown))
		r := diag.NewBagReporter(bag)
		for _, key := range unknown {
			diag.ReportWarning(r, diag.PrjUnknownKey, diag.Subject{File: cfg.Path, Path: key}, "unknown configuration key").Emit()
		}
		if err := diag.FormatShort(cmd.ErrOrStderr(), bag, diag.FormatOptions{}); err != nil {
			return project.Config{}, err
		}
	}
	return cfg, nil
}

// close ends the driver span, prints timings and flushes the tracer.
func (s *session) close(cmd *cobra.Command) {
	s.span.End("")
	if s.timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), s.timer.Summary())
	}
	if s.cleanup != nil {
		s.cleanup()
	}
}

func (s *session) warnf(cmd *cobra.Command, format string, args ...any) {
	if s.quiet {
		return
	}
	label := "warning"
	if s.color {
		label = color.New(color.FgYellow, color.Bold).Sprint(label)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", label, fmt.Sprintf(format, args...))
}

// loadManifest loads path with the session's cache and diagnostic limit and
// prints the resulting diagnostics.
func (s *session) loadManifest(cmd *cobra.Command, path string) (*manifest.Manifest, error) {
	_, span := trace.StartSpan(cmd.Context(), trace.ScopePhase, "load")
	span.WithExtra("path", path)
	idx := s.timer.Begin("load " + filepath.Base(path))

	m, bag, err := manifest.Load(path, manifest.Options{Cache: s.cache, MaxDiagnostics: s.maxDiags})
	note := ""
	if m != nil && m.CacheHit {
		note = "cached"
	}
	s.timer.End(idx, note)
	span.End(note)

	if printErr := s.printDiagnostics(cmd, bag); printErr != nil {
		return nil, printErr
	}
	return m, err
}

// printDiagnostics writes bag to stderr. Quiet mode drops bags without
// errors.
func (s *session) printDiagnostics(cmd *cobra.Command, bag *diag.Bag) error {
	if bag == nil || bag.Len() == 0 || (s.quiet && !bag.HasErrors()) {
		return nil
	}
	bag.Sort()
	bag.Dedup()
	return diag.FormatShort(cmd.ErrOrStderr(), bag, diag.FormatOptions{Color: s.color, ShowNotes: true})
}
