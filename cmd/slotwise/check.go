package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"slotwise/internal/diag"
	"slotwise/internal/dispcache"
	"slotwise/internal/manifest"
	"slotwise/internal/project"
	"slotwise/internal/query"
)

var (
	passColor = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [manifest|dir ...]",
		Short: "Run the queries of one or more manifests and compare them to their expectations",
		Long: `Check loads every manifest (directories are searched for .toml, .yaml and
.yml files), runs its [[query]] entries in parallel and exits non-zero when an
expectation does not hold. Without arguments it checks [resolve].manifests
from slotwise.toml.`,
		RunE: runCheck,
	}
	cmd.Flags().Int("jobs", 0, "max parallel queries (0=auto)")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close(cmd)

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !cmd.Flags().Changed("jobs") {
		jobs = s.cfg.Resolve.Jobs
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	if !cmd.Flags().Changed("ui") && s.cfg.UI.Mode != "" {
		uiValue = s.cfg.UI.Mode
	}
	uiMode, err := parseToggle("ui", uiValue)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = s.cfg.ManifestPaths()
		if len(args) == 0 {
			return errors.New("no manifests given and [resolve].manifests is empty")
		}
	}
	paths, err := collectManifests(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no manifests found in %s", strings.Join(args, ", "))
	}

	var (
		qs       []query.Query
		digests  []project.Digest
		badLoads int
	)
	queryBag := diag.NewBag(s.maxDiags)
	reporter := diag.NewBagReporter(queryBag)
	for _, path := range paths {
		m, err := s.loadManifest(cmd, path)
		if err != nil {
			if !errors.Is(err, manifest.ErrInvalidManifest) {
				return err
			}
			badLoads++
			continue
		}
		digests = append(digests, m.Digest)
		idx := s.timer.Begin("compile " + filepath.Base(path))
		compiled := query.Compile(m, reporter)
		s.timer.End(idx, fmt.Sprintf("%d queries", len(compiled)))
		qs = append(qs, compiled...)
	}

	cache := dispcache.New(len(qs))
	opts := query.Options{Jobs: jobs, Cache: cache}
	idx := s.timer.Begin("run")
	var outcomes []query.Outcome
	if uiMode.enabled(os.Stdout) && !s.quiet && len(qs) > 0 {
		outcomes, err = runQueriesWithUI(cmd.Context(), "checking queries", qs, opts)
	} else {
		outcomes, err = query.Run(cmd.Context(), qs, opts)
	}
	stats := cache.Stats()
	s.timer.End(idx, fmt.Sprintf("%d hits, %d misses", stats.Hits, stats.Misses))
	if err != nil {
		return err
	}

	summary := query.Check(outcomes, reporter)
	if err := s.printDiagnostics(cmd, queryBag); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !s.quiet {
		if err := writeOutcomes(out, outcomes); err != nil {
			return err
		}
		if len(digests) > 0 {
			fingerprint := project.Combine(digests[0], digests[1:]...)
			fmt.Fprintf(out, "checked %d manifest(s), fingerprint %.12s\n", len(digests), fingerprint)
		}
	}
	fmt.Fprintln(out, summary)

	switch {
	case badLoads > 0:
		return fmt.Errorf("%d manifest(s) failed to load", badLoads)
	case queryBag.HasErrors() && summary.OK():
		return errors.New("queries have errors")
	case !summary.OK():
		return fmt.Errorf("%d of %d queries did not hold", summary.Failed+summary.Errors, summary.Total)
	}
	return nil
}

// collectManifests expands directories into the manifests below them and
// keeps explicit files as given. The result is sorted and duplicate free.
func collectManifests(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := statPath(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, filepath.Clean(arg))
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Name() == project.ConfigFileName || manifest.FormatOf(path) == manifest.FormatUnknown {
				return nil
			}
			paths = append(paths, filepath.Clean(path))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func writeOutcomes(w io.Writer, outcomes []query.Outcome) error {
	for _, o := range outcomes {
		status := o.Status()
		label := fmt.Sprintf("%-6s", strings.ToUpper(status.String()))
		switch status {
		case query.StatusPassed:
			label = passColor.Sprint(label)
		default:
			label = failColor.Sprint(label)
		}
		line := fmt.Sprintf("%s %s: %s", label, query.Label(o.Query), o.Result.Outcome())
		if !o.Query.Checked() {
			line += labelColor.Sprint(" (unchecked)")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
