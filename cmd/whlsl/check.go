package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"whlsl/internal/config"
	"whlsl/internal/diagfmt"
	"whlsl/internal/driver"
	"whlsl/internal/source"
	"whlsl/internal/ui"
)

// errDiagnostics is returned after diagnostics with errors were printed.
var errDiagnostics = errors.New("checking reported errors")

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file|directory>...",
	Short: "Type check WHLSL program descriptions",
	Long: `Load each program description (.yaml, .yml, .msgpack, .mp), bind its names,
type check it and validate its entry points. Directories are searched
recursively.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "", "output format (pretty|short|json)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Int("max-depth", 0, "max AST nesting depth (0 disables the limit)")
	checkCmd.Flags().Bool("emit-instantiations", false, "print the instantiations of generic declarations")
	checkCmd.Flags().Bool("cache", false, "reuse results of unchanged files from the on-disk cache")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().String("ui", "off", "show a progress view while checking (auto|on|off)")
}

// loadConfig reads --config or the nearest whlsl.toml, then applies the
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	root := cmd.Root().PersistentFlags()
	path, _ := root.GetString("config")

	var cfg config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return config.Config{}, wdErr
		}
		cfg, err = config.Discover(wd)
	}
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if root.Changed("color") {
		cfg.Output.Color, _ = root.GetString("color")
	}
	if root.Changed("timings") {
		cfg.Output.Timings, _ = root.GetBool("timings")
	}
	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}
	if flags.Changed("jobs") {
		cfg.Check.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("max-depth") {
		cfg.Check.MaxDepth, _ = flags.GetInt("max-depth")
	}
	if flags.Changed("emit-instantiations") {
		cfg.Check.EmitInstantiations, _ = flags.GetBool("emit-instantiations")
	}
	if flags.Changed("cache") {
		cfg.Check.Cache, _ = flags.GetBool("cache")
	}
	if err := cfg.Validate(); err != nil {
		if cfg.Path != "" {
			return config.Config{}, fmt.Errorf("%s: %w", cfg.Path, err)
		}
		return config.Config{}, err
	}
	return cfg, nil
}

func useColor(cfg config.Config) bool {
	switch cfg.Output.Color {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// runCheck checks every path, renders the diagnostics in the configured
// format and fails when any file has an error.
func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	if err := setupTracing(cmd, cfg); err != nil {
		return err
	}
	if err := setupProfiling(cmd); err != nil {
		return err
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	withNotes, _ := cmd.Flags().GetBool("with-notes")
	fullPath, _ := cmd.Flags().GetBool("fullpath")
	uiFlag, _ := cmd.Flags().GetString("ui")
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	opts := driver.Options{
		MaxDiagnostics:     maxDiagnostics,
		MaxDepth:           cfg.Check.MaxDepth,
		Jobs:               cfg.Check.Jobs,
		Timings:            cfg.Output.Timings,
		EmitInstantiations: cfg.Check.EmitInstantiations,
	}
	if cfg.Check.Cache {
		if opts.Cache, err = driver.OpenResultCache("whlsl"); err != nil {
			return fmt.Errorf("failed to open result cache: %w", err)
		}
	}

	var (
		fileSet *source.FileSet
		results []*driver.FileResult
	)
	if shouldUseTUI(mode) && cfg.Output.Format != "json" {
		fileSet, results, err = runCheckWithUI(cmd.Context(), args, opts)
	} else {
		fileSet, results, err = driver.CheckPaths(cmd.Context(), args, opts)
	}
	if err != nil {
		_ = finishCommand(cmd, nil)
		return fmt.Errorf("check failed: %w", err)
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	out := cmd.OutOrStdout()
	if err := renderResults(out, fileSet, results, cfg, pathMode, withNotes); err != nil {
		_ = finishCommand(cmd, nil)
		return err
	}
	for _, r := range results {
		if r.CacheErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", r.CacheErr)
		}
	}
	if cfg.Output.Timings && cfg.Output.Format != "json" {
		printTimings(cmd.ErrOrStderr(), results)
	}

	failed, internal := false, false
	for _, r := range results {
		failed = failed || r.Bag.HasErrors()
		internal = internal || r.Bag.HasInternal()
	}
	if internal {
		dumpRing(cmd)
	}
	if failed {
		_ = finishCommand(cmd, nil)
		cmd.SilenceErrors = true
		return errDiagnostics
	}
	return nil
}

func renderResults(out io.Writer, fs *source.FileSet, results []*driver.FileResult, cfg config.Config, pathMode diagfmt.PathMode, withNotes bool) error {
	switch cfg.Output.Format {
	case "short":
		for _, r := range results {
			diagfmt.Short(out, r.Bag, fs, pathMode, "")
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{IncludePositions: true, PathMode: pathMode, IncludeNotes: withNotes}
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		for _, r := range results {
			output[r.Path] = diagfmt.BuildDiagnosticsOutput(r.Bag, fs, jsonOpts)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(output); err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
		return nil
	default:
		prettyOpts := diagfmt.PrettyOpts{
			Color:     useColor(cfg),
			Context:   2,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		}
		printed := 0
		for _, r := range results {
			if r.Bag.Len() == 0 {
				continue
			}
			if printed > 0 {
				fmt.Fprintln(out)
			}
			if len(results) > 1 {
				fmt.Fprintf(out, "== %s ==\n", r.Path)
			}
			diagfmt.Pretty(out, r.Bag, fs, prettyOpts)
			printed++
		}
	}

	for _, r := range results {
		if r.InstantiationDump == "" {
			continue
		}
		fmt.Fprintf(out, "\n== INSTANTIATIONS %s ==\n", r.Path)
		fmt.Fprint(out, r.InstantiationDump)
	}
	return nil
}

type checkOutcome struct {
	fs      *source.FileSet
	results []*driver.FileResult
	err     error
}

// runCheckWithUI runs CheckPaths while a progress view consumes its events.
func runCheckWithUI(ctx context.Context, paths []string, opts driver.Options) (*source.FileSet, []*driver.FileResult, error) {
	files, err := driver.ExpandPaths(paths)
	if err != nil {
		return nil, nil, err
	}
	for i, f := range files {
		files[i] = filepath.ToSlash(filepath.Clean(f))
	}

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)
	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		fs, results, err := driver.CheckPaths(ctx, files, optsCopy)
		close(events)
		outcomeCh <- checkOutcome{fs: fs, results: results, err: err}
	}()

	model := ui.NewProgressModel("checking", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// The view may quit early; keep the workers from blocking on the sink.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}
