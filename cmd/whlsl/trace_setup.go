package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"whlsl/internal/config"
	"whlsl/internal/prof"
	"whlsl/internal/trace"
)

// setupTracing builds the tracer from the [trace] section of cfg, with the
// trace flags taking precedence, and attaches it to the command context.
func setupTracing(cmd *cobra.Command, cfg config.Config) error {
	root := cmd.Root().PersistentFlags()

	if root.Changed("trace") {
		cfg.Trace.Output, _ = root.GetString("trace")
		if cfg.Trace.Level == "off" && !root.Changed("trace-level") {
			cfg.Trace.Level = "phase"
		}
	}
	if root.Changed("trace-level") {
		cfg.Trace.Level, _ = root.GetString("trace-level")
	}
	if root.Changed("trace-mode") {
		cfg.Trace.Mode, _ = root.GetString("trace-mode")
	}
	tcfg, err := cfg.TraceConfig()
	if err != nil {
		return fmt.Errorf("invalid trace configuration: %w", err)
	}
	tcfg.RingSize, err = root.GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	tracer, err := trace.New(tcfg)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)
	return nil
}

// closeTracer flushes and closes the tracer attached to cmd, if any.
func closeTracer(cmd *cobra.Command) {
	tracer := trace.FromContext(cmd.Context())
	if tracer == nil || tracer == trace.Nop {
		return
	}
	if err := tracer.Flush(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
	}
	if err := tracer.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
	}
}

// dumpRing writes the ring buffer, if one is recording, to stderr. It runs
// when checking hit an internal compiler error.
func dumpRing(cmd *cobra.Command) {
	ring, ok := trace.Ring(trace.FromContext(cmd.Context()))
	if !ok {
		return
	}
	fmt.Fprintln(os.Stderr, "== trace (most recent events) ==")
	if err := ring.Dump(os.Stderr, trace.FormatText); err != nil {
		fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
	}
}

var profiler *prof.Session

// setupProfiling starts the profiles requested by the persistent flags.
func setupProfiling(cmd *cobra.Command) error {
	root := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = root.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Mem, err = root.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = root.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	profiler, err = prof.Start(opts)
	if err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	return nil
}

// finishCommand stops profiling and closes the tracer. Cobra skips post-run
// hooks when RunE fails, so failing commands call it themselves.
func finishCommand(cmd *cobra.Command, _ []string) error {
	closeTracer(cmd)
	if err := profiler.Stop(); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}
