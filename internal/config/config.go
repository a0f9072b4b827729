// Package config reads whlsl.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"whlsl/internal/trace"
)

// FileName is the configuration file searched for.
const FileName = "whlsl.toml"

// Config is the effective configuration. Zero-valued sections mean the
// built-in defaults.
type Config struct {
	// Path is the file the configuration was read from, empty for defaults.
	Path   string
	Check  Check
	Output Output
	Trace  Trace
}

type Check struct {
	// MaxDepth bounds AST nesting; 0 disables the limit.
	MaxDepth           int
	EmitInstantiations bool
	// Cache enables the on-disk result cache.
	Cache bool
	// Jobs bounds parallel checking; 0 uses GOMAXPROCS.
	Jobs int
}

type Output struct {
	Color   string // auto|on|off
	Timings bool
	Format  string // pretty|short|json
}

type Trace struct {
	Level  string
	Mode   string
	Output string
}

// Default returns the configuration used without a whlsl.toml.
func Default() Config {
	return Config{
		Check:  Check{MaxDepth: 512},
		Output: Output{Color: "auto", Format: "pretty"},
		Trace:  Trace{Level: "off", Mode: "stream", Output: "-"},
	}
}

type fileConfig struct {
	Check struct {
		MaxDepth           int  `toml:"max_depth"`
		EmitInstantiations bool `toml:"emit_instantiations"`
		Cache              bool `toml:"cache"`
		Jobs               int  `toml:"jobs"`
	} `toml:"check"`
	Output struct {
		Color   string `toml:"color"`
		Timings bool   `toml:"timings"`
		Format  string `toml:"format"`
	} `toml:"output"`
	Trace struct {
		Level  string `toml:"level"`
		Mode   string `toml:"mode"`
		Output string `toml:"output"`
	} `toml:"trace"`
}

// Find walks up from startDir to locate whlsl.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cfg, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path

	if meta.IsDefined("check", "max_depth") {
		if raw.Check.MaxDepth < 0 {
			return cfg, fmt.Errorf("%s: [check].max_depth must not be negative", path)
		}
		cfg.Check.MaxDepth = raw.Check.MaxDepth
	}
	if meta.IsDefined("check", "emit_instantiations") {
		cfg.Check.EmitInstantiations = raw.Check.EmitInstantiations
	}
	if meta.IsDefined("check", "cache") {
		cfg.Check.Cache = raw.Check.Cache
	}
	if meta.IsDefined("check", "jobs") {
		if raw.Check.Jobs < 0 {
			return cfg, fmt.Errorf("%s: [check].jobs must not be negative", path)
		}
		cfg.Check.Jobs = raw.Check.Jobs
	}
	if meta.IsDefined("output", "color") {
		cfg.Output.Color = strings.TrimSpace(raw.Output.Color)
	}
	if meta.IsDefined("output", "timings") {
		cfg.Output.Timings = raw.Output.Timings
	}
	if meta.IsDefined("output", "format") {
		cfg.Output.Format = strings.TrimSpace(raw.Output.Format)
	}
	if meta.IsDefined("trace", "level") {
		cfg.Trace.Level = strings.TrimSpace(raw.Trace.Level)
	}
	if meta.IsDefined("trace", "mode") {
		cfg.Trace.Mode = strings.TrimSpace(raw.Trace.Mode)
	}
	if meta.IsDefined("trace", "output") {
		cfg.Trace.Output = strings.TrimSpace(raw.Trace.Output)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the nearest whlsl.toml above startDir, or the defaults when
// there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Default(), err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("invalid [output].color %q (expected: auto|on|off)", c.Output.Color)
	}
	switch c.Output.Format {
	case "pretty", "short", "json":
	default:
		return fmt.Errorf("invalid [output].format %q (expected: pretty|short|json)", c.Output.Format)
	}
	if _, err := c.TraceConfig(); err != nil {
		return err
	}
	return nil
}

// TraceConfig converts the [trace] section for trace.New.
func (c Config) TraceConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{Level: level, Mode: mode, OutputPath: c.Trace.Output}, nil
}
