package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/derivekit/internal/cli/config"
	"github.com/conduit-lang/derivekit/internal/cli/ui"
	"github.com/conduit-lang/derivekit/internal/compiler/cache"
	"github.com/conduit-lang/derivekit/internal/compiler/driver"
)

// env is what every command needs after flags are parsed: the loaded
// configuration, the project root and a logger
type env struct {
	cfg     *config.Config
	root    string
	logger  *zap.Logger
	noColor bool
}

// loadEnv reads --config (or derivekit.yaml from the project root) and
// applies the global flags on top of it
func loadEnv(cmd *cobra.Command) (*env, error) {
	configPath, _ := cmd.Flags().GetString("config")
	noColor, _ := cmd.Flags().GetBool("no-color")

	e := &env{noColor: noColor || color.NoColor}

	var err error
	if configPath != "" {
		e.cfg, err = config.LoadFile(configPath)
		e.root = filepath.Dir(configPath)
	} else {
		e.root, err = config.FindRoot()
		if err == nil {
			e.cfg, err = config.Load(e.root)
		}
	}
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), nil, e.noColor))
		return nil, err
	}

	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		e.cfg.LogLevel = f.Value.String()
	}
	if e.cfg.OutputDir != "" && !filepath.IsAbs(e.cfg.OutputDir) {
		e.cfg.OutputDir = filepath.Join(e.root, e.cfg.OutputDir)
	}

	e.logger, err = e.cfg.Logger()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// cacheSalt changes whenever the generated code for the same input could
func (e *env) cacheSalt() string {
	return Version + "\x00" + e.cfg.RuntimeCrate
}

// newDriver opens the configured cache backend and builds a driver around
// it. An unreachable backend degrades to no caching with a warning. The
// returned func releases the backend.
func (e *env) newDriver(ctx context.Context, w io.Writer, adjust func(*driver.Options)) (*driver.Driver, func() error) {
	backend, err := cache.Open(ctx, e.cfg.CacheSettings(), e.logger)
	if err != nil {
		fmt.Fprint(w, ui.Warning(fmt.Sprintf("cache unavailable, continuing without it: %v", err), nil, e.noColor))
		backend = cache.Noop{}
	}
	expansions := cache.NewExpansions(backend, e.cacheSalt(), e.logger)

	opts := e.cfg.DriverOptions()
	if adjust != nil {
		adjust(&opts)
	}
	return driver.New(opts, expansions, e.logger), expansions.Close
}

// commandContext returns the command's context, or Background when the
// command was run without one
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// inputPaths defaults to the project root when no path was given
func (e *env) inputPaths(args []string) []string {
	if len(args) == 0 {
		return []string{e.root}
	}
	return args
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
