package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/derivekit/internal/cli/ui"
	"github.com/conduit-lang/derivekit/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	var (
		debounce time.Duration
		format   string
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-expand derives whenever a source file changes",
		Long: `Expand the whole project once, then watch it and re-expand every Rust
source file that is written, created or renamed. When a source file is
deleted its generated file is removed as well.

Changes are batched: a batch is handled after the debounce period passes
without further changes (watch.debounce in derivekit.yaml).`,
		Example: `  # Watch the project root
  derivekit watch

  # Watch a sub-directory with a longer quiet period
  derivekit watch crates/shapes --debounce 500ms`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, debounce, format)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 0, "Quiet period before a batch is handled (default from config)")
	cmd.Flags().StringVar(&format, "format", "pretty", "Diagnostic format (pretty, compact, json)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, debounce time.Duration, formatFlag string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	format, err := ui.ParseDiagnosticFormat(formatFlag)
	if err != nil {
		return err
	}

	root := e.root
	if len(args) == 1 {
		root = args[0]
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	d, closeCache := e.newDriver(ctx, errOut, nil)
	defer closeCache() //nolint:errcheck

	builder := watch.NewIncrementalBuilder(d, e.logger.Named("watch"))
	printer := &rebuildPrinter{out: out, errOut: errOut, format: format, noColor: e.noColor}

	var spinner *ui.Spinner
	if !e.noColor {
		spinner = ui.NewSpinner(errOut, ui.SpinnerOptions{Message: "Expanding " + root})
		spinner.Start()
	}
	result, err := builder.FullBuild(ctx, root, e.cfg.Watch.Ignore)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	printer.print(result)

	opts := e.cfg.WatchOptions(root)
	if debounce > 0 {
		opts.Debounce = debounce
	}
	watcher, err := watch.NewFileWatcher(opts, func(changed []string) error {
		result, err := builder.Rebuild(ctx, changed)
		if err != nil {
			return err
		}
		printer.print(result)
		return nil
	}, e.logger.Named("watch"))
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}

	banner := color.New(color.FgCyan, color.Bold)
	if e.noColor {
		banner.DisableColor()
	}
	fmt.Fprintln(out)
	banner.Fprintf(out, "👀 Watching %s\n", root)
	fmt.Fprintln(out, "   Press Ctrl+C to stop")
	fmt.Fprintln(out)

	<-ctx.Done()

	fmt.Fprintln(out, "\nShutting down...")
	if err := watcher.Stop(); err != nil {
		return fmt.Errorf("error stopping watcher: %w", err)
	}
	return nil
}

// rebuildPrinter reports each batch as one summary line followed by its
// diagnostics
type rebuildPrinter struct {
	out     io.Writer
	errOut  io.Writer
	format  ui.DiagnosticFormat
	noColor bool
}

func (p *rebuildPrinter) print(result *watch.RebuildResult) {
	for _, removed := range result.Removed {
		fmt.Fprint(p.out, ui.Info(fmt.Sprintf("Removed %s", removed), p.noColor))
	}
	if result.Report == nil {
		return
	}

	m := result.Report.Metrics
	stamp := time.Now().Format("15:04:05")
	if result.Failed() {
		_ = ui.WriteDiagnostics(p.errOut, result.Report.Errors(), p.format, p.noColor)
		fmt.Fprintf(p.errOut, "[%s] %d of %d file(s) failed\n", stamp, m.FilesFailed, m.TotalFiles)
		return
	}
	ui.WriteSuccess(p.out, fmt.Sprintf("[%s] %d file(s) expanded, %d written in %s",
		stamp, m.TotalFiles, m.FilesWritten, result.Duration.Round(time.Millisecond)), p.noColor)
}
