package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/derivekit/internal/cli/ui"
	"github.com/conduit-lang/derivekit/internal/compiler/driver"
)

type expandOptions struct {
	stdout bool
	json   bool
	dryRun bool
	format string
}

// NewExpandCommand creates the expand command
func NewExpandCommand() *cobra.Command {
	var opts expandOptions

	cmd := &cobra.Command{
		Use:   "expand [paths...]",
		Short: "Expand #[derive] attributes into generated impl files",
		Long: `Expand the derives of every Rust source file under the given paths.

For each input file src/shapes.rs the generated impls are written to
src/shapes.derive.rs (or into output_dir when configured). Directories are
walked recursively; target/ and .git/ are skipped. Declarations that fail
to expand are reported and left out of the generated file.

With no paths, the project root (the directory holding derivekit.yaml) is
expanded.`,
		Example: `  # Expand the whole project
  derivekit expand

  # Print the generated code of one file instead of writing it
  derivekit expand src/shapes.rs --stdout

  # Machine-readable report for CI
  derivekit expand --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Print generated code instead of writing files")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the run report as JSON")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Expand without writing any file")
	cmd.Flags().StringVar(&opts.format, "format", "pretty", "Diagnostic format (pretty, compact, json)")

	return cmd
}

func runExpand(cmd *cobra.Command, args []string, opts expandOptions) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	format, err := ui.ParseDiagnosticFormat(opts.format)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	files, err := driver.Collect(e.inputPaths(args), e.cfg.Suffix, e.cfg.Watch.Ignore)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if opts.json {
			return writeJSON(out, &driver.Report{Files: []*driver.FileResult{}})
		}
		fmt.Fprint(errOut, ui.Info("No Rust sources found.", e.noColor))
		return nil
	}

	ctx := commandContext(cmd)

	var bar *ui.ProgressBar
	if !opts.json && !opts.stdout && !e.noColor && len(files) > 1 {
		bar = ui.NewProgressBar(errOut, ui.ProgressBarOptions{Total: len(files), Width: 30})
	}

	d, closeCache := e.newDriver(ctx, errOut, func(o *driver.Options) {
		o.DryRun = opts.dryRun || opts.stdout
		if bar != nil {
			o.OnFile = func(r *driver.FileResult) { bar.Step(r.Path, r.Failed()) }
		}
	})
	defer closeCache() //nolint:errcheck

	report, err := d.Run(ctx, files)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if opts.json {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		if opts.stdout {
			for _, f := range report.Files {
				if f.Output == "" {
					continue
				}
				if len(report.Files) > 1 {
					fmt.Fprintf(out, "// ==> %s <==\n", f.OutputPath)
				}
				fmt.Fprint(out, f.Output)
			}
		}
		if err := ui.WriteDiagnostics(errOut, report.Errors(), format, e.noColor); err != nil {
			return err
		}
	}

	m := report.Metrics
	if report.Failed() {
		if !opts.json {
			fmt.Fprint(errOut, ui.ExpansionFailedError(m.FilesFailed, m.TotalFiles, e.noColor))
		}
		return fmt.Errorf("%d of %d file(s) failed to expand", m.FilesFailed, m.TotalFiles)
	}

	if !opts.json && !opts.stdout {
		summary := fmt.Sprintf("Expanded %d declaration(s) in %d file(s), %d written (%d cached) in %s",
			m.Declarations, m.TotalFiles, m.FilesWritten, m.CacheHits, m.Duration.Round(time.Millisecond))
		if opts.dryRun {
			summary = fmt.Sprintf("Dry run: expanded %d declaration(s) in %d file(s), nothing written",
				m.Declarations, m.TotalFiles)
		}
		ui.WriteSuccess(out, summary, e.noColor)
	}
	return nil
}
