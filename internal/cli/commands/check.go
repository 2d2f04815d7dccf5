package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/derivekit/internal/cli/ui"
	"github.com/conduit-lang/derivekit/internal/compiler/driver"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	var (
		asJSON bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report derive diagnostics without writing any file",
		Long: `Expand every derive in memory and report what would fail.

Nothing is written. The exit status is non-zero when any error is found;
warnings alone do not fail the check.`,
		Example: `  derivekit check
  derivekit check src/ --format compact
  derivekit check --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				format = string(ui.FormatJSON)
			}
			return runCheck(cmd, args, format)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print diagnostics as JSON (same as --format json)")
	cmd.Flags().StringVar(&format, "format", "pretty", "Diagnostic format (pretty, compact, json)")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, formatFlag string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	format, err := ui.ParseDiagnosticFormat(formatFlag)
	if err != nil {
		return err
	}

	files, err := driver.Collect(e.inputPaths(args), e.cfg.Suffix, e.cfg.Watch.Ignore)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	d, closeCache := e.newDriver(ctx, cmd.ErrOrStderr(), func(o *driver.Options) {
		o.DryRun = true
	})
	defer closeCache() //nolint:errcheck

	report, err := d.Run(ctx, files)
	if err != nil {
		return err
	}

	diagnostics := report.Errors()
	if err := ui.WriteDiagnostics(cmd.OutOrStdout(), diagnostics, format, e.noColor); err != nil {
		return err
	}

	if format != ui.FormatJSON {
		summary := fmt.Sprintf("Checked %d file(s): %s", len(files), ui.DiagnosticSummary(diagnostics))
		if diagnostics.HasErrors() {
			fmt.Fprintln(cmd.ErrOrStderr(), summary)
		} else {
			ui.WriteSuccess(cmd.ErrOrStderr(), summary, e.noColor)
		}
	}

	if diagnostics.HasErrors() {
		errs, _, _ := diagnostics.ErrorCount()
		return fmt.Errorf("check found %d error(s)", errs)
	}
	return nil
}
