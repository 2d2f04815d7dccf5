package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/derivekit/internal/cli/ui"
	"github.com/conduit-lang/derivekit/internal/compiler/codegen"
)

// NewRuntimeCommand creates the runtime command
func NewRuntimeCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "runtime",
		Short: "Print the support crate the generated code depends on",
		Long: `Print the source of the runtime support crate.

Generated impls refer to error types and helper traits in this crate
(named by runtime_crate in derivekit.yaml). Add it to your workspace once
and regenerate it after upgrading derivekit.`,
		Example: `  derivekit runtime
  derivekit runtime --out crates/derivekit/src/lib.rs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			source := codegen.RuntimeSource(codegen.Options{RuntimeCrate: e.cfg.RuntimeCrate})
			if out == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), source)
				return err
			}

			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", filepath.Dir(out), err)
			}
			if err := os.WriteFile(out, []byte(source), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wrote runtime crate %s to %s", e.cfg.RuntimeCrate, out), e.noColor)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")

	return cmd
}
