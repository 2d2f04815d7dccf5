package commands

import (
	"context"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/derivekit/internal/cli/ui"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "derivekit",
		Short: "Expand Rust #[derive] attributes into plain impl source",
		Long: color.CyanString(`derivekit - derive expansion for Rust sources

derivekit reads Rust source files, finds every struct and enum carrying
#[derive(...)] requests it knows, and writes the trait impls they stand
for into a sibling .derive.rs file.

Supported families:
  • Construction and conversion (Constructor, Default, From, Into, TryFrom, FromStr, ...)
  • Operators (Add, Mul, Not, AddAssign, Deref, Index, ...)
  • Iteration and I/O (IntoIterator, Iterator, Read, Sum, Product)
  • Variant helpers (IsVariant, Unwrap, TryUnwrap)
  • Equality and errors (PartialEq, Eq, Error)
  • Formatting (Display, Debug, LowerHex, Binary, ...)`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to derivekit.yaml (default: searched upwards from the working directory)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewExpandCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewRuntimeCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewLSPCommand())
	rootCmd.AddCommand(NewDebugCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the derivekit version, Git commit, build date, and Go version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}
			noColor, _ := cmd.Flags().GetBool("no-color")

			table := ui.NewKeyValueTable(cmd.OutOrStdout(), noColor || color.NoColor)
			table.AddRow("derivekit version", Version)
			table.AddRow("Git commit", GitCommit)
			table.AddRow("Build date", BuildDate)
			table.AddRow("Go version", goVer)
			table.Render()
		},
	}
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
