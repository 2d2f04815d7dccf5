package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/derivekit/internal/lsp"
)

// NewLSPCommand creates the LSP command
func NewLSPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the derivekit Language Server Protocol (LSP) server.

This command starts an LSP server that provides IDE integration features including:
  • Diagnostics for derives that cannot be expanded
  • Hover showing the generated impl of a declaration
  • Completion of helper attribute keys
  • Go-to-definition and references for declarations
  • Document and workspace symbols
  • derivekit.showExpansion and derivekit.expandWorkspace commands

The LSP server communicates via JSON-RPC over stdin/stdout.
It is typically started automatically by your editor/IDE.`,
		Args: cobra.NoArgs,
		RunE: runLSP,
	}
}

func runLSP(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, closeCache := e.newDriver(ctx, cmd.ErrOrStderr(), nil)
	defer closeCache() //nolint:errcheck

	server := lsp.NewServer(d, e.logger.Named("lsp"))
	server.SetIgnore(e.cfg.Watch.Ignore)

	return server.Run(ctx)
}
