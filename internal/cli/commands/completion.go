package commands

import (
	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the completion command for shell completions
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for the derivekit CLI.

To load completions:

Bash:

  $ source <(derivekit completion bash)

  # To load completions for each session, execute once:
  $ derivekit completion bash > /etc/bash_completion.d/derivekit

Zsh:

  $ derivekit completion zsh > "${fpath[1]}/_derivekit"

  # You will need to start a new shell for this setup to take effect.

Fish:

  $ derivekit completion fish | source

  # To load completions for each session, execute once:
  $ derivekit completion fish > ~/.config/fish/completions/derivekit.fish

PowerShell:

  PS> derivekit completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()

			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}
