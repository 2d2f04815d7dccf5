package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/derivekit/internal/cli/config"
	"github.com/conduit-lang/derivekit/internal/cli/ui"
	"github.com/conduit-lang/derivekit/internal/compiler/cache"
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	var (
		yes   bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a derivekit.yaml configuration file",
		Long: `Create derivekit.yaml in the given directory (default: the current one).

Without --yes the settings are asked for interactively; with --yes the
defaults are written as they are.`,
		Example: `  derivekit init
  derivekit init --yes
  derivekit init crates/shapes --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, dir, yes, force)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Accept the defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing derivekit.yaml")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, yes, force bool) error {
	noColor, _ := cmd.Flags().GetBool("no-color")

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprint(cmd.ErrOrStderr(), ui.FormatError(ui.ErrorOptions{
			Context:      "Already initialized",
			Problem:      fmt.Sprintf("%s already exists.", path),
			HelpCommands: []string{"Overwrite it: derivekit init --force"},
			NoColor:      noColor,
		}))
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.Default()
	if !yes {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	written, err := cfg.Write(dir)
	if err != nil {
		return err
	}

	ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Created %s", written), noColor)
	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "  derivekit runtime --out <crate>/src/lib.rs")
	fmt.Fprintln(cmd.OutOrStdout(), "  derivekit expand")
	return nil
}

// initAnswers receives the survey answers
type initAnswers struct {
	RuntimeCrate string `survey:"runtime_crate"`
	OutputDir    string `survey:"output_dir"`
	Backend      string `survey:"backend"`
}

func promptConfig(cfg *config.Config) error {
	questions := []*survey.Question{
		{
			Name: "runtime_crate",
			Prompt: &survey.Input{
				Message: "Runtime crate name:",
				Default: cfg.RuntimeCrate,
				Help:    "Generated impls refer to support types in this crate",
			},
			Validate: survey.ComposeValidators(survey.Required, validateCrateName),
		},
		{
			Name: "output_dir",
			Prompt: &survey.Input{
				Message: "Output directory (empty = next to each source):",
				Default: cfg.OutputDir,
			},
		},
		{
			Name: "backend",
			Prompt: &survey.Select{
				Message: "Expansion cache:",
				Options: []string{cache.BackendMemory, cache.BackendRedis, cache.BackendNone},
				Default: cfg.Cache.Backend,
			},
		},
	}

	var answers initAnswers
	if err := survey.Ask(questions, &answers); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}

	cfg.RuntimeCrate = answers.RuntimeCrate
	cfg.OutputDir = answers.OutputDir
	cfg.Cache.Backend = answers.Backend

	if cfg.Cache.Backend == cache.BackendRedis {
		prompt := &survey.Input{
			Message: "Redis URL:",
			Default: cfg.Cache.RedisURL,
		}
		if err := survey.AskOne(prompt, &cfg.Cache.RedisURL, survey.WithValidator(survey.Required)); err != nil {
			return fmt.Errorf("prompt failed: %w", err)
		}
	}
	return nil
}

// validateCrateName accepts names usable as the first segment of a path
func validateCrateName(ans interface{}) error {
	name, ok := ans.(string)
	if !ok {
		return fmt.Errorf("expected a string")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("crate name cannot be empty")
	}
	for i, r := range name {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return fmt.Errorf("invalid crate name %q: use letters, digits and '_'", name)
		}
	}
	return nil
}
