package main

import (
	"context"
	"os"

	"github.com/conduit-lang/derivekit/internal/cli/commands"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	commands.Version = Version
	commands.GitCommit = GitCommit
	commands.BuildDate = BuildDate

	if err := commands.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
