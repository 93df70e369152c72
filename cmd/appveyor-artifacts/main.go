// Package main provides the entry point for the appveyor-artifacts CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/appveyor-artifacts/internal/cli"
)

// Build information set via ldflags at release time.
var (
	version = "" //nolint:gochecknoglobals // set by ldflags
	commit  = "" //nolint:gochecknoglobals // set by ldflags
	date    = "" //nolint:gochecknoglobals // set by ldflags
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	os.Exit(cli.ExitCodeForError(err))
}
