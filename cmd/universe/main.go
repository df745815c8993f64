// Package main provides the entry point for the universe CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Leenie/ansible-universe/internal/cli"
)

//nolint:gochecknoglobals // set via ldflags
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err != nil && !cli.IsReported(err) {
		_, _ = fmt.Fprintln(os.Stderr, "universe:", err)
	}
	os.Exit(cli.ExitCodeForError(err))
}
