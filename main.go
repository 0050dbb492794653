// Package main is the entry point for the ChainSail application.
package main

import (
	"os"
	"runtime/debug"

	"github.com/rosa-labs/chainsail/internal/buildmeta"
	"github.com/rosa-labs/chainsail/pkg/cli/cmd"
	"github.com/rosa-labs/chainsail/pkg/ui/notify"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

//nolint:nonamedreturns // Named return lets the recover handler set the exit code.
func run(args []string) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			notify.Errorf(os.Stderr, "panic recovered: %v\n%s", r, debug.Stack())

			exitCode = 1
		}
	}()

	rootCmd := cmd.NewRootCmd(buildmeta.Version, buildmeta.Commit, buildmeta.Date)
	rootCmd.SetArgs(args)

	err := cmd.Execute(rootCmd)
	if err != nil {
		notify.Errorf(rootCmd.ErrOrStderr(), "%v", err)

		return 1
	}

	return 0
}
