// Package main implements the rplus daemon (rplusd).
package main

import (
	"os"

	"github.com/rplus-dev/rplus/cmd/rplusd/commands"
)

func main() {
	commands.SetupCommands()

	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
