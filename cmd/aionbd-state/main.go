// Package main is the entry point for the aionbd-state CLI.
package main

import (
	"os"

	"github.com/aionbd/aionbd-state/cmd/aionbd-state/commands"
)

func main() {
	os.Exit(commands.Execute())
}
