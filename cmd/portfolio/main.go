package main

import (
	"os"

	"github.com/terra-clan/portfolio/cmd/portfolio/commands"
)

// Version information - set during build
var version = "dev"

func main() {
	commands.SetVersion(version)

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
