package main

import (
	"os"

	"aws-alias/cmd/aws-alias/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(commands.ExitStatus(err, os.Stderr))
	}
}
