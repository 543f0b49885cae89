package main

import (
	"os"

	"confshelf/cmd/confshelf/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
