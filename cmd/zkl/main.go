package main

import (
	"os"

	"zkl/cmd/zkl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
