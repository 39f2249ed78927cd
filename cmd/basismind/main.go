package main

import (
	"os"

	"github.com/basismind/basismind/cmd/basismind/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
