package main

import (
	"os"

	"github.com/propledger/ledgercore/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
