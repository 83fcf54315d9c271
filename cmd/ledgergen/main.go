package main

import (
	"os"

	"github.com/willfong/ledgergen/internal/cmd"
)

func main() {
	os.Exit(cmd.HandleError(os.Stderr, cmd.Execute()))
}
