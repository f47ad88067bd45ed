// Package main is the entry point for the insight CLI binary.
package main

import (
	"os"

	"github.com/roach88/insight/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
