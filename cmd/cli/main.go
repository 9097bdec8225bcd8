// Package main is the entry point for the colident CLI binary.
package main

import (
	"os"

	cli "colident/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
