// Package main provides the iwslt command-line interface.
package main

import (
	"os"

	"github.com/nmtkit/iwslt/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
