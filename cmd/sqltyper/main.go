// Package main provides the CLI entry point for sqltyper.
package main

import (
	"os"

	"github.com/lenguyenthanh/sqltyper/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
