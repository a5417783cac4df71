// Package main is the entry point for fleximart-etl.
package main

import (
	"fmt"
	"os"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
