// Package main provides the admingrid CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/admingrid/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
