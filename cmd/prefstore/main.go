// Package main is the entry point for the prefstore application.
package main

import (
	"os"

	"github.com/jmylchreest/prefstore/cmd/prefstore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
