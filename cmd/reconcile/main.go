// Package main is the entry point for the reconcile CLI.
package main

import (
	"os"

	"github.com/openledger-dev/bank-reconcile/cmd/reconcile/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
