// Package main provides the filesorter CLI application.
//
// filesorter watches one directory and moves every new file into a
// subdirectory named after its upper-cased extension.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// version is set during build time.
var version = "dev"

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
