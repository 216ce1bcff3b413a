// Package main provides the menagerie CLI: it runs headless play sessions
// against a saved roster and inspects or edits saves.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
