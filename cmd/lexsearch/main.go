// Package main provides the entry point for the lexsearch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/lexsearch/cmd/lexsearch/cmd"
	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, lexerrors.FormatForCLI(err))
		os.Exit(1)
	}
}
