// Command calc is a four-function calculator with a persisted history.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/calc/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
