package main

import (
	"fmt"
	"os"

	"github.com/roach88/signoff/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands print their own formatted output; the ExitError here
		// carries the exit code and a terse summary for stderr.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
