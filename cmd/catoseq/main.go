package main

import (
	"errors"
	"fmt"
	"os"

	"catoseq/internal/app"
	"catoseq/internal/logging"
)

// main is the entry point for the catoseq engine. Dependencies are
// constructed and wired inside the app package.
func main() {
	runner := app.NewAppRunner()

	err := runner.Run(os.Args[1:])
	if err != nil {
		printUsage := errors.Is(err, app.ErrUsage) || errors.Is(err, app.ErrConfigNotFound)
		if printUsage {
			fmt.Fprintln(os.Stderr, "")
			runner.Usage(os.Stderr)
		}

		if logging.GetLevel() < logging.Error {
			logging.SetLevel(logging.Error)
		}
		logging.Logf(logging.Error, "catoseq run failed: %v", err)
		os.Exit(1)
	}
}
