// Package app wires the engine's components together behind a single
// AppRunner, grounded on the teacher's internal/app/app.go: flag parsing,
// config loading, component construction, execution, and the final
// success/failure summary.
package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"catoseq/internal/config"
	"catoseq/internal/logging"
	"catoseq/internal/model"
	"catoseq/internal/orchestrator"
	"catoseq/internal/sequence"
	"catoseq/internal/sink"
	"catoseq/internal/transport"
)

// Application-level errors, mirroring the teacher's sentinel error set so
// main.go can decide whether to print usage.
var (
	ErrUsage          = errors.New("usage error")
	ErrConfigNotFound = errors.New("configuration file not found")
)

// Factory variables, overridable in tests the way the teacher overrides
// newInputReaderFunc/newOutputWriterFunc/newProcessorFunc.
var (
	loadConfigFunc   = config.LoadConfig
	loadSequenceFunc = sequence.Load
	newSinkFunc      = sink.New
	newClientFunc    = func(apiURL, apiKey, accountID string, timeout time.Duration) orchestrator.Executor {
		return transport.New(apiURL, apiKey, accountID, timeout)
	}
	nowFunc = time.Now
)

// AppRunner encapsulates the engine's command-line execution logic.
type AppRunner struct{}

// NewAppRunner creates a new instance of the application runner.
func NewAppRunner() *AppRunner {
	return &AppRunner{}
}

const usageText = `Usage:
  catoseq [options]

Options:
  -config string     INI configuration file (default "config/catoseq.ini")
  -sequence string    Override the sequence document path from config
  -output string       Override the output directory from config
  -dry-run              Load and validate everything, but skip the GraphQL transport
  -loglevel string     Logging level: none, error, warn, info, debug
  -help                  Show this help
`

// Usage prints the command-line help information to the given writer.
func (a *AppRunner) Usage(writer io.Writer) {
	fmt.Fprint(writer, usageText)
}

// Run parses command-line arguments and executes one sequence run,
// returning an error only for a fatal engine condition. Per-step failures
// are recorded in the persisted results and do not make Run return an
// error, matching spec.md §6's exit-code contract.
func (a *AppRunner) Run(args []string) error {
	fs := flag.NewFlagSet("catoseq", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configFile := fs.String("config", "config/catoseq.ini", "INI configuration file")
	sequenceOverride := fs.String("sequence", "", "Override sequence document path from config")
	outputOverride := fs.String("output", "", "Override output directory from config")
	logLevelOverride := fs.String("loglevel", "", "Logging level")
	dryRun := fs.Bool("dry-run", false, "Skip the GraphQL transport, recording what would have been sent")
	helpFlag := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			a.Usage(os.Stderr)
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *helpFlag {
		a.Usage(os.Stderr)
		return nil
	}

	if _, err := os.Stat(*configFile); err != nil {
		if os.IsNotExist(err) {
			logging.Logf(logging.Error, "Config file '%s' not found.", *configFile)
			return ErrConfigNotFound
		}
		return fmt.Errorf("failed to stat config file '%s': %w", *configFile, err)
	}
	cfg, err := loadConfigFunc(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load config '%s': %w", *configFile, err)
	}

	logLevel := cfg.Display.LogLevel
	if *logLevelOverride != "" {
		logLevel = *logLevelOverride
	}
	logging.SetupLogging(logLevel)

	sequenceFile := cfg.Files.SequenceFile
	if *sequenceOverride != "" {
		sequenceFile = *sequenceOverride
	}
	outputDir := cfg.Files.OutputDir
	if *outputOverride != "" {
		outputDir = *outputOverride
	}

	logging.Logf(logging.Info, "Loading sequence document: %s", sequenceFile)
	plan, err := loadSequenceFunc(sequenceFile)
	if err != nil {
		return err
	}
	logging.Logf(logging.Info, "Loaded %d enabled step(s)", len(plan.Steps))

	outputSink, err := newSinkFunc(outputDir)
	if err != nil {
		return err
	}
	now := nowFunc()
	ts := sink.Timestamp(now)

	logFile, err := outputSink.OpenExecutionLog(ts)
	if err != nil {
		return err
	}
	defer logFile.Close()

	client := newClientFunc(cfg.API.APIURL, cfg.API.APIKey, cfg.API.AccountID, time.Duration(cfg.Execution.RequestTimeout*float64(time.Second)))
	if *dryRun {
		logging.Logf(logging.Info, "DRY RUN: using a no-op transport; no GraphQL calls will be made.")
		client = dryRunExecutor{}
	}

	orch := orchestrator.New(client, cfg.API.AccountID)
	results, err := orch.Run(plan)
	if err != nil {
		return fmt.Errorf("execution aborted: %w", err)
	}

	successCount, failureCount := 0, 0
	for _, r := range results {
		if r.Status == "success" {
			successCount++
		} else {
			failureCount++
		}
	}

	resultsPath, err := outputSink.WriteResults(results, ts)
	if err != nil {
		return err
	}

	var httpLogPath string
	if cfg.Execution.EnableHTTPLogging {
		if recorder, ok := client.(interface{ RecordedLogs() []transport.LogRecord }); ok {
			httpLogPath, err = outputSink.WriteHTTPLog(recorder.RecordedLogs(), nowFunc(), ts)
			if err != nil {
				return err
			}
		}
	}

	logging.Logf(logging.Info, "Execution complete: %d succeeded, %d failed.", successCount, failureCount)
	logging.Logf(logging.Info, "Results written to: %s", resultsPath)
	if httpLogPath != "" {
		logging.Logf(logging.Info, "HTTP request log written to: %s", httpLogPath)
	}
	return nil
}

// dryRunExecutor never contacts the network; every step succeeds with a
// marker body recording that it was not actually sent.
type dryRunExecutor struct{}

func (dryRunExecutor) Execute(query string, variables map[string]model.Value) (model.Value, error) {
	return map[string]model.Value{"dry_run": true, "would_send_variables": variables}, nil
}
