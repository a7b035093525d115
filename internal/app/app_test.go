package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"catoseq/internal/config"
	"catoseq/internal/model"
	"catoseq/internal/orchestrator"
	"catoseq/internal/transport"
)

// resetFactories restores the package's factory variables after a test
// overrides them, the way the teacher's setupTestEnv resets its mocks.
func resetFactories(t *testing.T) {
	t.Helper()
	origLoadConfig := loadConfigFunc
	origLoadSequence := loadSequenceFunc
	origNewSink := newSinkFunc
	origNewClient := newClientFunc
	origNow := nowFunc
	t.Cleanup(func() {
		loadConfigFunc = origLoadConfig
		loadSequenceFunc = origLoadSequence
		newSinkFunc = origNewSink
		newClientFunc = origNewClient
		nowFunc = origNow
	})
}

func writeEmptyFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("placeholder"), 0644); err != nil {
		t.Fatalf("failed to write '%s': %v", path, err)
	}
}

type fakeExecutor struct {
	calls int
}

func (f *fakeExecutor) Execute(query string, variables map[string]model.Value) (model.Value, error) {
	f.calls++
	return map[string]model.Value{"data": "ok"}, nil
}

// RecordedLogs lets fakeExecutor satisfy the same optional interface
// AppRunner.Run checks for to find transport.Client's request/response
// log before handing it to the sink, so the happy
// path test can verify the http log file is written.
func (f *fakeExecutor) RecordedLogs() []transport.LogRecord {
	return []transport.LogRecord{{RequestID: "fake0001", Timestamp: "2026-01-01T00:00:00Z"}}
}

func TestRun_HelpFlagPrintsUsageAndReturnsNil(t *testing.T) {
	a := NewAppRunner()
	err := a.Run([]string{"-help"})
	if err != nil {
		t.Fatalf("expected nil error for -help, got %v", err)
	}
}

func TestRun_ConfigFileNotFound(t *testing.T) {
	a := NewAppRunner()
	err := a.Run([]string{"-config", filepath.Join(t.TempDir(), "missing.ini")})
	if err != ErrConfigNotFound {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestRun_HappyPathWritesResultsAndSummarizes(t *testing.T) {
	resetFactories(t)

	configPath := filepath.Join(t.TempDir(), "catoseq.ini")
	writeEmptyFile(t, configPath)
	outputDir := t.TempDir()

	loadConfigFunc = func(string) (*config.Config, error) {
		return &config.Config{
			API:       config.APIConfig{APIKey: "key", AccountID: "acct-1", APIURL: "https://example.test/graphql2"},
			Execution: config.ExecutionConfig{RequestTimeout: 10, EnableHTTPLogging: true},
			Files:     config.FilesConfig{SequenceFile: "sequence.json", OutputDir: outputDir},
			Display:   config.DisplayConfig{LogLevel: "none"},
		}, nil
	}
	loadSequenceFunc = func(string) (*model.Plan, error) {
		return &model.Plan{
			Steps: []model.Step{
				{StepName: "s1", Operation: "createSite", GraphQLQuery: "q", Params: map[string]model.Value{}},
			},
		}, nil
	}
	exec := &fakeExecutor{}
	newClientFunc = func(apiURL, apiKey, accountID string, timeout time.Duration) orchestrator.Executor {
		return exec
	}
	nowFunc = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	a := NewAppRunner()
	err := a.Run([]string{"-config", configPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.calls != 1 {
		t.Errorf("expected transport called once, got %d", exec.calls)
	}

	resultsPath := filepath.Join(outputDir, "results_20260101_000000.json")
	if _, statErr := os.Stat(resultsPath); statErr != nil {
		t.Errorf("expected results file at %s: %v", resultsPath, statErr)
	}
	httpLogPath := filepath.Join(outputDir, "http_requests_20260101_000000.json")
	if _, statErr := os.Stat(httpLogPath); statErr != nil {
		t.Errorf("expected http log file at %s: %v", httpLogPath, statErr)
	}
}

func TestRun_DryRunSkipsRealTransport(t *testing.T) {
	resetFactories(t)

	configPath := filepath.Join(t.TempDir(), "catoseq.ini")
	writeEmptyFile(t, configPath)
	outputDir := t.TempDir()

	loadConfigFunc = func(string) (*config.Config, error) {
		return &config.Config{
			API:       config.APIConfig{APIKey: "key", AccountID: "acct-1", APIURL: "https://example.test/graphql2"},
			Execution: config.ExecutionConfig{RequestTimeout: 10, EnableHTTPLogging: false},
			Files:     config.FilesConfig{SequenceFile: "sequence.json", OutputDir: outputDir},
			Display:   config.DisplayConfig{LogLevel: "none"},
		}, nil
	}
	loadSequenceFunc = func(string) (*model.Plan, error) {
		return &model.Plan{
			Steps: []model.Step{{StepName: "s1", Operation: "createSite", GraphQLQuery: "q", Params: map[string]model.Value{}}},
		}, nil
	}
	exec := &fakeExecutor{}
	called := false
	newClientFunc = func(apiURL, apiKey, accountID string, timeout time.Duration) orchestrator.Executor {
		called = true
		return exec
	}

	a := NewAppRunner()
	if err := a.Run([]string{"-config", configPath, "-dry-run"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("expected newClientFunc to still be invoked to build the real client before being overridden")
	}
	if exec.calls != 0 {
		t.Errorf("expected the real executor never called in dry-run mode, got %d calls", exec.calls)
	}
}

func TestUsage_WritesUsageText(t *testing.T) {
	var buf bytes.Buffer
	NewAppRunner().Usage(&buf)
	if buf.Len() == 0 {
		t.Fatal("expected non-empty usage text")
	}
}
