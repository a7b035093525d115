package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test-config.ini")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

const minimalValidConfig = `
[api]
api_key = test-key
account_id = acct-123
api_url = https://api.example.test/graphql2

[files]
output_dir = ./logs
sequence_file = sequence.json

[display]
log_level = info
`

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeTempConfig(t, minimalValidConfig)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Execution.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("expected default request timeout %v, got %v", DefaultRequestTimeout, cfg.Execution.RequestTimeout)
	}
	if cfg.Execution.EnableHTTPLogging != DefaultEnableHTTPLogging {
		t.Errorf("expected default enable_http_logging %v, got %v", DefaultEnableHTTPLogging, cfg.Execution.EnableHTTPLogging)
	}
}

func TestLoadConfig_MissingRequiredFields(t *testing.T) {
	path := writeTempConfig(t, `
[files]
output_dir = ./logs
sequence_file = sequence.json
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error for missing api section, got nil")
	}
	if !strings.Contains(err.Error(), "api.api_key") {
		t.Errorf("expected error to mention api.api_key, got: %v", err)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := writeTempConfig(t, minimalValidConfig)

	t.Setenv("CATO_API_API_KEY", "overridden-key")
	t.Setenv("CATO_EXECUTION_REQUEST_TIMEOUT", "45")
	t.Setenv("CATO_EXECUTION_ENABLE_HTTP_LOGGING", "false")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.API.APIKey != "overridden-key" {
		t.Errorf("expected overridden api key, got %q", cfg.API.APIKey)
	}
	if cfg.Execution.RequestTimeout != 45 {
		t.Errorf("expected overridden request timeout 45, got %v", cfg.Execution.RequestTimeout)
	}
	if cfg.Execution.EnableHTTPLogging {
		t.Errorf("expected enable_http_logging overridden to false")
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.ini"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}
