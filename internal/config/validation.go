package config

import (
	"fmt"
	"strings"
)

// Validate checks a loaded Config for the required fields the engine
// cannot run without, aggregating every problem into a single error the
// way the teacher's config/validation.go does.
func Validate(cfg *Config) error {
	var problems []string

	if strings.TrimSpace(cfg.API.APIKey) == "" {
		problems = append(problems, "api.api_key is required")
	}
	if strings.TrimSpace(cfg.API.AccountID) == "" {
		problems = append(problems, "api.account_id is required")
	}
	if strings.TrimSpace(cfg.API.APIURL) == "" {
		problems = append(problems, "api.api_url is required")
	}
	if cfg.Execution.RequestTimeout <= 0 {
		problems = append(problems, "execution.request_timeout must be a positive number of seconds")
	}
	if strings.TrimSpace(cfg.Files.SequenceFile) == "" {
		problems = append(problems, "files.sequence_file is required")
	}
	if strings.TrimSpace(cfg.Files.OutputDir) == "" {
		problems = append(problems, "files.output_dir is required")
	}
	if !isKnownLogLevel(cfg.Display.LogLevel) {
		problems = append(problems, fmt.Sprintf("display.log_level %q is not one of %v", cfg.Display.LogLevel, knownLogLevels))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

var knownLogLevels = []string{"none", "error", "warn", "warning", "info", "debug"}

func isKnownLogLevel(level string) bool {
	lc := strings.ToLower(strings.TrimSpace(level))
	for _, known := range knownLogLevels {
		if lc == known {
			return true
		}
	}
	return false
}
