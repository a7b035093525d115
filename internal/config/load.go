package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
	"github.com/joho/godotenv"

	"catoseq/internal/logging"
)

// LoadConfig reads the INI-style configuration file at filename, applies
// CATO_<SECTION>_<KEY> environment overrides (spec.md §6), fills in
// defaults, and validates the result.
//
// Before the file is parsed, a ".env" file in the current directory (if
// present) is loaded into the process environment so that override
// variables can be supplied without exporting shell variables. A missing
// .env file is not an error.
func LoadConfig(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Logf(logging.Debug, "No .env file loaded: %v", err)
	}

	file, err := ini.Load(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filename, err)
	}

	cfg := &Config{
		API: APIConfig{
			APIKey:    getString(file, "api", "api_key", ""),
			AccountID: getString(file, "api", "account_id", ""),
			APIURL:    getString(file, "api", "api_url", DefaultAPIURL),
		},
		Execution: ExecutionConfig{
			RequestTimeout:    getFloat(file, "execution", "request_timeout", DefaultRequestTimeout),
			EnableHTTPLogging: getBool(file, "execution", "enable_http_logging", DefaultEnableHTTPLogging),
		},
		Files: FilesConfig{
			OutputDir:    getString(file, "files", "output_dir", DefaultOutputDir),
			SequenceFile: getString(file, "files", "sequence_file", DefaultSequenceFile),
		},
		Display: DisplayConfig{
			LogLevel: getString(file, "display", "log_level", DefaultLogLevel),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey builds the CATO_<SECTION>_<KEY> override name for a section/key
// pair, matching the original implementation's ConfigManager.get.
func envKey(section, key string) string {
	return strings.ToUpper(EnvPrefix + "_" + section + "_" + key)
}

// getString resolves a string value: environment override first, then the
// INI file, then fallback.
func getString(file *ini.File, section, key, fallback string) string {
	if v, ok := os.LookupEnv(envKey(section, key)); ok && v != "" {
		return v
	}
	sec := file.Section(section)
	if sec.HasKey(key) {
		if v := sec.Key(key).String(); v != "" {
			return v
		}
	}
	return fallback
}

// getBool mirrors ConfigManager.getboolean: an override value is considered
// true for "true", "1", "yes", "on" (case-insensitive), false otherwise.
func getBool(file *ini.File, section, key string, fallback bool) bool {
	if v, ok := os.LookupEnv(envKey(section, key)); ok && v != "" {
		switch strings.ToLower(v) {
		case "true", "1", "yes", "on":
			return true
		default:
			return false
		}
	}
	sec := file.Section(section)
	if sec.HasKey(key) {
		if b, err := sec.Key(key).Bool(); err == nil {
			return b
		}
	}
	return fallback
}

// getFloat mirrors ConfigManager.getfloat.
func getFloat(file *ini.File, section, key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(envKey(section, key)); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		logging.Logf(logging.Warning, "Invalid float override for %s.%s: %q; using file/default", section, key, v)
	}
	sec := file.Section(section)
	if sec.HasKey(key) {
		if f, err := sec.Key(key).Float64(); err == nil {
			return f
		}
	}
	return fallback
}
