package config

// Default values applied when a key is absent from both the INI file and
// its CATO_<SECTION>_<KEY> environment override.
const (
	DefaultAPIURL             = "https://api.catonetworks.com/api/v1/graphql2"
	DefaultRequestTimeout     = 30.0
	DefaultEnableHTTPLogging  = true
	DefaultOutputDir          = "./logs"
	DefaultSequenceFile       = "provisioning_sequence.json"
	DefaultLogLevel           = "info"
)

// EnvPrefix is the prefix used to build an environment variable override
// key for a given section/key pair: CATO_<SECTION>_<KEY>, uppercased.
const EnvPrefix = "CATO"

// APIConfig holds the credentials and endpoint for the remote tenant-scoped
// GraphQL service.
type APIConfig struct {
	// APIKey authenticates every request via the x-api-key header. Required.
	APIKey string
	// AccountID is injected as the "accountId" field into every step's
	// resolved params (spec.md §4.7.1). Required.
	AccountID string
	// APIURL is the HTTPS endpoint the transport adapter posts to.
	APIURL string
}

// ExecutionConfig controls the transport and logging behavior of a run.
type ExecutionConfig struct {
	// RequestTimeout bounds each GraphQL call, in seconds.
	RequestTimeout float64
	// EnableHTTPLogging controls whether the Result/Log Sink persists the
	// http_requests_<ts>.json request/response log.
	EnableHTTPLogging bool
}

// FilesConfig names the sequence document to run and the directory
// persisted outputs are written under.
type FilesConfig struct {
	// OutputDir is where results_<ts>.json, http_requests_<ts>.json, and
	// execution_<ts>.log are written.
	OutputDir string
	// SequenceFile is the path to the sequence document (spec.md §6).
	SequenceFile string
}

// DisplayConfig controls operator-facing verbosity.
type DisplayConfig struct {
	// LogLevel is one of none/error/warn/info/debug (see internal/logging).
	LogLevel string
}

// Config is the fully loaded, defaulted, and validated configuration
// surface described in spec.md §6.
type Config struct {
	API       APIConfig
	Execution ExecutionConfig
	Files     FilesConfig
	Display   DisplayConfig
}
