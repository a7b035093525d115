package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// postgresQuerySeparator joins a postgres:// DSN and its query into one
// descriptor string: "postgres://dsn#SELECT ...". There is no standard
// encoding for this in the pack; "#" was chosen because it cannot appear
// unescaped in a DSN or be mistaken for a file extension.
const postgresQuerySeparator = "#"

// ForPath selects a Loader purely by file extension (or the postgres://
// prefix); it is ForPathWithType with no explicit type override.
func ForPath(path string) (Loader, error) {
	return ForPathWithType(path, "")
}

// ForPathWithType selects a Loader the way the teacher's io/factory.go
// selects an InputReader by a configured type string: explicitType, when
// non-empty, wins outright (spec.md §3's "by file extension (or an explicit
// type on a per-step/master data source descriptor)"); otherwise the
// decision falls back to sniffing path. A "postgres://" or "postgresql://"
// descriptor always routes to PostgresLoader regardless of explicitType,
// since that prefix is unambiguous and carries its own query suffix; see
// postgresQuerySeparator for its connection-string/query encoding. CSV is
// the default for an unrecognized or missing extension, matching the
// engine's CSV-first origins (spec.md §4.1).
func ForPathWithType(path, explicitType string) (Loader, error) {
	if strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://") {
		dsn, query, ok := strings.Cut(path, postgresQuerySeparator)
		if !ok || strings.TrimSpace(query) == "" {
			return nil, fmt.Errorf("postgres dataset descriptor '%s' is missing a '%s<query>' suffix", path, postgresQuerySeparator)
		}
		return NewPostgresLoader(dsn, query), nil
	}

	kind := strings.ToLower(strings.TrimSpace(explicitType))
	if kind == "" {
		kind = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	switch kind {
	case "csv", "":
		return CSVLoader{}, nil
	case "json":
		return JSONLoader{}, nil
	case "yaml", "yml":
		return YAMLLoader{}, nil
	case "xlsx":
		return XLSXLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported dataset type '%s' for '%s'", kind, path)
	}
}
