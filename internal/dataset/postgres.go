package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"catoseq/internal/logging"
	"catoseq/internal/model"
	"catoseq/internal/util"
)

const defaultQueryTimeout = 30 * time.Second

// pgxConnectFunc allows tests to stub out the real network dial, mirroring
// the teacher's io/postgres.go override hook.
var pgxConnectFunc = pgx.Connect

// PostgresLoader implements Loader for a dataset sourced from a SQL
// query's result set, adapted from the teacher's io/postgres.go
// PostgresReader. Load's path argument is ignored; the connection string
// and query are fixed at construction time.
type PostgresLoader struct {
	ConnString string
	Query      string
}

func NewPostgresLoader(connString, query string) *PostgresLoader {
	return &PostgresLoader{ConnString: connString, Query: query}
}

func (p *PostgresLoader) Load(_ string) (model.Dataset, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	defer cancel()

	expanded := util.ExpandEnvUniversal(p.ConnString)
	conn, err := pgxConnectFunc(ctx, expanded)
	if err != nil {
		return nil, fmt.Errorf("PostgresLoader failed to connect (%s): %w", util.MaskCredentials(expanded), err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, p.Query)
	if err != nil {
		return nil, fmt.Errorf("PostgresLoader failed to execute query '%s': %w", p.Query, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := model.Dataset{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("PostgresLoader failed to scan row: %w", err)
		}
		record := model.Record{}
		for i, fd := range fields {
			if values[i] == nil {
				continue
			}
			record[string(fd.Name)] = values[i]
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("PostgresLoader error during row iteration: %w", err)
	}

	logging.Logf(logging.Info, "PostgresLoader loaded %d records from query", len(out))
	return out, nil
}
