// Package storage persists collection runs to PostgreSQL.
//
// The CSV file remains the primary output; the Postgres sink is optional and
// keeps every run side by side, tagged with its run ID.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/hh-vacancy-collector/pkg/collector"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Table is the destination table.
const Table = "hh_vacancies"

// Columns are the destination columns in CopyFrom order.
var Columns = []string{
	"run_id",
	"vacancy_id",
	"name",
	"employer",
	"salary_from",
	"salary_to",
	"currency",
	"city",
	"experience",
	"employment",
	"published_at",
	"url",
	"page_duration",
	"skills",
	"description",
	"query",
	"started_at",
	"finished_at",
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS hh_vacancies (
	id BIGSERIAL PRIMARY KEY,
	run_id UUID NOT NULL,
	vacancy_id TEXT NOT NULL,
	name TEXT NOT NULL,
	employer TEXT,
	salary_from DOUBLE PRECISION,
	salary_to DOUBLE PRECISION,
	currency TEXT,
	city TEXT,
	experience TEXT,
	employment TEXT,
	published_at TEXT,
	url TEXT,
	page_duration TEXT,
	skills TEXT,
	description TEXT,
	query TEXT NOT NULL,
	started_at TIMESTAMP,
	finished_at TIMESTAMP,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_hh_vacancies_run_id ON hh_vacancies(run_id);
CREATE INDEX IF NOT EXISTS idx_hh_vacancies_vacancy_id ON hh_vacancies(vacancy_id);
`

// PostgresWriter copies run rows into hh_vacancies.
type PostgresWriter struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresWriter connects to dsn and verifies the connection.
func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &PostgresWriter{
		pool:   pool,
		logger: log.With().Str("component", "storage").Logger(),
	}, nil
}

// Close releases the connection pool.
func (w *PostgresWriter) Close() {
	if w.pool != nil {
		w.pool.Close()
	}
}

// EnsureSchema creates the table and its indexes if missing.
func (w *PostgresWriter) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := w.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// WriteRun copies all rows of run in a single COPY and returns the number of
// rows written.
func (w *PostgresWriter) WriteRun(ctx context.Context, run *collector.Run) (int64, error) {
	if len(run.Rows) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	n, err := w.pool.CopyFrom(ctx,
		pgx.Identifier{Table},
		Columns,
		pgx.CopyFromSlice(len(run.Rows), func(i int) ([]any, error) {
			return rowValues(run, run.Rows[i]), nil
		}),
	)
	if err != nil {
		return n, fmt.Errorf("copy into %s failed: %w", Table, err)
	}

	w.logger.Info().
		Str("run_id", run.ID.String()).
		Int64("rows", n).
		Msg("Run stored in Postgres")
	return n, nil
}

// CountRun returns how many rows are stored for run.
func (w *PostgresWriter) CountRun(ctx context.Context, run *collector.Run) (int64, error) {
	var n int64
	err := w.pool.QueryRow(ctx, "SELECT count(*) FROM hh_vacancies WHERE run_id = $1", run.ID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count rows for run %s: %w", run.ID, err)
	}
	return n, nil
}

// rowValues maps a row to Columns order. Null salary and currency stay nil;
// collection timestamps that do not parse are stored as NULL.
func rowValues(run *collector.Run, row collector.Row) []any {
	return []any{
		run.ID,
		row.ID,
		row.Name,
		row.Employer,
		row.SalaryFrom,
		row.SalaryTo,
		row.Currency,
		row.City,
		row.Experience,
		row.Employment,
		row.PublishedAt,
		row.URL,
		row.PageDuration,
		row.Skills,
		row.Description,
		row.Query,
		parseTimestamp(row.StartedAt),
		parseTimestamp(row.FinishedAt),
	}
}

func parseTimestamp(s string) any {
	t, err := time.ParseInLocation(collector.TimestampLayout, s, time.Local)
	if err != nil {
		return nil
	}
	return t
}
