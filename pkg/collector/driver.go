package collector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TimestampLayout formats the collection start/end columns.
const TimestampLayout = "2006-01-02 15:04:05"

// DefaultQueries are the searches a run performs when none are configured.
var DefaultQueries = []string{
	"data science",
	"аналитик данных",
	"machine learning engineer",
}

// DefaultMaxPages caps each query at 10 pages (about 500 vacancies).
const DefaultMaxPages = 10

// Lister produces the rows for one query.
type Lister interface {
	FetchListings(ctx context.Context, query string, maxPages int) []Row
}

// Run is the outcome of one collection run.
type Run struct {
	ID         uuid.UUID
	Queries    []string
	StartedAt  time.Time
	FinishedAt time.Time

	// Rows in query order, then page order, then item order.
	Rows []Row

	// Totals has one entry per executed query, in execution order. A query
	// listed twice appears twice.
	Totals []QueryTotal
}

// QueryTotal is the row count of one executed query.
type QueryTotal struct {
	Query string
	Rows  int
}

// QueryCount returns how many rows query contributed across all its executions.
func (r *Run) QueryCount(query string) int {
	n := 0
	for _, row := range r.Rows {
		if row.Query == query {
			n++
		}
	}
	return n
}

// Driver runs a list of queries and accumulates their rows.
type Driver struct {
	lister   Lister
	maxPages int
	now      func() time.Time
	logger   zerolog.Logger
}

// NewDriver creates a driver; a non-positive maxPages means DefaultMaxPages.
func NewDriver(lister Lister, maxPages int) *Driver {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Driver{
		lister:   lister,
		maxPages: maxPages,
		now:      time.Now,
		logger:   log.With().Str("component", "driver").Logger(),
	}
}

// WithClock replaces the time source (for testing).
func (d *Driver) WithClock(now func() time.Time) *Driver {
	d.now = now
	return d
}

// Run collects every query in order and tags each row with its query and the
// query's start and end time.
func (d *Driver) Run(ctx context.Context, queries []string) *Run {
	run := &Run{
		ID:        uuid.New(),
		Queries:   append([]string(nil), queries...),
		StartedAt: d.now(),
	}
	logger := d.logger.With().Str("run_id", run.ID.String()).Logger()

	for _, query := range queries {
		started := d.now().Format(TimestampLayout)
		logger.Info().Str("query", query).Str("started_at", started).Msg("Query started")

		rows := d.lister.FetchListings(ctx, query, d.maxPages)

		finished := d.now().Format(TimestampLayout)
		for i := range rows {
			rows[i].Query = query
			rows[i].StartedAt = started
			rows[i].FinishedAt = finished
		}
		run.Rows = append(run.Rows, rows...)
		run.Totals = append(run.Totals, QueryTotal{Query: query, Rows: len(rows)})

		logger.Info().
			Str("query", query).
			Int("vacancies", len(rows)).
			Str("finished_at", finished).
			Msg("Query finished")
	}

	run.FinishedAt = d.now()
	logger.Info().
		Int("queries", len(queries)).
		Int("vacancies", len(run.Rows)).
		Dur("duration", run.FinishedAt.Sub(run.StartedAt)).
		Msg("Run finished")

	return run
}
