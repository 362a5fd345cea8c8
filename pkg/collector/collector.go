// Package collector gathers hh.ru vacancies into flat rows: it pages through
// search results for a query, enriches each vacancy with its detail record and
// tags the rows of every query in a run.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sternrassler/hh-vacancy-collector/pkg/hh"
	"github.com/Sternrassler/hh-vacancy-collector/pkg/pagination"
	"github.com/Sternrassler/hh-vacancy-collector/pkg/throttle"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// VacancyAPI is the part of the hh.ru API the collector needs.
type VacancyAPI interface {
	SearchVacancies(ctx context.Context, p hh.SearchParams) (*hh.SearchPage, error)
	Vacancy(ctx context.Context, id string) (*hh.VacancyDetail, error)
}

// Config holds the collector configuration.
type Config struct {
	// Area is the hh.ru region filter (113 = Russia, 1 = Moscow, 2 = St. Petersburg).
	Area int

	// PerPage is the page size; hh.ru allows at most 100.
	PerPage int

	// DescriptionFormat controls how descriptions are stored.
	DescriptionFormat DescriptionFormat
}

// DefaultConfig returns the collector defaults: all of Russia, 50 per page, HTML descriptions.
func DefaultConfig() Config {
	return Config{
		Area:              113,
		PerPage:           50,
		DescriptionFormat: DescriptionHTML,
	}
}

// Collector fetches and flattens vacancies for one query at a time.
type Collector struct {
	api    VacancyAPI
	pacer  *throttle.Pacer
	config Config
	logger zerolog.Logger
}

// New creates a collector.
func New(api VacancyAPI, pacer *throttle.Pacer, cfg Config) *Collector {
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultConfig().PerPage
	}
	if cfg.DescriptionFormat == "" {
		cfg.DescriptionFormat = DescriptionHTML
	}
	return &Collector{
		api:    api,
		pacer:  pacer,
		config: cfg,
		logger: log.With().Str("component", "collector").Logger(),
	}
}

// FetchListings pages through the search results for query and returns the
// collected rows in page order. It never fails: a non-200 answer, an empty
// page or a broken page ends pagination and the rows gathered so far are
// returned.
func (c *Collector) FetchListings(ctx context.Context, query string, maxPages int) []Row {
	logger := c.logger.With().Str("query", query).Logger()
	var rows []Row

	summary := pagination.Walk(ctx, pagination.Config{
		MaxPages: maxPages,
		Pause:    c.pacer.AfterPage,
	}, func(ctx context.Context, page int) (int, error) {
		pageRows, items, err := c.collectPage(ctx, logger, query, page, maxPages)
		rows = append(rows, pageRows...)
		return items, err
	})

	logger.Info().
		Int("pages", summary.Pages).
		Int("vacancies", len(rows)).
		Str("elapsed", FormatSeconds(summary.Duration)).
		Str("reason", string(summary.Reason)).
		Msg("Query collection finished")

	return rows
}

// collectPage fetches one search page and builds its rows. The returned rows
// all carry the page duration, including when err is non-nil.
func (c *Collector) collectPage(ctx context.Context, logger zerolog.Logger, query string, page, maxPages int) ([]Row, int, error) {
	start := time.Now()

	result, err := c.api.SearchVacancies(ctx, hh.SearchParams{
		Text:    query,
		Area:    c.config.Area,
		PerPage: c.config.PerPage,
		Page:    page,
	})
	if err != nil {
		if status := hh.StatusCode(err); status != 0 && status != 200 {
			logger.Warn().Int("status", status).Int("page", page+1).Msg("Search request rejected, stopping")
		} else {
			logger.Error().Err(err).Int("page", page+1).Msg("Failed to process page, stopping")
		}
		return nil, 0, err
	}

	items := result.Items
	if len(items) == 0 {
		logger.Info().Int("page", page+1).Msg("No vacancies on page, stopping")
		return nil, 0, nil
	}
	if len(items) > c.config.PerPage {
		logger.Debug().Int("items", len(items)).Int("per_page", c.config.PerPage).Msg("Page larger than requested, truncating")
		items = items[:c.config.PerPage]
	}

	rows := make([]Row, 0, len(items))
	var pauseErr error
	for i, raw := range items {
		if row, ok := c.buildRow(ctx, logger, raw); ok {
			rows = append(rows, row)
		}
		if pauseErr = c.pacer.AfterItem(ctx, i+1); pauseErr != nil {
			break
		}
	}

	label := FormatSeconds(time.Since(start))
	for i := range rows {
		rows[i].PageDuration = label
	}

	logger.Info().
		Int("page", page+1).
		Int("max_pages", maxPages).
		Int("items", len(items)).
		Int("rows", len(rows)).
		Str("duration", label).
		Msg("Page processed")

	if pauseErr != nil {
		return rows, len(items), fmt.Errorf("page %d interrupted: %w", page+1, pauseErr)
	}
	return rows, len(items), nil
}

// buildRow decodes a search item and merges its details. Items that do not
// match the vacancy schema are logged and skipped.
func (c *Collector) buildRow(ctx context.Context, logger zerolog.Logger, raw json.RawMessage) (Row, bool) {
	v, err := hh.DecodeVacancy(raw)
	if err != nil {
		logger.Warn().Err(err).Str("vacancy_id", hh.ItemID(raw)).Msg("Failed to process vacancy, skipping")
		return Row{}, false
	}

	row := RowFromVacancy(v)
	if v.ID != "" {
		details := c.FetchListingDetail(ctx, v.ID)
		row.Skills = details.Skills
		row.Description = details.Description
	}
	return row, true
}

// RowFromVacancy flattens a search item. Absent nested objects yield empty
// strings, an absent salary yields nil bounds and currency.
func RowFromVacancy(v *hh.Vacancy) Row {
	row := Row{
		ID:          v.ID,
		Name:        v.Name,
		Employer:    v.EmployerName(),
		City:        v.AreaName(),
		Experience:  v.ExperienceName(),
		Employment:  v.EmploymentName(),
		PublishedAt: v.PublishedAt,
		URL:         v.AlternateURL,
	}
	if v.Salary != nil {
		row.SalaryFrom = v.Salary.From
		row.SalaryTo = v.Salary.To
		row.Currency = v.Salary.Currency
	}
	return row
}

// FormatSeconds renders d as seconds with two decimals, e.g. "3.41 сек".
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2f сек", d.Seconds())
}
