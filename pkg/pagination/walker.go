package pagination

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StopReason tells why a walk ended.
type StopReason string

const (
	// StopMaxPages means the page cap was reached.
	StopMaxPages StopReason = "max_pages"

	// StopExhausted means a page returned no items.
	StopExhausted StopReason = "exhausted"

	// StopError means the page function returned an error.
	StopError StopReason = "error"

	// StopCancelled means the context ended before the walk finished.
	StopCancelled StopReason = "cancelled"
)

// PageFunc processes one zero-based page and reports how many items it held.
type PageFunc func(ctx context.Context, page int) (items int, err error)

// Config holds walker configuration.
type Config struct {
	// MaxPages is the maximum number of pages requested.
	MaxPages int

	// Pause runs between two pages. Optional.
	Pause func(ctx context.Context) error
}

// Summary describes a finished walk.
type Summary struct {
	// Pages is the number of pages requested, including the one that stopped the walk.
	Pages int

	// Items is the total number of items on non-empty pages.
	Items int

	Duration time.Duration
	Reason   StopReason

	// Err is set when Reason is StopError or StopCancelled.
	Err error
}

// Walk calls fn for pages 0..MaxPages-1 until a stop condition is met.
func Walk(ctx context.Context, cfg Config, fn PageFunc) Summary {
	start := time.Now()
	summary := Summary{Reason: StopMaxPages}

	for page := 0; page < cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			summary.Reason, summary.Err = StopCancelled, err
			break
		}

		summary.Pages++
		items, err := fn(ctx, page)
		if err != nil {
			summary.Reason, summary.Err = StopError, err
			if ctx.Err() != nil {
				summary.Reason = StopCancelled
			}
			break
		}
		if items == 0 {
			summary.Reason = StopExhausted
			break
		}
		summary.Items += items

		if cfg.Pause != nil && page < cfg.MaxPages-1 {
			if err := cfg.Pause(ctx); err != nil {
				summary.Reason, summary.Err = StopCancelled, err
				break
			}
		}
	}

	summary.Duration = time.Since(start)

	log.Debug().
		Int("pages", summary.Pages).
		Int("items", summary.Items).
		Str("reason", string(summary.Reason)).
		Dur("duration", summary.Duration).
		Msg("Pagination finished")

	return summary
}
