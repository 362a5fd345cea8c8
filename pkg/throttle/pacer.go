// Package throttle paces requests to hh.ru with fixed pauses: a short one
// after every N vacancy detail calls and a longer one between search pages.
package throttle

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var hhThrottlePausesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hh_throttle_pauses_total",
	Help: "Total number of throttle pauses by kind",
}, []string{"kind"})

// Pause kinds used as metric labels.
const (
	KindItem = "item"
	KindPage = "page"
)

// Config holds the pause schedule.
type Config struct {
	// ItemEvery pauses after every ItemEvery-th item of a page (1-based index).
	// Zero disables item pauses.
	ItemEvery int

	// ItemPause is the pause after every ItemEvery-th item.
	ItemPause time.Duration

	// PagePause is the pause after each processed page.
	PagePause time.Duration
}

// DefaultConfig returns the schedule the collector has always used.
func DefaultConfig() Config {
	return Config{
		ItemEvery: 5,
		ItemPause: 100 * time.Millisecond,
		PagePause: 500 * time.Millisecond,
	}
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Pacer applies the pause schedule.
type Pacer struct {
	config Config
	sleep  SleepFunc
	logger zerolog.Logger
}

// NewPacer creates a pacer using real sleeps.
func NewPacer(cfg Config, logger zerolog.Logger) *Pacer {
	return &Pacer{
		config: cfg,
		sleep:  Sleep,
		logger: logger,
	}
}

// WithSleep replaces the sleep function (for testing).
func (p *Pacer) WithSleep(fn SleepFunc) *Pacer {
	p.sleep = fn
	return p
}

// Config returns the pause schedule.
func (p *Pacer) Config() Config {
	return p.config
}

// AfterItem pauses when index (1-based, counting every item on the page,
// including ones that failed) is a multiple of ItemEvery.
func (p *Pacer) AfterItem(ctx context.Context, index int) error {
	if p.config.ItemEvery <= 0 || index <= 0 || index%p.config.ItemEvery != 0 {
		return nil
	}
	return p.pause(ctx, KindItem, p.config.ItemPause)
}

// AfterPage pauses between pages.
func (p *Pacer) AfterPage(ctx context.Context) error {
	return p.pause(ctx, KindPage, p.config.PagePause)
}

func (p *Pacer) pause(ctx context.Context, kind string, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	hhThrottlePausesTotal.WithLabelValues(kind).Inc()
	p.logger.Debug().Str("kind", kind).Dur("pause", d).Msg("Throttle pause")
	return p.sleep(ctx, d)
}

// Sleep waits for d, returning early with ctx.Err() when ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
