package throttle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingSleep struct {
	calls []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return nil
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ItemEvery != 5 {
		t.Errorf("ItemEvery = %d, want 5", cfg.ItemEvery)
	}
	if cfg.ItemPause != 100*time.Millisecond {
		t.Errorf("ItemPause = %v, want 100ms", cfg.ItemPause)
	}
	if cfg.PagePause != 500*time.Millisecond {
		t.Errorf("PagePause = %v, want 500ms", cfg.PagePause)
	}
}

func TestAfterItem(t *testing.T) {
	rec := &recordingSleep{}
	pacer := NewPacer(DefaultConfig(), zerolog.Nop()).WithSleep(rec.sleep)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		if err := pacer.AfterItem(ctx, i); err != nil {
			t.Fatalf("AfterItem(%d) error = %v", i, err)
		}
	}

	if len(rec.calls) != 2 {
		t.Fatalf("pauses = %d, want 2 (after items 5 and 10)", len(rec.calls))
	}
	for _, d := range rec.calls {
		if d != 100*time.Millisecond {
			t.Errorf("pause = %v, want 100ms", d)
		}
	}
}

func TestAfterItem_Disabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "every zero", cfg: Config{ItemEvery: 0, ItemPause: time.Second}},
		{name: "zero pause", cfg: Config{ItemEvery: 1, ItemPause: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSleep{}
			pacer := NewPacer(tt.cfg, zerolog.Nop()).WithSleep(rec.sleep)
			for i := 0; i <= 10; i++ {
				_ = pacer.AfterItem(context.Background(), i)
			}
			if len(rec.calls) != 0 {
				t.Errorf("pauses = %d, want 0", len(rec.calls))
			}
		})
	}
}

func TestAfterPage(t *testing.T) {
	rec := &recordingSleep{}
	pacer := NewPacer(DefaultConfig(), zerolog.Nop()).WithSleep(rec.sleep)

	if err := pacer.AfterPage(context.Background()); err != nil {
		t.Fatalf("AfterPage() error = %v", err)
	}
	if len(rec.calls) != 1 || rec.calls[0] != 500*time.Millisecond {
		t.Errorf("pauses = %v, want [500ms]", rec.calls)
	}
}

func TestSleep(t *testing.T) {
	start := time.Now()
	if err := Sleep(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("Sleep() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Sleep returned after %v, want >= 20ms", elapsed)
	}
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep() error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancelled Sleep took %v", elapsed)
	}
}
