package pagination

import (
	"context"
	"errors"
	"testing"
)

func TestWalk(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name       string
		maxPages   int
		pageItems  []int // items per page; index beyond slice means 0
		failOn     int   // page index that fails, -1 for none
		wantPages  int
		wantItems  int
		wantReason StopReason
		wantCalls  []int
	}{
		{
			name:       "reaches page cap",
			maxPages:   3,
			pageItems:  []int{50, 50, 50, 50},
			failOn:     -1,
			wantPages:  3,
			wantItems:  150,
			wantReason: StopMaxPages,
			wantCalls:  []int{0, 1, 2},
		},
		{
			name:       "stops on empty page",
			maxPages:   10,
			pageItems:  []int{2},
			failOn:     -1,
			wantPages:  2,
			wantItems:  2,
			wantReason: StopExhausted,
			wantCalls:  []int{0, 1},
		},
		{
			name:       "stops on error",
			maxPages:   10,
			pageItems:  []int{50, 50, 50},
			failOn:     1,
			wantPages:  2,
			wantItems:  50,
			wantReason: StopError,
			wantCalls:  []int{0, 1},
		},
		{
			name:       "first page fails",
			maxPages:   10,
			failOn:     0,
			wantPages:  1,
			wantItems:  0,
			wantReason: StopError,
			wantCalls:  []int{0},
		},
		{
			name:       "zero page cap",
			maxPages:   0,
			failOn:     -1,
			wantPages:  0,
			wantReason: StopMaxPages,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []int

			summary := Walk(context.Background(), Config{
				MaxPages: tt.maxPages,
				Pause:    func(context.Context) error { return nil },
			}, func(_ context.Context, page int) (int, error) {
				calls = append(calls, page)
				if page == tt.failOn {
					return 0, errBoom
				}
				if page < len(tt.pageItems) {
					return tt.pageItems[page], nil
				}
				return 0, nil
			})

			if summary.Pages != tt.wantPages {
				t.Errorf("Pages = %d, want %d", summary.Pages, tt.wantPages)
			}
			if summary.Items != tt.wantItems {
				t.Errorf("Items = %d, want %d", summary.Items, tt.wantItems)
			}
			if summary.Reason != tt.wantReason {
				t.Errorf("Reason = %s, want %s", summary.Reason, tt.wantReason)
			}
			if tt.wantReason == StopError && !errors.Is(summary.Err, errBoom) {
				t.Errorf("Err = %v, want %v", summary.Err, errBoom)
			}
			if len(calls) != len(tt.wantCalls) {
				t.Fatalf("calls = %v, want %v", calls, tt.wantCalls)
			}
			for i := range calls {
				if calls[i] != tt.wantCalls[i] {
					t.Errorf("calls = %v, want %v", calls, tt.wantCalls)
					break
				}
			}
		})
	}
}

func TestWalk_PausesBetweenPagesOnly(t *testing.T) {
	pauses := 0
	Walk(context.Background(), Config{
		MaxPages: 3,
		Pause: func(context.Context) error {
			pauses++
			return nil
		},
	}, func(context.Context, int) (int, error) {
		return 1, nil
	})

	if pauses != 2 {
		t.Errorf("pauses = %d, want 2", pauses)
	}
}

func TestWalk_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	summary := Walk(ctx, Config{
		MaxPages: 5,
		Pause: func(ctx context.Context) error {
			cancel()
			return ctx.Err()
		},
	}, func(context.Context, int) (int, error) {
		return 10, nil
	})

	if summary.Reason != StopCancelled {
		t.Errorf("Reason = %s, want %s", summary.Reason, StopCancelled)
	}
	if summary.Pages != 1 || summary.Items != 10 {
		t.Errorf("Pages/Items = %d/%d, want 1/10", summary.Pages, summary.Items)
	}
	if !errors.Is(summary.Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", summary.Err)
	}
}

func TestWalk_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	summary := Walk(ctx, Config{MaxPages: 5}, func(context.Context, int) (int, error) {
		called = true
		return 1, nil
	})

	if called {
		t.Error("page function should not run with a cancelled context")
	}
	if summary.Reason != StopCancelled || summary.Pages != 0 {
		t.Errorf("summary = %+v", summary)
	}
}
