package memory

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestStorage_CounterStartsAtZero(t *testing.T) {
	storage := New()

	count, err := storage.GetCount(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0, got %d", count)
	}
}

func TestStorage_IncrementIsMonotonic(t *testing.T) {
	storage := New()
	ctx := context.Background()

	for want := int64(1); want <= 10; want++ {
		got, err := storage.IncrementCount(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestStorage_ConcurrentIncrementsAreNotLost(t *testing.T) {
	storage := New()
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if _, err := storage.IncrementCount(ctx); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := storage.GetCount(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != goroutines {
		t.Fatalf("expected %d, got %d", goroutines, count)
	}
}

func TestStorage_MarkerExpires(t *testing.T) {
	current := time.Now()
	storage := New(WithClock(func() time.Time { return current }))
	ctx := context.Background()

	if err := storage.SetMarker(ctx, "1.2.3.4", 24*time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	has, err := storage.HasMarker(ctx, "1.2.3.4")
	if err != nil || !has {
		t.Fatalf("expected marker present, has=%v err=%v", has, err)
	}

	current = current.Add(24*time.Hour + time.Second)

	has, err = storage.HasMarker(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Fatalf("expected marker expired after TTL")
	}
}

func TestStorage_WindowSlidesWithTime(t *testing.T) {
	current := time.Now()
	storage := New(WithClock(func() time.Time { return current }))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		count, _, err := storage.CountWindow(ctx, "likes:x", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != int64(i+1) {
			t.Fatalf("expected count %d, got %d", i+1, count)
		}
		current = current.Add(time.Second)
	}

	// One minute later the earlier events have aged out.
	current = current.Add(time.Minute)

	count, oldest, err := storage.CountWindow(ctx, "likes:x", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected only the fresh event in the window, got %d", count)
	}
	if !oldest.Equal(current) {
		t.Fatalf("expected oldest == the fresh event, got %v", oldest)
	}
}
