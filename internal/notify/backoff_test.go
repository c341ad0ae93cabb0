package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// controlled fails its first two calls
type controlled struct{ calls int }

func (c *controlled) Send(ctx context.Context, title, message string) error {
	c.calls++
	if c.calls < 3 {
		return errors.New("temp")
	}
	return nil
}

func (c *controlled) Name() string { return "controlled" }

func TestBackoffJitterAndSleepHook(t *testing.T) {
	var mu sync.Mutex
	durations := make([]time.Duration, 0)
	oldSleep := sleepHook
	sleepHook = func(d time.Duration) {
		mu.Lock()
		durations = append(durations, d)
		mu.Unlock()
	}
	t.Cleanup(func() { sleepHook = oldSleep })

	oldBase, oldJitter, oldMax := baseBackoff, backoffJitter, maxRetries
	baseBackoff = 10 * time.Millisecond
	backoffJitter = 20 * time.Millisecond
	maxRetries = 3
	defer func() { baseBackoff, backoffJitter, maxRetries = oldBase, oldJitter, oldMax }()

	m := NewMirror()
	m.SetCooldown(0)
	m.Add(&controlled{})
	m.Send(context.Background(), "T", "M")
	wait(t, m)

	mu.Lock()
	defer mu.Unlock()
	// one sleep after each of the two failures
	if len(durations) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(durations))
	}
	if durations[0] < baseBackoff || durations[1] < 2*baseBackoff {
		t.Fatalf("expected exponential backoff from %v, got %v", baseBackoff, durations)
	}
}
