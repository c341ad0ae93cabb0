package notify

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMirrorRetriesAndCooldown(t *testing.T) {
	noSleep(t)
	oldMax := maxRetries
	maxRetries = 3
	defer func() { maxRetries = oldMax }()

	m := NewMirror()
	m.SetCooldown(0)
	m.SetServiceCooldown("controlled", time.Minute)

	ctl := &controlled{}
	m.Add(ctl)
	m.Send(context.Background(), "T", "M")
	wait(t, m)
	// two failures then a success
	if ctl.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", ctl.calls)
	}

	// the same message inside the cooldown is suppressed
	ctl.calls = 0
	m.Send(context.Background(), "T", "M")
	wait(t, m)
	if ctl.calls != 0 {
		t.Fatalf("expected duplicate to be suppressed, got %d attempts", ctl.calls)
	}

	// a different order alert still goes out
	ctl.calls = 2
	m.Send(context.Background(), "T", "M2")
	wait(t, m)
	if ctl.calls != 3 {
		t.Fatalf("expected distinct message to be sent, got %d", ctl.calls)
	}
}

func fakeClock(t *testing.T) *time.Time {
	t.Helper()
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	old := nowHook
	nowHook = func() time.Time { return now }
	t.Cleanup(func() { nowHook = old })
	return &now
}

func (m *Mirror) entries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lastSent)
}

func TestMirrorCooldownEntriesExpire(t *testing.T) {
	noSleep(t)
	now := fakeClock(t)
	m := NewMirror()
	m.SetCooldown(time.Minute)
	s := &fakeService{name: "s"}
	m.Add(s)

	for i := 0; i < 500; i++ {
		m.Send(context.Background(), "New Order Received", fmt.Sprintf("New order #%d", i))
	}
	wait(t, m)
	if m.entries() != 500 {
		t.Fatalf("expected 500 entries inside the cooldown, got %d", m.entries())
	}

	*now = now.Add(2 * time.Minute)
	m.Send(context.Background(), "New Order Received", "New order #9999")
	wait(t, m)
	if m.entries() != 1 {
		t.Fatalf("expected expired entries to be dropped, got %d", m.entries())
	}
	if s.count() != 501 {
		t.Fatalf("expected 501 deliveries, got %d", s.count())
	}
}

type gatedService struct {
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func (g *gatedService) Send(ctx context.Context, title, message string) error {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	<-g.release
	return nil
}

func (g *gatedService) Name() string { return "gated" }

func TestMirrorConcurrentDuplicateSentOnce(t *testing.T) {
	noSleep(t)
	m := NewMirror()
	g := &gatedService{release: make(chan struct{})}
	m.Add(g)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Send(context.Background(), "T", "M")
		}()
	}
	wg.Wait()
	close(g.release)
	wait(t, m)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.calls != 1 {
		t.Fatalf("expected a single delivery while the first send was in flight, got %d", g.calls)
	}
}

func TestMirrorFailedSendReleasesReservation(t *testing.T) {
	noSleep(t)
	m := NewMirror()
	s := &fakeService{name: "s", fail: true}
	m.Add(s)

	m.Send(context.Background(), "T", "M")
	wait(t, m)
	if m.entries() != 0 {
		t.Fatalf("expected failed send to leave no cooldown entry, got %d", m.entries())
	}
	m.Send(context.Background(), "T", "M")
	wait(t, m)
	if s.count() != 2*maxRetries {
		t.Fatalf("expected the retry after failure to go out, got %d attempts", s.count())
	}
}
