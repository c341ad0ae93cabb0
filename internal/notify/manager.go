// Package notify mirrors staff-facing order events to team chat webhooks.
//
// Delivery is asynchronous and best effort: each service is retried with
// backoff, and an identical message to the same service is suppressed while
// its cooldown lasts.
package notify

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/logging"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/metrics"
)

// DefaultCooldown suppresses repeats of the same message to one service.
var DefaultCooldown = 30 * time.Second

// retry settings (can be tuned in tests)
var maxRetries = 3
var baseBackoff = 100 * time.Millisecond

// backoffJitter adds up to this random duration to backoff
var backoffJitter = 0 * time.Millisecond

// sleepHook is used in tests to avoid sleeping for real
var sleepHook = time.Sleep

// nowHook lets tests move the cooldown clock
var nowHook = time.Now

var httpClient = &http.Client{Timeout: 10 * time.Second}

// Service is a single chat destination.
type Service interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Mirror fans a message out to every configured service. It satisfies
// registry.Broadcaster.
type Mirror struct {
	services []Service
	// lastSent holds sends still inside their cooldown, keyed by service and message
	lastSent map[string]sentEntry
	cooldown time.Duration
	// per-service cooldowns
	serviceCooldowns map[string]time.Duration
	mu               sync.Mutex
	wg               sync.WaitGroup
}

type sentEntry struct {
	service string
	at      time.Time
}

func NewMirror() *Mirror {
	return &Mirror{lastSent: make(map[string]sentEntry), cooldown: DefaultCooldown}
}

// SetServiceCooldown overrides the cooldown for one service (by Service.Name()).
func (m *Mirror) SetServiceCooldown(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.serviceCooldowns == nil {
		m.serviceCooldowns = make(map[string]time.Duration)
	}
	m.serviceCooldowns[name] = d
}

// SetCooldown adjusts the default cooldown.
func (m *Mirror) SetCooldown(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cooldown = d
}

func (m *Mirror) cooldownFor(name string) time.Duration {
	if v, ok := m.serviceCooldowns[name]; ok {
		return v
	}
	return m.cooldown
}

func (m *Mirror) Add(s Service) {
	if s != nil {
		m.services = append(m.services, s)
	}
}

func (m *Mirror) Len() int {
	return len(m.services)
}

// Wait waits for pending sends to complete or until ctx is cancelled.
func (m *Mirror) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send delivers title and message to all services in the background. The
// caller's cancellation does not abort delivery; sends are bounded by the
// HTTP client timeout and the retry budget.
func (m *Mirror) Send(ctx context.Context, title, message string) {
	ctx = context.WithoutCancel(ctx)
	now := nowHook()
	for _, s := range m.services {
		name := s.Name()
		key := name + "\x00" + title + "\x00" + message
		if !m.reserve(name, key, now) {
			logging.Get().Debug().Str("service", name).Msg("skipping duplicate chat message")
			continue
		}
		m.wg.Add(1)
		go func(svc Service) {
			defer m.wg.Done()
			err := m.sendWithRetries(ctx, svc, title, message)
			metrics.IncMirror(name, err == nil)
			if err != nil {
				m.release(key, now)
				logging.Get().Error().Err(err).Str("service", name).Msg("all chat retries failed")
				return
			}
			m.mu.Lock()
			m.lastSent[key] = sentEntry{service: name, at: nowHook()}
			m.mu.Unlock()
		}(s)
	}
}

// reserve claims key for a send starting at now. It fails while an earlier
// send of the same message is in flight or inside its cooldown. Expired
// entries are dropped on the way.
func (m *Mirror) reserve(name, key string, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.lastSent {
		if now.Sub(e.at) >= m.cooldownFor(e.service) {
			delete(m.lastSent, k)
		}
	}
	if _, ok := m.lastSent[key]; ok {
		return false
	}
	m.lastSent[key] = sentEntry{service: name, at: now}
	return true
}

// release drops a reservation made at reservedAt if nothing replaced it.
func (m *Mirror) release(key string, reservedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.lastSent[key]; ok && e.at.Equal(reservedAt) {
		delete(m.lastSent, key)
	}
}

func (m *Mirror) sendWithRetries(ctx context.Context, s Service, title, message string) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.Send(ctx, title, message)
		if err == nil {
			logging.Get().Debug().Str("service", s.Name()).Msg("chat message sent")
			return nil
		}
		lastErr = err
		logging.Get().Warn().Err(err).Str("service", s.Name()).Int("attempt", attempt).Msg("chat attempt failed")
		if attempt == maxRetries {
			break
		}
		d := backoffDuration(attempt)
		slept := make(chan struct{})
		go func() {
			sleepHook(d)
			close(slept)
		}()
		select {
		case <-slept:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func backoffDuration(attempt int) time.Duration {
	d := baseBackoff * time.Duration(1<<uint(attempt-1))
	if backoffJitter > 0 {
		max := big.NewInt(int64(backoffJitter))
		if n, err := crand.Int(crand.Reader, max); err == nil {
			d += time.Duration(n.Int64())
		}
	}
	return d
}

// postJSON is a shared helper used by services
func postJSON(ctx context.Context, url string, data interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
