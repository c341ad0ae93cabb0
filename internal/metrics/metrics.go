// Package metrics provides counters, Prometheus collectors, and HTTP
// handlers for exporting notification dispatch metrics.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Channel names used as metric labels.
const (
	ChannelInApp = "in_app"
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// 1. Internal State (Source of Truth)
var (
	inAppSent         int64
	inAppFailed       int64
	smsSent           int64
	smsFailed         int64
	emailSent         int64
	emailFailed       int64
	skipped           int64
	recipientNotFound int64
	fanOutRecipients  int64
	mirrorSent        int64
	mirrorFailed      int64
	lastDispatch      int64
)

const counterInc int64 = 1

// 2. Prometheus Collectors
var (
	promChannelAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_channel_attempts_total",
			Help: "Channel dispatch attempts by channel and outcome",
		},
		[]string{"channel", "status"},
	)
	promSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_channel_skipped_total",
			Help: "Channels skipped because options or contact info ruled them out",
		},
		[]string{"channel"},
	)
	promRecipientNotFound = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_recipient_not_found_total",
			Help: "Notifications dropped because the recipient could not be resolved",
		},
	)
	promFanOutRecipients = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_fanout_recipients_total",
			Help: "Recipients processed by multi-recipient notifications",
		},
	)
	promDispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "notify_dispatch_duration_seconds",
			Help: "Duration of a notification operation by event type",
			Buckets: []float64{
				0.05,
				0.1,
				0.25,
				0.5,
				1,
				2,
				5,
				10,
			},
		},
		[]string{"event"},
	)
	promMirror = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_ops_mirror_total",
			Help: "Team chat mirror deliveries by service and outcome",
		},
		[]string{"service", "status"},
	)
	promLastDispatch = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notify_last_dispatch_timestamp_seconds",
			Help: "Unix timestamp of the last notification operation",
		},
	)
)

func init() {
	prometheus.MustRegister(
		promChannelAttempts,
		promSkipped,
		promRecipientNotFound,
		promFanOutRecipients,
		promDispatchDuration,
		promMirror,
		promLastDispatch,
	)
}

// 3. Public API (Updates both Atomic and Prometheus)

// IncChannel records one attempt on a channel.
func IncChannel(channel string, ok bool) {
	status := "success"
	if !ok {
		status = "failure"
	}
	switch channel {
	case ChannelInApp:
		bump(ok, &inAppSent, &inAppFailed)
	case ChannelSMS:
		bump(ok, &smsSent, &smsFailed)
	case ChannelEmail:
		bump(ok, &emailSent, &emailFailed)
	}
	promChannelAttempts.WithLabelValues(channel, status).Inc()
}

func bump(ok bool, sent, failed *int64) {
	if ok {
		atomic.AddInt64(sent, counterInc)
		return
	}
	atomic.AddInt64(failed, counterInc)
}

// IncSkipped records a channel that was not attempted.
func IncSkipped(channel string) {
	atomic.AddInt64(&skipped, counterInc)
	promSkipped.WithLabelValues(channel).Inc()
}

// IncRecipientNotFound increments the counter for unresolvable recipients.
func IncRecipientNotFound() {
	atomic.AddInt64(&recipientNotFound, counterInc)
	promRecipientNotFound.Inc()
}

// AddFanOutRecipients adds n to the fan-out recipient counter.
func AddFanOutRecipients(n int) {
	atomic.AddInt64(&fanOutRecipients, int64(n))
	promFanOutRecipients.Add(float64(n))
}

// IncMirror records one team chat delivery after retries.
func IncMirror(service string, ok bool) {
	status := "success"
	if !ok {
		status = "failure"
	}
	bump(ok, &mirrorSent, &mirrorFailed)
	promMirror.WithLabelValues(service, status).Inc()
}

// ObserveDispatch records how long an operation took and stamps the last
// dispatch time.
func ObserveDispatch(event string, d time.Duration) {
	promDispatchDuration.WithLabelValues(event).Observe(d.Seconds())
	SetLastDispatch(time.Now())
}

// SetLastDispatch stores the provided time as the last dispatch timestamp.
func SetLastDispatch(t time.Time) {
	atomic.StoreInt64(&lastDispatch, t.Unix())
	promLastDispatch.Set(float64(t.Unix()))
}

// 4. JSON Snapshot Struct

// StatsSnapshot is a snapshot of metrics for JSON encoding.
type StatsSnapshot struct {
	InAppSent         int64  `json:"in_app_sent"`
	InAppFailed       int64  `json:"in_app_failed"`
	SMSSent           int64  `json:"sms_sent"`
	SMSFailed         int64  `json:"sms_failed"`
	EmailSent         int64  `json:"email_sent"`
	EmailFailed       int64  `json:"email_failed"`
	Skipped           int64  `json:"skipped"`
	RecipientNotFound int64  `json:"recipient_not_found"`
	FanOutRecipients  int64  `json:"fanout_recipients"`
	MirrorSent        int64  `json:"mirror_sent"`
	MirrorFailed      int64  `json:"mirror_failed"`
	LastDispatch      int64  `json:"last_dispatch_timestamp"`
	LastDispatchHuman string `json:"last_dispatch_human"`
}

// GetSnapshot returns the current values of all internal counters.
func GetSnapshot() StatsSnapshot {
	ts := atomic.LoadInt64(&lastDispatch)
	return StatsSnapshot{
		InAppSent:         atomic.LoadInt64(&inAppSent),
		InAppFailed:       atomic.LoadInt64(&inAppFailed),
		SMSSent:           atomic.LoadInt64(&smsSent),
		SMSFailed:         atomic.LoadInt64(&smsFailed),
		EmailSent:         atomic.LoadInt64(&emailSent),
		EmailFailed:       atomic.LoadInt64(&emailFailed),
		Skipped:           atomic.LoadInt64(&skipped),
		RecipientNotFound: atomic.LoadInt64(&recipientNotFound),
		FanOutRecipients:  atomic.LoadInt64(&fanOutRecipients),
		MirrorSent:        atomic.LoadInt64(&mirrorSent),
		MirrorFailed:      atomic.LoadInt64(&mirrorFailed),
		LastDispatch:      ts,
		LastDispatchHuman: time.Unix(ts, 0).UTC().Format(time.RFC3339),
	}
}

// 5. Handlers

// PromHandler returns an HTTP handler that exposes Prometheus metrics.
func PromHandler() http.Handler { return promhttp.Handler() }

// JSONHandler serves the current metrics as a JSON-encoded StatsSnapshot.
func JSONHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GetSnapshot())
	})
}
