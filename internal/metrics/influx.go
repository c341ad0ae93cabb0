package metrics

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/logging"
)

// StartInfluxPusher starts a background loop to push dispatch counters to InfluxDB.
func StartInfluxPusher(ctx context.Context, baseURL, token, org, bucket string, interval time.Duration) {
	if baseURL == "" || bucket == "" {
		return
	}
	logging.Get().Info().Str("url", baseURL).Dur("interval", interval).Msg("starting influxdb pusher")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	client := &http.Client{Timeout: 5 * time.Second}
	writeURL := influxWriteURL(baseURL, org, bucket)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pushToInflux(client, writeURL, token)
		}
	}
}

func influxWriteURL(base, org, bucket string) string {
	return fmt.Sprintf("%s/api/v2/write?org=%s&bucket=%s&precision=s", strings.TrimRight(base, "/"), url.QueryEscape(org), url.QueryEscape(bucket))
}

// influxLine renders the snapshot in line protocol:
// notify in_app_sent=1i,in_app_failed=0i,... 1678888888
func influxLine(s StatsSnapshot, now time.Time) string {
	return fmt.Sprintf(
		"notify in_app_sent=%di,in_app_failed=%di,sms_sent=%di,sms_failed=%di,email_sent=%di,email_failed=%di,skipped=%di,recipient_not_found=%di,last_dispatch=%di %d",
		s.InAppSent, s.InAppFailed, s.SMSSent, s.SMSFailed, s.EmailSent, s.EmailFailed, s.Skipped, s.RecipientNotFound, s.LastDispatch, now.Unix(),
	)
}

func pushToInflux(client *http.Client, writeURL, token string) {
	lines := influxLine(GetSnapshot(), time.Now())

	req, err := http.NewRequest("POST", writeURL, bytes.NewReader([]byte(lines)))
	if err != nil {
		logging.Get().Error().Err(err).Msg("influxdb request creation failed")
		return
	}

	req.Header.Set("Authorization", "Token "+token)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := client.Do(req)
	if err != nil {
		logging.Get().Error().Err(err).Msg("influxdb push failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logging.Get().Warn().Int("status", resp.StatusCode).Msg("influxdb rejected metrics")
	}
}
