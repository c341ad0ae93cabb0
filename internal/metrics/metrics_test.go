package metrics

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMetricsCounters(t *testing.T) {
	s := GetSnapshot()

	IncChannel(ChannelInApp, true)
	IncChannel(ChannelInApp, false)
	IncChannel(ChannelSMS, true)
	IncChannel(ChannelSMS, false)
	IncChannel(ChannelEmail, true)
	IncChannel(ChannelEmail, false)
	IncSkipped(ChannelSMS)
	IncRecipientNotFound()
	AddFanOutRecipients(3)
	IncMirror("Slack", true)
	IncMirror("Slack", false)
	SetLastDispatch(time.Unix(123456789, 0))

	s2 := GetSnapshot()
	if s2.InAppSent != s.InAppSent+1 || s2.InAppFailed != s.InAppFailed+1 {
		t.Fatalf("unexpected in-app counters: %+v", s2)
	}
	if s2.SMSSent != s.SMSSent+1 || s2.SMSFailed != s.SMSFailed+1 {
		t.Fatalf("unexpected sms counters: %+v", s2)
	}
	if s2.EmailSent != s.EmailSent+1 || s2.EmailFailed != s.EmailFailed+1 {
		t.Fatalf("unexpected email counters: %+v", s2)
	}
	if s2.Skipped != s.Skipped+1 {
		t.Fatalf("expected skipped to increment by 1, got %d", s2.Skipped)
	}
	if s2.RecipientNotFound != s.RecipientNotFound+1 {
		t.Fatalf("expected recipient_not_found to increment by 1, got %d", s2.RecipientNotFound)
	}
	if s2.FanOutRecipients != s.FanOutRecipients+3 {
		t.Fatalf("expected fanout recipients +3, got %d", s2.FanOutRecipients)
	}
	if s2.MirrorSent != s.MirrorSent+1 || s2.MirrorFailed != s.MirrorFailed+1 {
		t.Fatalf("unexpected mirror counters: %+v", s2)
	}
	if s2.LastDispatch != 123456789 {
		t.Fatalf("expected last dispatch timestamp 123456789, got %d", s2.LastDispatch)
	}
	if s2.LastDispatchHuman == "" {
		t.Fatal("expected non-empty LastDispatchHuman")
	}
}

func TestObserveDispatch(t *testing.T) {
	ObserveDispatch("order_confirmation", 150*time.Millisecond)
	if GetSnapshot().LastDispatch == 0 {
		t.Fatal("expected ObserveDispatch to stamp the last dispatch time")
	}
}

func TestPromHandler(t *testing.T) {
	if PromHandler() == nil {
		t.Fatal("PromHandler returned nil")
	}
}

func TestJSONHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/status", nil))
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	var snap StatsSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("invalid snapshot json: %v", err)
	}
}
