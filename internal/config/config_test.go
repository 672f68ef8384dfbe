package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		CRMBaseURL:          "https://example.retailcrm.ru",
		CRMAPIKey:           "k",
		LastDays:            7,
		Timezone:            "Europe/Moscow",
		WorkHours:           "10:00-23:00",
		Channels:            "whatsapp,instagram",
		SlowReplySec:        600,
		ExamplesPerCategory: 3,
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := validConfig()
	bad.CRMAPIKey = ""
	if err := bad.Validate(); err == nil {
		t.Error("missing api key accepted")
	}

	bad = validConfig()
	bad.LastDays = 0
	if err := bad.Validate(); err == nil {
		t.Error("no window accepted")
	}

	bad = validConfig()
	bad.LastDays = 0
	bad.StartDate = "2026-08-01"
	bad.EndDate = "2026-08-07"
	if err := bad.Validate(); err != nil {
		t.Errorf("explicit dates rejected: %v", err)
	}

	bad = validConfig()
	bad.Timezone = "Nowhere/Nope"
	if err := bad.Validate(); err == nil {
		t.Error("bad timezone accepted")
	}
}

func TestDateRangeLastDaysWins(t *testing.T) {
	cfg := validConfig()
	cfg.StartDate = "2026-01-01"
	cfg.EndDate = "2026-01-02"

	now := time.Date(2026, 8, 17, 12, 0, 0, 0, time.UTC)
	start, end, err := cfg.DateRange(now)
	if err != nil {
		t.Fatalf("DateRange failed: %v", err)
	}
	if !end.Equal(now) {
		t.Errorf("end = %v, want now", end)
	}
	if !start.Equal(now.AddDate(0, 0, -7)) {
		t.Errorf("start = %v", start)
	}
}

func TestDateRangeExplicitEndInclusive(t *testing.T) {
	cfg := validConfig()
	cfg.LastDays = 0
	cfg.StartDate = "2026-08-01"
	cfg.EndDate = "2026-08-07"

	start, end, err := cfg.DateRange(time.Now())
	if err != nil {
		t.Fatalf("DateRange failed: %v", err)
	}
	if start.Day() != 1 {
		t.Errorf("start = %v", start)
	}
	if end.Day() != 7 || end.Hour() != 23 || end.Minute() != 59 {
		t.Errorf("end must cover the whole final day, got %v", end)
	}

	cfg.EndDate = "2026-07-01"
	if _, _, err := cfg.DateRange(time.Now()); err == nil {
		t.Error("end before start accepted")
	}
}

func TestChannelFilter(t *testing.T) {
	cfg := validConfig()
	cfg.Channels = " WhatsApp , instagram ,, "
	got := cfg.ChannelFilter()
	if len(got) != 2 || !got["whatsapp"] || !got["instagram"] {
		t.Errorf("filter = %v", got)
	}
}
