// Package config loads pipeline settings from the environment (plus an
// optional .env file) into one typed struct.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Upstream CRM
	CRMBaseURL string `envconfig:"CRM_URL"`
	CRMAPIKey  string `envconfig:"CRM_API_KEY"`

	// Fetch window: either explicit dates (YYYY-MM-DD) or the last N days.
	StartDate string `envconfig:"START_DATE"`
	EndDate   string `envconfig:"END_DATE"`
	LastDays  int    `envconfig:"LAST_DAYS"`

	Timezone  string `envconfig:"TZ" default:"Europe/Moscow"`
	WorkHours string `envconfig:"WORK_HOURS" default:"10:00-23:00"`
	Channels  string `envconfig:"CHANNELS" default:"whatsapp,instagram"`

	SlowReplySec        int `envconfig:"SLOW_REPLY_SEC" default:"600"`
	ExamplesPerCategory int `envconfig:"EXAMPLES_PER_CATEGORY" default:"3"`

	// Outputs
	WorkbookPath   string `envconfig:"WORKBOOK_PATH" default:"chat_insights.xlsx"`
	SnapshotDBPath string `envconfig:"SNAPSHOT_DB" default:"snapshots.db"`

	// Notification
	SlackEnabled bool   `envconfig:"SLACK_ENABLED"`
	SlackToken   string `envconfig:"SLACK_TOKEN"`
	SlackChannel string `envconfig:"SLACK_CHANNEL"`

	// Supplemental order lookup
	EnableOrderCheck bool `envconfig:"ENABLE_ORDER_CHECK" default:"true"`

	// Fetch guards
	MaxMessagesPerChat int `envconfig:"MAX_MESSAGES_PER_CHAT" default:"500"`
	MaxTotalMessages   int `envconfig:"MAX_TOTAL_MESSAGES" default:"200000"`
	ChatLimit          int `envconfig:"CHAT_LIMIT"`
}

// Load reads .env (if present), then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.CRMBaseURL) == "" {
		return fmt.Errorf("missing env var: CRM_URL")
	}
	if strings.TrimSpace(c.CRMAPIKey) == "" {
		return fmt.Errorf("missing env var: CRM_API_KEY")
	}
	if c.LastDays <= 0 && (c.StartDate == "" || c.EndDate == "") {
		return fmt.Errorf("set LAST_DAYS or both START_DATE and END_DATE")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.SlowReplySec <= 0 {
		return fmt.Errorf("SLOW_REPLY_SEC must be positive")
	}
	if c.ExamplesPerCategory <= 0 {
		return fmt.Errorf("EXAMPLES_PER_CATEGORY must be positive")
	}
	return nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("bad TZ %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DateRange resolves the fetch window. LAST_DAYS wins over explicit dates.
func (c *Config) DateRange(now time.Time) (start, end time.Time, err error) {
	if c.LastDays > 0 {
		end = now
		start = now.AddDate(0, 0, -c.LastDays)
		return start, end, nil
	}
	start, err = time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad START_DATE %q: %w", c.StartDate, err)
	}
	end, err = time.Parse("2006-01-02", c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad END_DATE %q: %w", c.EndDate, err)
	}
	// End date is inclusive.
	end = end.Add(24*time.Hour - time.Second)
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("END_DATE before START_DATE")
	}
	return start, end, nil
}

// ChannelFilter returns the lowercased channel allow-set.
func (c *Config) ChannelFilter() map[string]bool {
	out := map[string]bool{}
	for _, part := range strings.Split(c.Channels, ",") {
		if ch := strings.ToLower(strings.TrimSpace(part)); ch != "" {
			out[ch] = true
		}
	}
	return out
}
