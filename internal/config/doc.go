// Package config handles configuration loading, saving, and schema definition.
package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Config is the top-level chatpacer configuration.
// Uses json tags in camelCase to match the JSON config file format.
type Config struct {
	Discord   DiscordConfig   `json:"discord"`
	Export    ExportConfig    `json:"export"`
	Responder ResponderConfig `json:"responder"`
	Log       LogConfig       `json:"log"`
}

// DiscordConfig holds the account and API settings shared by every command.
type DiscordConfig struct {
	Token     string   `json:"token,omitempty"`     // User token (USER_TOKEN)
	ChannelID string   `json:"channelId,omitempty"` // Default channel (CHANNEL_ID)
	APIBase   string   `json:"apiBase,omitempty"`   // REST root (CHATPACER_API_BASE)
	UserAgent string   `json:"userAgent,omitempty"`
	Timeout   Duration `json:"timeout,omitempty"`
}

// ExportConfig holds history export settings.
type ExportConfig struct {
	OutputDir   string   `json:"outputDir,omitempty"`
	Format      string   `json:"format,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	PageSize    int      `json:"pageSize,omitempty"`
	MaxRequests int      `json:"maxRequests,omitempty"`
	PageDelay   Duration `json:"pageDelay,omitempty"`
}

// ResponderConfig holds auto-responder settings.
type ResponderConfig struct {
	ResponsesFile   string       `json:"responsesFile,omitempty"` // Path or redis:// URL (RESPONSES_FILE)
	ReloadInterval  Duration     `json:"reloadInterval,omitempty"`
	WatchRules      bool         `json:"watchRules,omitempty"`
	PollLimit       int          `json:"pollLimit,omitempty"`
	PollInterval    Duration     `json:"pollInterval,omitempty"`
	MinReplyDelay   Duration     `json:"minReplyDelay,omitempty"`
	MaxReplyDelay   Duration     `json:"maxReplyDelay,omitempty"`
	UserCooldown    Duration     `json:"userCooldown,omitempty"`
	ChannelCooldown Duration     `json:"channelCooldown,omitempty"`
	WorkingHours    HoursConfig  `json:"workingHours"`
	Typing          TypingConfig `json:"typing"`
}

// HoursConfig is the daily reply window. Timezone is an IANA name; empty
// means the host's local zone.
type HoursConfig struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Timezone string `json:"timezone,omitempty"`
}

// Location resolves Timezone.
func (h HoursConfig) Location() (*time.Location, error) {
	if h.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(h.Timezone)
}

// TypingConfig holds typing simulation settings.
type TypingConfig struct {
	PerChar  Duration `json:"perChar,omitempty"`
	Variance float64  `json:"variance,omitempty"`
	Min      Duration `json:"min,omitempty"`
	Max      Duration `json:"max,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `json:"level,omitempty"` // debug, info, warn, error (CHATPACER_LOG_LEVEL)
	Development bool   `json:"development,omitempty"`
}

// Duration is a time.Duration that reads either a Go duration string ("90s",
// "1m30s") or a plain number of seconds, and writes the string form.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			*d = Duration(n * float64(time.Second))
			return nil
		}
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid duration %s", b)
	}
	*d = Duration(n * float64(time.Second))
	return nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Discord: DiscordConfig{
			APIBase: "https://discord.com/api/v9",
			Timeout: Duration(30 * time.Second),
		},
		Export: ExportConfig{
			OutputDir:   "exports",
			Format:      "json",
			Limit:       1000,
			PageSize:    100,
			MaxRequests: 50,
			PageDelay:   Duration(500 * time.Millisecond),
		},
		Responder: ResponderConfig{
			ResponsesFile:   "responses.json",
			ReloadInterval:  Duration(time.Minute),
			WatchRules:      true,
			PollLimit:       10,
			PollInterval:    Duration(time.Second),
			MinReplyDelay:   Duration(15 * time.Second),
			MaxReplyDelay:   Duration(600 * time.Second),
			UserCooldown:    Duration(180 * time.Second),
			ChannelCooldown: Duration(60 * time.Second),
			WorkingHours:    HoursConfig{Start: 8, End: 22},
			Typing: TypingConfig{
				PerChar:  Duration(100 * time.Millisecond),
				Variance: 0.05,
				Min:      Duration(time.Second),
				Max:      Duration(5 * time.Second),
			},
		},
		Log: LogConfig{Level: "info"},
	}
}
