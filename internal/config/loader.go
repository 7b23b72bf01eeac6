package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

var (
	ErrMissingToken   = errors.New("user token is not set (USER_TOKEN or discord.token)")
	ErrMissingChannel = errors.New("channel id is not set (CHANNEL_ID or discord.channelId)")
)

// Job names a command whose requirements Validate checks.
type Job string

const (
	JobExport  Job = "export"
	JobRespond Job = "respond"
	JobGuilds  Job = "guilds"
)

// GetConfigPath returns the default config file path (~/.chatpacer/config.json).
func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".chatpacer", "config.json")
}

// Load reads configuration from a JSON file.
// If path is empty, uses the default config path.
// If the file doesn't exist, returns DefaultConfig().
func Load(path string) (Config, error) {
	if path == "" {
		path = GetConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}

	cfg := DefaultConfig() // start with defaults so zero-value fields get filled
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes configuration to a JSON file.
// If path is empty, uses the default config path.
func Save(cfg Config, path string) error {
	if path == "" {
		path = GetConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// The file may hold a token.
	return os.WriteFile(path, data, 0600)
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped; with no arguments ".env" is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides file settings with environment variables.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.Discord.Token, "USER_TOKEN")
	set(&c.Discord.ChannelID, "CHANNEL_ID")
	set(&c.Discord.APIBase, "CHATPACER_API_BASE")
	set(&c.Responder.ResponsesFile, "RESPONSES_FILE")
	set(&c.Log.Level, "CHATPACER_LOG_LEVEL")
}

// Validate checks that the settings job needs are present.
func (c Config) Validate(job Job) error {
	if c.Discord.Token == "" {
		return ErrMissingToken
	}
	switch job {
	case JobExport, JobRespond:
		if c.Discord.ChannelID == "" {
			return ErrMissingChannel
		}
	}
	if job == JobRespond {
		r := c.Responder
		if r.MaxReplyDelay < r.MinReplyDelay {
			return fmt.Errorf("responder.maxReplyDelay %s is below minReplyDelay %s", r.MaxReplyDelay, r.MinReplyDelay)
		}
		if !validHour(r.WorkingHours.Start) || !validHour(r.WorkingHours.End) {
			return fmt.Errorf("responder.workingHours must be within 0..23, got %d..%d",
				r.WorkingHours.Start, r.WorkingHours.End)
		}
		if _, err := r.WorkingHours.Location(); err != nil {
			return fmt.Errorf("responder.workingHours.timezone: %w", err)
		}
	}
	return nil
}

func validHour(h int) bool { return h >= 0 && h <= 23 }

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if n := len(c.Discord.Token); n > 0 {
		keep := min(4, n/4)
		c.Discord.Token = c.Discord.Token[:keep] + strings.Repeat("*", 8)
	}
	return c
}
