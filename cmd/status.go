package cmd

import (
	"fmt"
	"strings"

	"github.com/dayuer/chatpacer/internal/config"
	"github.com/dayuer/chatpacer/internal/export"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show chatpacer configuration",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.GetConfigPath()
	}
	c := cfg.Redacted()

	fmt.Println("🤖 chatpacer Status")
	fmt.Println()
	fmt.Printf("Config: %s\n", path)
	fmt.Printf("API: %s\n", c.Discord.APIBase)
	fmt.Printf("Token: %s\n", check(c.Discord.Token))
	fmt.Printf("Channel: %s\n", orNone(c.Discord.ChannelID))

	fmt.Println("\nExport:")
	fmt.Printf("  Output: %s\n", c.Export.OutputDir)
	fmt.Printf("  Format: %s (available: %s)\n", c.Export.Format, strings.Join(export.Formats(), ", "))
	fmt.Printf("  Limit: %d, %d per page, at most %d requests, %s between pages\n",
		c.Export.Limit, c.Export.PageSize, c.Export.MaxRequests, c.Export.PageDelay)

	r := c.Responder
	fmt.Println("\nResponder:")
	fmt.Printf("  Rules: %s (reload every %s, watch %v)\n", r.ResponsesFile, r.ReloadInterval, r.WatchRules)
	fmt.Printf("  Reply delay: %s to %s\n", r.MinReplyDelay, r.MaxReplyDelay)
	fmt.Printf("  Cooldowns: user %s, channel %s\n", r.UserCooldown, r.ChannelCooldown)
	tz := r.WorkingHours.Timezone
	if tz == "" {
		tz = "local"
	}
	fmt.Printf("  Working hours: %02d:00-%02d:00 %s\n", r.WorkingHours.Start, r.WorkingHours.End, tz)

	for _, job := range []config.Job{config.JobGuilds, config.JobExport, config.JobRespond} {
		if err := cfg.Validate(job); err != nil {
			fmt.Printf("\n⚠ %s: %v\n", job, err)
		}
	}
	return nil
}

func check(s string) string {
	if s == "" {
		return "✗ not set"
	}
	return "✓ " + s
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
