package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dayuer/chatpacer/internal/config"
	"github.com/spf13/cobra"
)

var guildsCmd = &cobra.Command{
	Use:   "guilds",
	Short: "Show the account behind the token and the servers it is in",
	Args:  cobra.NoArgs,
	RunE:  runGuilds,
}

func init() {
	rootCmd.AddCommand(guildsCmd)
}

func runGuilds(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(config.JobGuilds); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	client := makeClient(cfg, logger)
	me, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	fmt.Printf("Logged in as %s (%s)\n", me.Tag(), me.ID)

	guilds, err := client.Guilds(ctx)
	if err != nil {
		return fmt.Errorf("listing guilds: %w", err)
	}
	fmt.Printf("\nServers (%d):\n", len(guilds))
	for _, g := range guilds {
		owner := ""
		if g.Owner {
			owner = " (owner)"
		}
		fmt.Printf("  %s  %s%s\n", g.ID, g.Name, owner)
	}
	return nil
}
