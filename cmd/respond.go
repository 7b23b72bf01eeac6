package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/dayuer/chatpacer/internal/config"
	"github.com/dayuer/chatpacer/internal/responder"
	"github.com/dayuer/chatpacer/internal/rules"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var respondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Watch a channel and auto-reply at a human pace",
	Long: `Polls the channel, classifies each new message and answers the ones
that match a rule, waiting and "typing" first. Replies respect a per-user
and a per-channel cooldown and only go out inside working hours.

The rule table is read from --rules (a .json/.yaml file or a
redis://host:port/db?key=name URL) and reloaded while running.`,
	Args: cobra.NoArgs,
	RunE: runRespond,
}

var respondOpts struct {
	channel string
	rules   string
}

func init() {
	respondCmd.Flags().StringVar(&respondOpts.channel, "channel", "", "Channel id (default from CHANNEL_ID or config)")
	respondCmd.Flags().StringVar(&respondOpts.rules, "rules", "", "Rule table location (default from RESPONSES_FILE or config)")
	rootCmd.AddCommand(respondCmd)
}

func runRespond(cmd *cobra.Command, args []string) error {
	if respondOpts.channel != "" {
		cfg.Discord.ChannelID = respondOpts.channel
	}
	if respondOpts.rules != "" {
		cfg.Responder.ResponsesFile = respondOpts.rules
	}
	if err := cfg.Validate(config.JobRespond); err != nil {
		return err
	}

	source, err := rules.OpenSource(cfg.Responder.ResponsesFile)
	if err != nil {
		return fmt.Errorf("rule source: %w", err)
	}
	if c, ok := source.(io.Closer); ok {
		defer c.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := rules.NewStore(nil)
	store.OnChange(func(t *rules.Table) {
		logger.Info("rule table active", zap.Int("categories", t.Len()))
	})
	reloader := rules.NewReloader(source, store, reloaderConfig(cfg), logger.Named("rules"))
	if _, err := reloader.Reload(ctx); err != nil {
		// Built-in replies still cover the question and laugh categories.
		logger.Warn("initial rule load failed, using built-in replies", zap.Error(err))
	}

	client := makeClient(cfg, logger)
	loop, err := responder.New(client, rules.NewClassifier(store, nil), responderConfig(cfg),
		responder.WithLogger(logger.Named("responder")))
	if err != nil {
		return err
	}

	fmt.Printf("🤖 Watching channel %s (rules: %s). Ctrl+C to stop.\n", cfg.Discord.ChannelID, source)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return reloader.Run(gctx) })
	g.Go(func() error { return loop.Run(gctx) })

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Println("\nShutting down...")
	return nil
}
