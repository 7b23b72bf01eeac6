package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dayuer/chatpacer/internal/config"
	"github.com/dayuer/chatpacer/internal/export"
	"github.com/dayuer/chatpacer/internal/pacing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a channel's message history to a file",
	Long: `Walks a channel's history backward, newest first, and writes it
oldest first to <output>/channel_<id>_<timestamp>.<ext>.

--before and --after take a message id or a YYYY-MM-DD date.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var exportOpts struct {
	channel string
	limit   int
	format  string
	output  string
	before  string
	after   string
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportOpts.channel, "channel", "", "Channel id (default from CHANNEL_ID or config)")
	f.IntVarP(&exportOpts.limit, "limit", "n", 0, "Maximum messages to export (default from config)")
	f.StringVarP(&exportOpts.format, "format", "f", "", "Output format: "+strings.Join(export.Formats(), ", "))
	f.StringVarP(&exportOpts.output, "output", "o", "", "Output directory (default from config)")
	f.StringVar(&exportOpts.before, "before", "", "Only messages before this id or date")
	f.StringVar(&exportOpts.after, "after", "", "Only messages after this id or date")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportOpts.channel != "" {
		cfg.Discord.ChannelID = exportOpts.channel
	}
	if exportOpts.limit > 0 {
		cfg.Export.Limit = exportOpts.limit
	}
	if exportOpts.format != "" {
		cfg.Export.Format = exportOpts.format
	}
	if exportOpts.output != "" {
		cfg.Export.OutputDir = exportOpts.output
	}
	if err := cfg.Validate(config.JobExport); err != nil {
		return err
	}

	before, err := export.ParseBound(exportOpts.before)
	if err != nil {
		return err
	}
	after, err := export.ParseBound(exportOpts.after)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := makeClient(cfg, logger)
	fetcher := export.NewFetcher(client, pacing.Sleeper{}, export.FetchConfig{
		PageSize:    cfg.Export.PageSize,
		MaxRequests: cfg.Export.MaxRequests,
		PageDelay:   cfg.Export.PageDelay.Std(),
	}, logger)
	exporter := export.NewExporter(fetcher, cfg.Export.OutputDir, pacing.SystemClock{}, logger)

	fmt.Printf("📥 Exporting up to %d messages from channel %s...\n", cfg.Export.Limit, cfg.Discord.ChannelID)
	res, err := exporter.Export(ctx, export.Request{
		ChannelID: cfg.Discord.ChannelID,
		Limit:     cfg.Export.Limit,
		Cursor:    export.Cursor{Before: before, After: after},
		Format:    cfg.Export.Format,
	})
	if res.Path != "" {
		mark := "✓"
		if res.Partial {
			mark = "⚠ partial"
		}
		fmt.Printf("%s Exported %d messages in %d requests to %s\n", mark, res.Count, res.Requests, res.Path)
	}
	if err != nil {
		logger.Error("export failed", zap.Error(err))
		return err
	}
	return nil
}
