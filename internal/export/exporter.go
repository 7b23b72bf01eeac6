package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dayuer/chatpacer/internal/discord"
	"github.com/dayuer/chatpacer/internal/pacing"
	"go.uber.org/zap"
)

// Request describes one export run.
type Request struct {
	ChannelID string
	Limit     int
	Cursor    Cursor
	Format    string
}

// Result describes what an export run produced.
type Result struct {
	Path     string
	Count    int
	Requests int
	Partial  bool // The fetch failed part way; Path holds what arrived before it.
}

// Exporter fetches a channel and writes it to OutputDir.
type Exporter struct {
	fetcher   *Fetcher
	outputDir string
	clock     pacing.Clock
	log       *zap.Logger
}

// NewExporter creates an Exporter writing under outputDir.
func NewExporter(fetcher *Fetcher, outputDir string, clock pacing.Clock, log *zap.Logger) *Exporter {
	if clock == nil {
		clock = pacing.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{fetcher: fetcher, outputDir: outputDir, clock: clock, log: log}
}

// Export runs one export. If the fetch fails after some messages arrived, the
// partial batch is still written and the fetch error is returned with the result.
func (e *Exporter) Export(ctx context.Context, req Request) (Result, error) {
	w, err := WriterFor(req.Format)
	if err != nil {
		return Result{}, err
	}
	if req.ChannelID == "" {
		return Result{}, fmt.Errorf("export: channel id is required")
	}

	e.log.Info("export started",
		zap.String("channel", req.ChannelID),
		zap.Int("limit", req.Limit),
		zap.String("format", w.Format()),
		zap.String("before", req.Cursor.Before),
		zap.String("after", req.Cursor.After))

	page, fetchErr := e.fetcher.FetchHistory(ctx, req.ChannelID, req.Limit, req.Cursor)
	res := Result{Count: len(page.Messages), Requests: page.Requests}
	if fetchErr != nil {
		if len(page.Messages) == 0 {
			return res, fetchErr
		}
		res.Partial = true
		e.log.Warn("fetch failed, writing partial export",
			zap.Int("count", len(page.Messages)),
			zap.Error(fetchErr))
	}

	msgs := Normalize(page.Messages)
	res.Count = len(msgs)

	path, err := e.write(w, req.ChannelID, msgs)
	if err != nil {
		return res, err
	}
	res.Path = path

	e.log.Info("export finished",
		zap.String("path", path),
		zap.Int("count", res.Count),
		zap.Int("requests", res.Requests),
		zap.Bool("partial", res.Partial))
	return res, fetchErr
}

func (e *Exporter) write(w Writer, channelID string, msgs []discord.Message) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	base := fmt.Sprintf("channel_%s_%s", channelID, e.clock.Now().Format("20060102_150405"))
	f, path, err := createUnique(e.outputDir, base, w.Ext())
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := w.Write(f, channelID, msgs); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s export: %w", w.Format(), err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}

// createUnique creates dir/base.ext, or dir/base_N.ext when earlier names are
// taken. Existing exports are never truncated.
func createUnique(dir, base, ext string) (*os.File, string, error) {
	for i := 0; i < 1000; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		path := filepath.Join(dir, name+"."+ext)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("no free file name for %s.%s in %s", base, ext, dir)
}

// ParseBound turns a --before/--after value into a cursor. It accepts a
// snowflake or a YYYY-MM-DD date (midnight UTC); empty stays empty.
func ParseBound(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		return s, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("invalid bound %q: want a message id or YYYY-MM-DD", s)
	}
	return discord.SnowflakeFromTime(t), nil
}
