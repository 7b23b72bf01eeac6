// Package export pulls a channel's history page by page and writes it out in
// one of the supported encodings.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/dayuer/chatpacer/internal/discord"
	"github.com/dayuer/chatpacer/internal/pacing"
	"go.uber.org/zap"
)

// MessageLister is the slice of the REST client the fetcher needs.
type MessageLister interface {
	Messages(ctx context.Context, channelID string, q discord.MessageQuery) ([]discord.Message, error)
}

// FetchConfig bounds a history fetch.
type FetchConfig struct {
	PageSize    int           // Messages per request; the API maximum is 100.
	MaxRequests int           // Hard cap on requests per fetch.
	PageDelay   time.Duration // Courtesy pause after every full page.
}

// DefaultFetchConfig returns 100 per page, 50 requests, 500ms between pages.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		PageSize:    discord.MaxPageSize,
		MaxRequests: 50,
		PageDelay:   500 * time.Millisecond,
	}
}

// Cursor bounds a fetch. Before moves backward as pages arrive; After stays fixed.
type Cursor struct {
	Before string
	After  string
}

// Page is the outcome of a fetch, complete or partial.
type Page struct {
	Messages  []discord.Message // API order: newest first.
	Requests  int               // Successful requests issued.
	Cursor    Cursor            // Cursor the next request would have used.
	Truncated bool              // Stopped by limit or request budget, not end of history.
}

// Fetcher drives the backward pagination loop.
type Fetcher struct {
	api   MessageLister
	pacer pacing.Pacer
	cfg   FetchConfig
	log   *zap.Logger
}

// NewFetcher creates a Fetcher. Zero-valued config fields take the defaults.
func NewFetcher(api MessageLister, pacer pacing.Pacer, cfg FetchConfig, log *zap.Logger) *Fetcher {
	def := DefaultFetchConfig()
	if cfg.PageSize <= 0 || cfg.PageSize > discord.MaxPageSize {
		cfg.PageSize = def.PageSize
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{api: api, pacer: pacer, cfg: cfg, log: log}
}

// FetchHistory collects up to totalLimit messages older than cursor.Before
// (and newer than cursor.After, when set). Pages are always requested with
// before only; the walk ends at the first page reaching down to After.
//
// The loop stops without error when the limit is reached, the request budget is
// spent, or a page comes back short or empty. A failed request stops it at once;
// whatever was collected is still returned alongside the error.
func (f *Fetcher) FetchHistory(ctx context.Context, channelID string, totalLimit int, cursor Cursor) (Page, error) {
	page := Page{Cursor: cursor}
	if totalLimit < 0 {
		return page, fmt.Errorf("fetch history: negative limit %d", totalLimit)
	}

	for len(page.Messages) < totalLimit && page.Requests < f.cfg.MaxRequests {
		f.log.Debug("requesting page",
			zap.Int("request", page.Requests+1),
			zap.String("before", page.Cursor.Before),
			zap.Int("collected", len(page.Messages)))

		// before and after are exclusive on the API, so After is enforced here.
		batch, err := f.api.Messages(ctx, channelID, discord.MessageQuery{
			Limit:  f.cfg.PageSize,
			Before: page.Cursor.Before,
		})
		if err != nil {
			return trim(page, totalLimit), fmt.Errorf("fetch history after %d requests: %w", page.Requests, err)
		}
		if len(batch) == 0 {
			f.log.Debug("no more messages")
			break
		}

		kept, crossed := newerThan(batch, page.Cursor.After)
		page.Messages = append(page.Messages, kept...)
		page.Requests++
		f.log.Info("page received",
			zap.Int("request", page.Requests),
			zap.Int("count", len(kept)),
			zap.Int("total", len(page.Messages)),
			zap.Int("limit", totalLimit))

		if crossed {
			f.log.Debug("reached after bound", zap.String("after", page.Cursor.After))
			break
		}

		if len(batch) < f.cfg.PageSize {
			f.log.Debug("reached start of channel history")
			break
		}

		page.Cursor.Before = batch[len(batch)-1].ID

		if err := f.pacer.Pause(ctx, pacing.PointPage, f.cfg.PageDelay); err != nil {
			return trim(page, totalLimit), err
		}

		if len(page.Messages) >= totalLimit || page.Requests >= f.cfg.MaxRequests {
			page.Truncated = true
		}
	}

	return trim(page, totalLimit), nil
}

// newerThan keeps the messages with an ID above after and reports whether any
// were dropped. An empty after keeps everything.
func newerThan(batch []discord.Message, after string) ([]discord.Message, bool) {
	if after == "" {
		return batch, false
	}
	kept := make([]discord.Message, 0, len(batch))
	for _, m := range batch {
		if discord.CompareIDs(m.ID, after) > 0 {
			kept = append(kept, m)
		}
	}
	return kept, len(kept) < len(batch)
}

func trim(p Page, limit int) Page {
	if len(p.Messages) > limit {
		p.Messages = p.Messages[:limit]
		p.Truncated = true
	}
	return p
}
