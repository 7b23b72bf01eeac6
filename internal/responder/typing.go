package responder

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// TypingConfig models how fast a person types.
type TypingConfig struct {
	PerChar  time.Duration // Time per character.
	Variance float64       // Relative jitter, e.g. 0.05 for ±5%.
	Min      time.Duration
	Max      time.Duration
}

// DefaultTypingConfig returns 100ms per character, ±5%, clamped to 1s..5s.
func DefaultTypingConfig() TypingConfig {
	return TypingConfig{
		PerChar:  100 * time.Millisecond,
		Variance: 0.05,
		Min:      time.Second,
		Max:      5 * time.Second,
	}
}

// TypingNotifier shows the typing indicator.
type TypingNotifier interface {
	TriggerTyping(ctx context.Context, channelID string) error
}

// Typist simulates a person typing a reply.
type Typist struct {
	cfg TypingConfig
	rnd *rand.Rand
	api TypingNotifier
	log *zap.Logger
}

// NewTypist creates a Typist. rnd must not be shared with other goroutines.
func NewTypist(cfg TypingConfig, api TypingNotifier, rnd *rand.Rand, log *zap.Logger) *Typist {
	if cfg.Max < cfg.Min {
		cfg.Max = cfg.Min
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Typist{cfg: cfg, rnd: rnd, api: api, log: log}
}

// Delay returns how long typing n characters takes, always within [Min, Max].
func (t *Typist) Delay(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	base := float64(n) * float64(t.cfg.PerChar)
	jitter := (t.rnd.Float64()*2 - 1) * t.cfg.Variance
	d := time.Duration(base * (1 + jitter))
	return min(max(d, t.cfg.Min), t.cfg.Max)
}

// Announce shows the typing indicator. Failure is logged and otherwise ignored.
func (t *Typist) Announce(ctx context.Context, channelID string) {
	if err := t.api.TriggerTyping(ctx, channelID); err != nil {
		t.log.Warn("failed to start typing", zap.String("channel", channelID), zap.Error(err))
	}
}
