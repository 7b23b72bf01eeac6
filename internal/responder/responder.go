// Package responder watches one channel and answers matching messages the way
// a person would: later, one at a time, after "typing", and never too often.
package responder

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/dayuer/chatpacer/internal/discord"
	"github.com/dayuer/chatpacer/internal/pacing"
	"github.com/dayuer/chatpacer/internal/rules"
	"go.uber.org/zap"
)

// API is the slice of the REST client the responder uses.
type API interface {
	Me(ctx context.Context) (*discord.User, error)
	Messages(ctx context.Context, channelID string, q discord.MessageQuery) ([]discord.Message, error)
	SendMessage(ctx context.Context, channelID, content string, ref *discord.MessageReference) (*discord.Message, error)
	TriggerTyping(ctx context.Context, channelID string) error
}

// Replier picks a reply for message text; *rules.Classifier implements it.
type Replier interface {
	Reply(text string) (string, rules.Category, bool)
}

// Config holds everything the loop needs to know.
type Config struct {
	ChannelID     string
	PollLimit     int
	PollInterval  time.Duration
	MinReplyDelay time.Duration
	MaxReplyDelay time.Duration
	Cooldowns     Cooldowns
	Hours         WorkingHours
	Typing        TypingConfig
}

// DefaultConfig returns the stock pacing for channelID.
func DefaultConfig(channelID string) Config {
	return Config{
		ChannelID:     channelID,
		PollLimit:     10,
		PollInterval:  time.Second,
		MinReplyDelay: 15 * time.Second,
		MaxReplyDelay: 600 * time.Second,
		Cooldowns:     DefaultCooldowns(),
		Hours:         DefaultWorkingHours(),
		Typing:        DefaultTypingConfig(),
	}
}

// Option configures a Responder.
type Option func(*Responder)

// WithPacer replaces the timer-based pacer.
func WithPacer(p pacing.Pacer) Option { return func(r *Responder) { r.pacer = p } }

// WithClock replaces the wall clock.
func WithClock(c pacing.Clock) Option { return func(r *Responder) { r.clock = c } }

// WithRand seeds reply and typing delays from rnd.
func WithRand(rnd *rand.Rand) Option { return func(r *Responder) { r.rnd = rnd } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(r *Responder) { r.log = l } }

// Responder is the polling loop. Run it from a single goroutine.
type Responder struct {
	api     API
	replier Replier
	cfg     Config
	pacer   pacing.Pacer
	clock   pacing.Clock
	rnd     *rand.Rand
	log     *zap.Logger

	ledger *Ledger
	typist *Typist

	self   discord.User
	cursor string
	primed bool
	state  atomic.Int32
}

// New creates a Responder.
func New(api API, replier Replier, cfg Config, opts ...Option) (*Responder, error) {
	if cfg.ChannelID == "" {
		return nil, errors.New("responder: channel id is required")
	}
	if cfg.PollLimit <= 0 || cfg.PollLimit > discord.MaxPageSize {
		cfg.PollLimit = 10
	}
	if cfg.MaxReplyDelay < cfg.MinReplyDelay {
		cfg.MaxReplyDelay = cfg.MinReplyDelay
	}

	r := &Responder{
		api:     api,
		replier: replier,
		cfg:     cfg,
		pacer:   pacing.Sleeper{},
		clock:   pacing.SystemClock{},
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.rnd == nil {
		r.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	r.ledger = NewLedger(cfg.Cooldowns)
	r.typist = NewTypist(cfg.Typing, api, r.rnd, r.log)
	return r, nil
}

// State returns the loop's current state. Safe to call from any goroutine.
func (r *Responder) State() State {
	return State(r.state.Load())
}

func (r *Responder) setState(s State) {
	r.state.Store(int32(s))
}

// Ledger exposes the cooldown ledger. Only use it while Run is not executing.
func (r *Responder) Ledger() *Ledger { return r.ledger }

// Self returns the identity resolved by Run or Identify.
func (r *Responder) Self() discord.User { return r.self }

// Identify resolves the account the token belongs to, so its own messages can
// be skipped.
func (r *Responder) Identify(ctx context.Context) error {
	me, err := r.api.Me(ctx)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}
	r.self = *me
	r.log.Info("logged in", zap.String("user", me.Tag()), zap.String("user_id", me.ID))
	return nil
}

// Run identifies itself, then polls until ctx is cancelled. Failing to resolve
// the identity is the only error it returns; poll failures are logged and the
// next cycle tries again.
func (r *Responder) Run(ctx context.Context) error {
	if err := r.Identify(ctx); err != nil {
		return err
	}
	r.log.Info("responder started",
		zap.String("channel", r.cfg.ChannelID),
		zap.Duration("poll_interval", r.cfg.PollInterval))

	for ctx.Err() == nil {
		if err := r.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			r.log.Warn("poll failed",
				zap.Error(err),
				zap.Bool("rate_limit_or_auth", discord.IsRateLimitOrAuth(err)))
		}
		if err := r.pacer.Pause(ctx, pacing.PointPoll, r.cfg.PollInterval); err != nil {
			break
		}
	}

	r.setState(StateIdle)
	r.log.Info("responder stopped", zap.Int("tracked_users", r.ledger.Stats().Users))
	return nil
}

// Poll runs one cycle: fetch, pick out new messages, answer the ones that
// pass every gate. It returns fetch errors and context cancellation; a failed
// send is logged and does not stop the cycle.
func (r *Responder) Poll(ctx context.Context) error {
	defer r.setState(StateIdle)

	r.setState(StateFetching)
	msgs, err := r.api.Messages(ctx, r.cfg.ChannelID, discord.MessageQuery{Limit: r.cfg.PollLimit})
	if err != nil {
		return fmt.Errorf("poll channel %s: %w", r.cfg.ChannelID, err)
	}

	r.setState(StateFiltering)
	for _, m := range r.fresh(msgs) {
		if m.Author.ID == r.self.ID {
			continue
		}
		if m.ChannelID != "" && m.ChannelID != r.cfg.ChannelID {
			continue
		}
		if err := r.handle(ctx, m); err != nil {
			return err
		}
		r.setState(StateFiltering)
	}
	return nil
}

// fresh returns the messages newer than the cursor, oldest first, and moves
// the cursor to the newest one. The first call only sets the cursor so that
// history present at startup is never answered.
func (r *Responder) fresh(msgs []discord.Message) []discord.Message {
	newest := r.cursor
	var out []discord.Message
	for _, m := range msgs {
		if discord.CompareIDs(m.ID, newest) > 0 {
			newest = m.ID
		}
		if r.primed && discord.CompareIDs(m.ID, r.cursor) > 0 {
			out = append(out, m)
		}
	}
	if !r.primed {
		r.primed = true
		r.log.Debug("cursor primed", zap.String("cursor", newest))
	}
	r.cursor = newest
	sort.Slice(out, func(i, j int) bool { return discord.CompareIDs(out[i].ID, out[j].ID) < 0 })
	return out
}

func (r *Responder) handle(ctx context.Context, m discord.Message) error {
	log := r.log.With(
		zap.String("message_id", m.ID),
		zap.String("user", m.Author.Username),
		zap.String("user_id", m.Author.ID))

	now := r.clock.Now()
	r.ledger.Prune(now)
	if gate := r.ledger.Permit(r.cfg.Hours, m.Author.ID, m.ID, now); gate != GateNone {
		log.Debug("message skipped", zap.String("gate", string(gate)))
		return nil
	}

	reply, cat, ok := r.replier.Reply(m.Content)
	if !ok {
		r.setState(StateUnmatched)
		log.Debug("no matching reply", zap.String("category", string(cat)))
		return nil
	}
	r.setState(StateMatched)

	delay := r.replyDelay()
	log.Info("reply scheduled",
		zap.String("content", m.Content),
		zap.String("category", string(cat)),
		zap.String("reply", reply),
		zap.Duration("delay", delay))

	r.setState(StateDelaying)
	if err := r.pacer.Pause(ctx, pacing.PointReply, delay); err != nil {
		return err
	}

	r.setState(StateSending)
	r.typist.Announce(ctx, r.cfg.ChannelID)
	if err := r.pacer.Pause(ctx, pacing.PointTyping, r.typist.Delay(utf8.RuneCountInString(reply))); err != nil {
		return err
	}
	sent, err := r.api.SendMessage(ctx, r.cfg.ChannelID, reply, discord.ReferenceTo(m))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error("failed to send reply", zap.Error(err))
		return nil
	}

	r.setState(StateRecording)
	now = r.clock.Now()
	r.ledger.Record(m.Author.ID, m.ID, now)
	r.ledger.Prune(now)
	log.Info("reply sent", zap.String("reply_id", sent.ID))
	return nil
}

// replyDelay is a whole number of seconds drawn uniformly from
// [MinReplyDelay, MaxReplyDelay].
func (r *Responder) replyDelay() time.Duration {
	lo := int64(r.cfg.MinReplyDelay / time.Second)
	hi := int64(r.cfg.MaxReplyDelay / time.Second)
	if hi <= lo {
		return time.Duration(lo) * time.Second
	}
	return time.Duration(lo+r.rnd.Int64N(hi-lo+1)) * time.Second
}
