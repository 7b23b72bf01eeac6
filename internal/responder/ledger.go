package responder

import (
	"time"
)

// Cooldowns configures the anti-spam gates.
type Cooldowns struct {
	User    time.Duration // Between two replies to the same user.
	Channel time.Duration // Between any two replies in the channel.
}

// DefaultCooldowns returns 3 minutes per user and 1 minute per channel.
func DefaultCooldowns() Cooldowns {
	return Cooldowns{User: 180 * time.Second, Channel: 60 * time.Second}
}

// Gate names the check that refused a reply.
type Gate string

const (
	GateNone         Gate = ""
	GateWorkingHours Gate = "working_hours"
	GateUser         Gate = "user_cooldown"
	GateChannel      Gate = "channel_cooldown"
	GateHandled      Gate = "already_handled"
)

// Ledger remembers when replies were sent and which messages were answered.
//
// It has a single owner (the responder loop) and is not safe for concurrent
// use. Every entry corresponds to a reply that was actually delivered.
type Ledger struct {
	cd          Cooldowns
	lastUser    map[string]time.Time
	lastChannel time.Time
	handled     map[string]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger(cd Cooldowns) *Ledger {
	return &Ledger{
		cd:       cd,
		lastUser: make(map[string]time.Time),
		handled:  make(map[string]struct{}),
	}
}

// CanRespondToUser reports whether the user cooldown has elapsed.
func (l *Ledger) CanRespondToUser(userID string, now time.Time) bool {
	last, ok := l.lastUser[userID]
	if !ok {
		return true
	}
	return now.Sub(last) >= l.cd.User
}

// CanRespondToChannel reports whether the channel cooldown has elapsed.
// A ledger that never replied always permits.
func (l *Ledger) CanRespondToChannel(now time.Time) bool {
	if l.lastChannel.IsZero() {
		return true
	}
	return now.Sub(l.lastChannel) >= l.cd.Channel
}

// AlreadyHandled reports whether messageID was answered and not yet pruned.
func (l *Ledger) AlreadyHandled(messageID string) bool {
	_, ok := l.handled[messageID]
	return ok
}

// Record notes a delivered reply.
func (l *Ledger) Record(userID, messageID string, now time.Time) {
	l.lastUser[userID] = now
	l.lastChannel = now
	l.handled[messageID] = struct{}{}
}

// Prune evicts entries that no longer gate anything.
//
// User entries go once their own cooldown has elapsed. Answered message IDs
// are not aged individually: the whole set is kept while the channel cooldown
// since the latest reply is running and dropped once it has elapsed. Message
// dedup retention is thus tied to channel activity rather than message age.
func (l *Ledger) Prune(now time.Time) {
	for id, last := range l.lastUser {
		if now.Sub(last) >= l.cd.User {
			delete(l.lastUser, id)
		}
	}
	if len(l.handled) > 0 && now.Sub(l.lastChannel) >= l.cd.Channel {
		clear(l.handled)
	}
}

// Permit evaluates every gate for a message and returns the first one that
// refuses, or GateNone when a reply may be sent.
func (l *Ledger) Permit(hours WorkingHours, userID, messageID string, now time.Time) Gate {
	switch {
	case !hours.Contains(now):
		return GateWorkingHours
	case !l.CanRespondToUser(userID, now):
		return GateUser
	case !l.CanRespondToChannel(now):
		return GateChannel
	case l.AlreadyHandled(messageID):
		return GateHandled
	}
	return GateNone
}

// Stats is a point-in-time view of the ledger, for logging.
type Stats struct {
	Users       int
	Handled     int
	LastChannel time.Time
}

// Stats returns current sizes.
func (l *Ledger) Stats() Stats {
	return Stats{Users: len(l.lastUser), Handled: len(l.handled), LastChannel: l.lastChannel}
}
