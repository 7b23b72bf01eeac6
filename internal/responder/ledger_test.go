package responder

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func TestLedger_UserCooldown(t *testing.T) {
	l := NewLedger(DefaultCooldowns())
	assert.True(t, l.CanRespondToUser("u1", t0))

	l.Record("u1", "m1", t0)
	assert.False(t, l.CanRespondToUser("u1", t0.Add(time.Second)))
	assert.False(t, l.CanRespondToUser("u1", t0.Add(179*time.Second)))
	assert.True(t, l.CanRespondToUser("u1", t0.Add(180*time.Second)))
	assert.True(t, l.CanRespondToUser("u1", t0.Add(181*time.Second)))
	assert.True(t, l.CanRespondToUser("u2", t0.Add(time.Second)))
}

func TestLedger_ChannelCooldown(t *testing.T) {
	l := NewLedger(DefaultCooldowns())
	assert.True(t, l.CanRespondToChannel(t0), "empty ledger permits")

	l.Record("u1", "m1", t0)
	assert.False(t, l.CanRespondToChannel(t0.Add(59*time.Second)))
	assert.True(t, l.CanRespondToChannel(t0.Add(60*time.Second)))
}

func TestLedger_AlreadyHandled(t *testing.T) {
	l := NewLedger(DefaultCooldowns())
	assert.False(t, l.AlreadyHandled("m1"))
	l.Record("u1", "m1", t0)
	assert.True(t, l.AlreadyHandled("m1"))
	assert.False(t, l.AlreadyHandled("m2"))
}

func TestLedger_Prune(t *testing.T) {
	l := NewLedger(DefaultCooldowns())
	l.Record("u1", "m1", t0)
	l.Record("u2", "m2", t0.Add(100*time.Second))

	l.Prune(t0.Add(150 * time.Second))
	assert.Equal(t, Stats{Users: 2, Handled: 2, LastChannel: t0.Add(100 * time.Second)}, l.Stats(),
		"channel cooldown since the latest reply has elapsed only at 160s")

	l.Prune(t0.Add(180 * time.Second))
	s := l.Stats()
	assert.Equal(t, 1, s.Users, "u1 aged out")
	assert.Equal(t, 0, s.Handled, "handled set cleared once the channel cooldown elapsed")
	assert.False(t, l.AlreadyHandled("m1"))

	l.Prune(t0.Add(280 * time.Second))
	assert.Equal(t, 0, l.Stats().Users)
}

func TestLedger_PruneKeepsGatingEntries(t *testing.T) {
	l := NewLedger(DefaultCooldowns())
	l.Record("u1", "m1", t0)
	l.Prune(t0.Add(30 * time.Second))

	assert.False(t, l.CanRespondToUser("u1", t0.Add(30*time.Second)))
	assert.True(t, l.AlreadyHandled("m1"))
}

func TestLedger_Permit(t *testing.T) {
	hours := WorkingHours{Start: 8, End: 22, Location: time.UTC}
	l := NewLedger(DefaultCooldowns())

	assert.Equal(t, GateNone, l.Permit(hours, "u1", "m1", t0))
	assert.Equal(t, GateWorkingHours, l.Permit(hours, "u1", "m1", time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)))

	l.Record("u1", "m1", t0)
	assert.Equal(t, GateUser, l.Permit(hours, "u1", "m9", t0.Add(10*time.Second)))
	assert.Equal(t, GateChannel, l.Permit(hours, "u2", "m9", t0.Add(10*time.Second)))
	assert.Equal(t, GateHandled, l.Permit(hours, "u2", "m1", t0.Add(61*time.Second)))
	assert.Equal(t, GateNone, l.Permit(hours, "u2", "m2", t0.Add(61*time.Second)))
}

func TestWorkingHours_Contains(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2024, 3, 5, h, 30, 0, 0, time.UTC) }

	tests := []struct {
		name  string
		hours WorkingHours
		hour  int
		want  bool
	}{
		{"inside", WorkingHours{8, 22, time.UTC}, 12, true},
		{"start inclusive", WorkingHours{8, 22, time.UTC}, 8, true},
		{"end exclusive", WorkingHours{8, 22, time.UTC}, 22, false},
		{"early morning", WorkingHours{8, 22, time.UTC}, 3, false},
		{"wrap late", WorkingHours{22, 6, time.UTC}, 23, true},
		{"wrap early", WorkingHours{22, 6, time.UTC}, 2, true},
		{"wrap outside", WorkingHours{22, 6, time.UTC}, 12, false},
		{"always open", WorkingHours{0, 0, time.UTC}, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.hours.Contains(at(tt.hour)))
		})
	}
}

func TestWorkingHours_Location(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	w := WorkingHours{Start: 8, End: 22, Location: tokyo}

	// 01:00 UTC is 10:00 in Tokyo.
	assert.True(t, w.Contains(time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC)))
	// 14:00 UTC is 23:00 in Tokyo.
	assert.False(t, w.Contains(time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)))
}

func TestTypist_DelayBounds(t *testing.T) {
	typist := NewTypist(DefaultTypingConfig(), nil, rand.New(rand.NewPCG(1, 2)), nil)

	for _, n := range []int{0, 1, 5, 10, 20, 49, 50, 51, 100, 10000} {
		for range 50 {
			d := typist.Delay(n)
			require.GreaterOrEqual(t, d, time.Second, "n=%d", n)
			require.LessOrEqual(t, d, 5*time.Second, "n=%d", n)
		}
	}
	assert.Equal(t, time.Second, typist.Delay(0))
	assert.Equal(t, 5*time.Second, typist.Delay(10000))
}

func TestTypist_DelayJitter(t *testing.T) {
	typist := NewTypist(DefaultTypingConfig(), nil, rand.New(rand.NewPCG(3, 4)), nil)

	// 30 characters: 3s ±5%.
	for range 200 {
		d := typist.Delay(30)
		require.GreaterOrEqual(t, d, 2850*time.Millisecond)
		require.LessOrEqual(t, d, 3150*time.Millisecond)
	}
}
