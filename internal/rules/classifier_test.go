package rules

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Precedence(t *testing.T) {
	tests := []struct {
		text string
		want Category
		ok   bool
	}{
		{"why is the sky blue?", Why, true},
		{"How does this work?", How, true},
		{"what now?", What, true},
		{"why and how?", Why, true},
		{"how about what?", How, true},
		{"really?", Question, true},
		{"hello there?", Question, true},
		{">lol", "", false},
		{"> 😂 quoted", "", false},
		{"  >hi", "", false},
		{"that's great 😂", Laugh, true},
		{"why? 😆", Laugh, true},
		{"hey everyone", Hi, true},
		{"goodbye all", Bye, true},
		{"thanks!", Thanks, true},
		{"THX a lot", Thanks, true},
		{"THANK YOU", Hi, true}, // "you" contains "yo"
		{"yes please", Yes, true},
		{"nope", No, true},
		{"possibly", Maybe, true},
		{"i am so excited", Good, true},
		{"feeling sad", Bad, true},
		{"", "", false},
		{"   ", "", false},
		{"lol", "", false},
		{"12345", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := Classify(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_SubstringShadowing(t *testing.T) {
	// "this" contains "hi", so greetings shadow everything below them.
	got, ok := Classify("this makes me happy")
	require.True(t, ok)
	assert.Equal(t, Hi, got)

	// "good" wins over "bad" when both appear.
	got, _ = Classify("glad but angry")
	assert.Equal(t, Good, got)
}

func newTestClassifier(tbl *Table) *Classifier {
	return NewClassifier(NewStore(tbl), rand.New(rand.NewPCG(1, 2)))
}

func TestClassifier_UsesTable(t *testing.T) {
	c := newTestClassifier(NewTable(map[string][]string{
		"thanks": {"np!", "anytime"},
	}))

	for i := 0; i < 20; i++ {
		reply, cat, ok := c.Reply("thanks!")
		require.True(t, ok)
		assert.Equal(t, Thanks, cat)
		assert.Contains(t, []string{"np!", "anytime"}, reply)
	}
}

func TestClassifier_FallbackDefaults(t *testing.T) {
	c := newTestClassifier(NewTable(map[string][]string{"why": {}}))

	reply, cat, ok := c.Reply("why is the sky blue?")
	require.True(t, ok)
	assert.Equal(t, Why, cat)
	assert.Contains(t, defaults[Why], reply)

	reply, cat, ok = c.Reply("so funny 🤣")
	require.True(t, ok)
	assert.Equal(t, Laugh, cat)
	assert.Contains(t, defaults[Laugh], reply)
}

func TestClassifier_NoFallbackMeansNoReply(t *testing.T) {
	c := newTestClassifier(NewTable(nil))

	reply, cat, ok := c.Reply("hello")
	assert.False(t, ok)
	assert.Equal(t, Hi, cat)
	assert.Empty(t, reply)

	_, _, ok = c.Reply("random words")
	assert.False(t, ok)
}

func TestClassifier_QuoteSuppressed(t *testing.T) {
	c := newTestClassifier(NewTable(map[string][]string{"laugh": {"ha"}}))
	_, _, ok := c.Reply(">😂")
	assert.False(t, ok)
}

func TestClassifier_UniformPick(t *testing.T) {
	c := newTestClassifier(NewTable(map[string][]string{"yes": {"a", "b", "c"}}))

	seen := map[string]int{}
	for i := 0; i < 300; i++ {
		reply, _, ok := c.Reply("yes")
		require.True(t, ok)
		seen[reply]++
	}
	assert.Len(t, seen, 3)
	for _, n := range seen {
		assert.Greater(t, n, 50)
	}
}
