package rules

import (
	"math/rand/v2"
	"strings"
	"sync"
)

type trigger struct {
	category Category
	words    []string
}

var laughGlyphs = []string{"😂", "😊", "😅", "🤣", "😆"}

// Checked in order after the laugh and question rules; the first hit wins.
var triggers = []trigger{
	{Hi, []string{"hi", "hello", "hey", "sup", "yo"}},
	{Bye, []string{"bye", "goodbye", "see you", "later"}},
	{Thanks, []string{"thanks", "thank you", "thx"}},
	{Yes, []string{"yes", "yeah", "yep", "sure", "okay"}},
	{No, []string{"no", "nope", "nah", "not really"}},
	{Maybe, []string{"maybe", "perhaps", "possibly"}},
	{Good, []string{"happy", "glad", "excited"}},
	{Bad, []string{"sad", "upset", "angry"}},
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Classify returns the category for text, or false when nothing should be said.
// Matching is by substring on the trimmed, lowercased text, so "this" counts as
// a greeting; that is how the rule set has always behaved.
func Classify(text string) (Category, bool) {
	s := strings.ToLower(strings.TrimSpace(text))

	if strings.HasPrefix(s, ">") {
		return "", false
	}
	if containsAny(s, laughGlyphs) {
		return Laugh, true
	}
	if strings.HasSuffix(s, "?") {
		switch {
		case strings.Contains(s, "why"):
			return Why, true
		case strings.Contains(s, "how"):
			return How, true
		case strings.Contains(s, "what"):
			return What, true
		default:
			return Question, true
		}
	}
	for _, tr := range triggers {
		if containsAny(s, tr.words) {
			return tr.category, true
		}
	}
	return "", false
}

// TableSource yields the current rule table.
type TableSource interface {
	Current() *Table
}

// Classifier turns text into a reply using the current table.
type Classifier struct {
	tables TableSource

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewClassifier creates a Classifier. A nil rnd uses a randomly seeded source.
func NewClassifier(tables TableSource, rnd *rand.Rand) *Classifier {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Classifier{tables: tables, rnd: rnd}
}

// Reply picks a reply for text. ok is false for a miss, and also when the
// matched category has no candidates anywhere.
func (c *Classifier) Reply(text string) (reply string, cat Category, ok bool) {
	cat, ok = Classify(text)
	if !ok {
		return "", "", false
	}
	list := c.tables.Current().candidates(cat)
	if len(list) == 0 {
		return "", cat, false
	}
	c.mu.Lock()
	i := c.rnd.IntN(len(list))
	c.mu.Unlock()
	return list[i], cat, true
}
