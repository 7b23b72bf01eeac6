// Package rules maps incoming message text to a canned reply.
//
// A Table holds candidate replies per Category. Tables are immutable snapshots;
// a Store swaps them atomically when the Reloader picks up a new version.
package rules

import (
	"maps"
	"slices"
)

// Category is a label for a class of messages.
type Category string

const (
	Laugh    Category = "laugh"
	Why      Category = "why"
	How      Category = "how"
	What     Category = "what"
	Question Category = "question"
	Hi       Category = "hi"
	Bye      Category = "bye"
	Thanks   Category = "thanks"
	Yes      Category = "yes"
	No       Category = "no"
	Maybe    Category = "maybe"
	Good     Category = "good"
	Bad      Category = "bad"
)

// Table is a read-only set of candidate replies per category.
type Table struct {
	replies map[Category][]string
}

// NewTable copies m into a new Table.
func NewTable(m map[string][]string) *Table {
	t := &Table{replies: make(map[Category][]string, len(m))}
	for k, v := range m {
		t.replies[Category(k)] = slices.Clone(v)
	}
	return t
}

// Replies returns a copy of the candidates for c.
func (t *Table) Replies(c Category) []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.replies[c])
}

// Len returns the number of categories in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.replies)
}

// Categories returns the categories present, sorted.
func (t *Table) Categories() []Category {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.replies))
}

// Equal reports whether two tables hold the same replies in the same order.
func (t *Table) Equal(o *Table) bool {
	if t.Len() != o.Len() {
		return false
	}
	if t == nil || o == nil {
		return true
	}
	return maps.EqualFunc(t.replies, o.replies, slices.Equal[[]string])
}

var defaults = map[Category][]string{
	Laugh: {
		"Haha, that's funny! 😄",
		"Lol, good one! 😂",
		"That made me laugh! 😆",
		"Haha, nice! 😅",
		"That's hilarious! 🤣",
	},
	Why: {
		"That's a good question! Let me think...",
		"Well, there are a few reasons...",
		"I think it's because...",
		"There could be several reasons...",
		"Let me explain why...",
	},
	How: {
		"Let me explain how...",
		"Here's how it works...",
		"I'll tell you how...",
		"Let me show you how...",
		"Here's the process...",
	},
	What: {
		"Let me tell you what...",
		"Here's what I think...",
		"What I know is...",
		"Let me explain what...",
		"Here's what happened...",
	},
	Question: {
		"That's an interesting question!",
		"Let me think about that...",
		"Good question!",
		"I'll try to answer that...",
		"Let me explain...",
	},
}

// candidates returns the table's list for c, or the built-in list when the
// table has none. Only laugh and the question categories have built-ins.
func (t *Table) candidates(c Category) []string {
	if t != nil {
		if list := t.replies[c]; len(list) > 0 {
			return list
		}
	}
	return defaults[c]
}
