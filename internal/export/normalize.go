package export

import (
	"sort"

	"github.com/dayuer/chatpacer/internal/discord"
)

// Normalize drops repeated IDs (first occurrence wins) and orders the batch
// oldest to newest. The input is not modified.
func Normalize(msgs []discord.Message) []discord.Message {
	seen := make(map[string]struct{}, len(msgs))
	out := make([]discord.Message, 0, len(msgs))
	for _, m := range msgs {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return discord.CompareIDs(out[i].ID, out[j].ID) < 0
	})
	return out
}
