package responder

// State is a step of the responder loop.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateFiltering
	StateMatched
	StateUnmatched
	StateDelaying
	StateSending
	StateRecording
)

var stateNames = [...]string{
	StateIdle:      "idle",
	StateFetching:  "fetching",
	StateFiltering: "filtering",
	StateMatched:   "matched",
	StateUnmatched: "unmatched",
	StateDelaying:  "delaying",
	StateSending:   "sending",
	StateRecording: "recording",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
