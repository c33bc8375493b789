package memory

import "sync"

// SummarizeFunc condenses a run of turns into a short summary.
type SummarizeFunc func(turns []Turn) (string, error)

// History keeps the recent conversation per user in RAM. When a user's
// turn count reaches the trigger, the turns are summarized into the
// in-RAM summary and the list is cut back to the window size. The window
// is what gets injected into the next prompt.
type History struct {
	mu      sync.Mutex
	window  int
	trigger int

	turns     map[string][]Turn
	summaries map[string]string
}

// NewHistory creates a History with the given window and summary trigger.
func NewHistory(window, trigger int) *History {
	if window <= 0 {
		window = 3
	}
	if trigger <= window {
		trigger = window + 1
	}
	return &History{
		window:    window,
		trigger:   trigger,
		turns:     make(map[string][]Turn),
		summaries: make(map[string]string),
	}
}

// Window returns the last turns for the user, at most the window size.
func (h *History) Window(userID string) []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	turns := h.turns[userID]
	if len(turns) > h.window {
		turns = turns[len(turns)-h.window:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Summary returns the in-RAM conversation summary for the user.
func (h *History) Summary(userID string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.summaries[userID]
}

// AddTurn records an exchange. On reaching the trigger the accumulated
// turns are summarized and the list shrinks to the window; a failed
// summarization still shrinks the list so memory stays bounded.
func (h *History) AddTurn(userID, question, answer string, summarize SummarizeFunc) {
	h.mu.Lock()
	turns := append(h.turns[userID], Turn{Q: question, A: answer})
	h.turns[userID] = turns
	needSummary := len(turns) >= h.trigger
	h.mu.Unlock()

	if !needSummary {
		return
	}

	var summary string
	if summarize != nil {
		if s, err := summarize(turns); err == nil {
			summary = s
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if summary != "" {
		h.summaries[userID] = summary
	}
	kept := h.turns[userID]
	if len(kept) > h.window {
		h.turns[userID] = kept[len(kept)-h.window:]
	}
}

// Clear drops the user's turns and summary.
func (h *History) Clear(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.turns, userID)
	delete(h.summaries, userID)
}

// AllTurns returns every retained turn for the user, oldest first.
func (h *History) AllTurns(userID string) []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	turns := h.turns[userID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
