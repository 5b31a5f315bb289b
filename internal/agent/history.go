package agent

import (
	"dtnsim/internal/geometry"
	"dtnsim/internal/radio"
)

// HistoryCap is the bounded ring buffer capacity for an agent's recent
// observations.
const HistoryCap = 150

// Sample is one observation recorded in an agent's history.
type Sample struct {
	Tick          int64
	Pos           geometry.Position
	RadioSnapshot []radio.Neighbor
}

// History is a bounded ring buffer of an agent's recent {pos,
// radio_snapshot} observations.
type History struct {
	entries []Sample
	cap     int
	next    int
	full    bool
}

// NewHistory returns an empty history with the given capacity.
func NewHistory(cap int) *History {
	if cap <= 0 {
		cap = HistoryCap
	}
	return &History{entries: make([]Sample, cap), cap: cap}
}

// Append records a new sample, overwriting the oldest once the buffer is
// full.
func (h *History) Append(s Sample) {
	h.entries[h.next] = s
	h.next = (h.next + 1) % h.cap
	if h.next == 0 {
		h.full = true
	}
}

// Recent returns up to n of the most recently appended samples, oldest
// first.
func (h *History) Recent(n int) []Sample {
	all := h.All()
	if n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// All returns every sample currently retained, oldest first.
func (h *History) All() []Sample {
	if !h.full {
		out := make([]Sample, h.next)
		copy(out, h.entries[:h.next])
		return out
	}
	out := make([]Sample, h.cap)
	copy(out, h.entries[h.next:])
	copy(out[h.cap-h.next:], h.entries[:h.next])
	return out
}
