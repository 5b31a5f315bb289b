// Package contactplan implements the mutable time-windowed contact plan and
// the earliest-arrival Dijkstra route computation (the "Schrouter").
package contactplan

// Contact is a directed, time-windowed transmission opportunity.
type Contact struct {
	ID         int
	Src, Dst   string
	Start, End int64
	Rate       int64
	OWLT       int64
	Confidence float64
}

// Overlaps reports whether [Start,End] overlaps [s,e], using
// inclusive-inclusive semantics on both sides (the standard interval
// intersection test).
func (c Contact) Overlaps(s, e int64) bool {
	return c.Start <= e && s <= c.End
}

// Plan is the mutable set of known contacts for one routing-protocol
// instance. Each instance owns its own copy; no plan is shared across
// agents.
type Plan struct {
	contacts []Contact
	nextID   int
}

// NewPlan returns an empty contact plan.
func NewPlan() *Plan {
	return &Plan{nextID: 1}
}

// AddContact assigns the plan's next monotonically increasing id and
// appends the contact.
func (p *Plan) AddContact(src, dst string, start, end int64, rate, owlt int64, confidence float64) Contact {
	c := Contact{
		ID:         p.nextID,
		Src:        src,
		Dst:        dst,
		Start:      start,
		End:        end,
		Rate:       rate,
		OWLT:       owlt,
		Confidence: confidence,
	}
	p.nextID++
	p.contacts = append(p.contacts, c)
	return c
}

// All returns a copy of the contacts currently in the plan.
func (p *Plan) All() []Contact {
	out := make([]Contact, len(p.contacts))
	copy(out, p.contacts)
	return out
}

// RemoveAllContactsForNode drops any contact incident to id, as either
// source or destination.
func (p *Plan) RemoveAllContactsForNode(id string) {
	kept := p.contacts[:0]
	for _, c := range p.contacts {
		if c.Src != id && c.Dst != id {
			kept = append(kept, c)
		}
	}
	p.contacts = kept
}

// RemoveContactsInTimeWindow removes the portion of every contact on the
// unordered pair {a,b} that overlaps [s,e], replacing each removed contact
// with up to two contacts covering the non-overlapping remainder:
// [start, s-1] and/or [e+1, end]. New contacts get fresh ids; the
// rate/owlt/confidence of the original contact are preserved on the
// remainder pieces.
func (p *Plan) RemoveContactsInTimeWindow(a, b string, s, e int64) {
	var kept []Contact
	for _, c := range p.contacts {
		onPair := (c.Src == a && c.Dst == b) || (c.Src == b && c.Dst == a)
		if !onPair || !c.Overlaps(s, e) {
			kept = append(kept, c)
			continue
		}

		if c.Start < s {
			kept = append(kept, p.cloneWithWindow(c, c.Start, s-1))
		}
		if c.End > e {
			kept = append(kept, p.cloneWithWindow(c, e+1, c.End))
		}
	}
	p.contacts = kept
}

func (p *Plan) cloneWithWindow(c Contact, start, end int64) Contact {
	c.ID = p.nextID
	p.nextID++
	c.Start = start
	c.End = end
	return c
}

// CheckAnyAvailability reports whether any contact is incident to id.
func (p *Plan) CheckAnyAvailability(id string) bool {
	for _, c := range p.contacts {
		if c.Src == id || c.Dst == id {
			return true
		}
	}
	return false
}

// CheckContactAvailability reports whether any contact exists from src to
// dst (directed).
func (p *Plan) CheckContactAvailability(src, dst string) bool {
	for _, c := range p.contacts {
		if c.Src == src && c.Dst == dst {
			return true
		}
	}
	return false
}
