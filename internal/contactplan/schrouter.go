package contactplan

import "container/heap"

// Route is an ordered list of hops (contacts) from the root to a
// destination, in traversal order.
type Route struct {
	Hops []Contact
}

// FirstHop returns the destination node of the route's first contact, or
// "" if the route is empty (root == dest).
func (r Route) FirstHop() string {
	if len(r.Hops) == 0 {
		return ""
	}
	return r.Hops[0].Dst
}

// ArrivalTime returns the arrival time at the final hop's destination.
func (r Route) ArrivalTime(rootArrival int64) int64 {
	if len(r.Hops) == 0 {
		return rootArrival
	}
	return effectiveArrival(rootArrival, r.Hops)
}

func effectiveArrival(rootArrival int64, hops []Contact) int64 {
	arrival := rootArrival
	for _, c := range hops {
		start := c.Start
		if arrival > start {
			start = arrival
		}
		arrival = start + c.OWLT
	}
	return arrival
}

// entry is a Dijkstra frontier node: the earliest-arrival path discovered
// so far to reach node, tie-broken by hop count then by the smallest
// contact id used on the final hop.
type entry struct {
	node       string
	arrival    int64
	hops       int
	lastID     int
	path       []Contact
	queueIndex int
}

func less(a, b *entry) bool {
	if a.arrival != b.arrival {
		return a.arrival < b.arrival
	}
	if a.hops != b.hops {
		return a.hops < b.hops
	}
	return a.lastID < b.lastID
}

type frontier []*entry

func (f frontier) Len() int            { return len(f) }
func (f frontier) Less(i, j int) bool  { return less(f[i], f[j]) }
func (f frontier) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
	f[i].queueIndex = i
	f[j].queueIndex = j
}
func (f *frontier) Push(x any) {
	e := x.(*entry)
	e.queueIndex = len(*f)
	*f = append(*f, e)
}
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return e
}

// BestRoute computes the earliest-arrival route from rootID to destID,
// given the contact plan and the current tick now. Returns false if destID
// is unreachable at now.
//
// A synthetic root entry represents rootID as "arrived" at time now; hops
// are relaxed using each contact's Start as the effective transmit time
// (never earlier than the current node's arrival), propagating
// arrival = max(arrival_at_src, hop.Start) + hop.OWLT. Ties are broken by
// earliest arrival, then fewest hops, then smallest contact id.
func (p *Plan) BestRoute(rootID, destID string, now int64) (Route, bool) {
	if rootID == destID {
		return Route{}, true
	}

	byNode := make(map[string][]Contact)
	for _, c := range p.contacts {
		byNode[c.Src] = append(byNode[c.Src], c)
	}

	best := map[string]*entry{
		rootID: {node: rootID, arrival: now, hops: 0, lastID: -1},
	}

	pq := &frontier{}
	heap.Init(pq)
	heap.Push(pq, best[rootID])

	visited := map[string]bool{}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*entry)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		if cur.node == destID {
			return Route{Hops: cur.path}, true
		}

		for _, c := range byNode[cur.node] {
			if cur.arrival > c.End {
				// Contact window has already closed by the time we'd arrive.
				continue
			}
			effectiveStart := c.Start
			if cur.arrival > effectiveStart {
				effectiveStart = cur.arrival
			}
			arrival := effectiveStart + c.OWLT

			candidate := &entry{
				node:    c.Dst,
				arrival: arrival,
				hops:    cur.hops + 1,
				lastID:  c.ID,
				path:    appendHop(cur.path, c),
			}

			if visited[c.Dst] {
				continue
			}
			if existing, ok := best[c.Dst]; !ok || less(candidate, existing) {
				best[c.Dst] = candidate
				heap.Push(pq, candidate)
			}
		}
	}

	return Route{}, false
}

func appendHop(path []Contact, c Contact) []Contact {
	out := make([]Contact, len(path), len(path)+1)
	copy(out, path)
	return append(out, c)
}
