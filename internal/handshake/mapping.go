// Package handshake implements the client-router payload exchange:
// beacon-driven mapping learning, gossip merge, and the 6-step handshake
// itself.
package handshake

// ClientMapping is a router's learned association between a client id and
// the router(s) currently reachable for that client, with a
// time-to-live per (client, router) pair.
type ClientMapping struct {
	// entries is client_id -> (router_id -> expiration_ts).
	entries map[string]map[string]int64
}

// NewClientMapping returns an empty mapping.
func NewClientMapping() *ClientMapping {
	return &ClientMapping{entries: make(map[string]map[string]int64)}
}

// ObserveBeacon records that selfRouterID currently hosts clientID, valid
// until now + timeout.
func (m *ClientMapping) ObserveBeacon(clientID, selfRouterID string, now, timeout int64) {
	m.upsert(clientID, selfRouterID, now+timeout)
}

func (m *ClientMapping) upsert(clientID, routerID string, expiration int64) {
	routers, ok := m.entries[clientID]
	if !ok {
		routers = make(map[string]int64)
		m.entries[clientID] = routers
	}
	if existing, ok := routers[routerID]; !ok || expiration > existing {
		routers[routerID] = expiration
	}
}

// Merge applies a monotone max-merge of an incoming gossip map into this
// one: for every (client, router) key present in either side, the result
// is the max of the two expirations. Merge is commutative, so gossip
// order never affects the converged result.
func (m *ClientMapping) Merge(incoming map[string]map[string]int64) {
	for client, routers := range incoming {
		for router, expiration := range routers {
			m.upsert(client, router, expiration)
		}
	}
}

// Refresh removes every (client, router) entry whose expiration has
// elapsed, and drops client keys left with no routers.
func (m *ClientMapping) Refresh(now int64) {
	for client, routers := range m.entries {
		for router, expiration := range routers {
			if expiration <= now {
				delete(routers, router)
			}
		}
		if len(routers) == 0 {
			delete(m.entries, client)
		}
	}
}

// RoutersFor returns the router ids currently known to host clientID.
func (m *ClientMapping) RoutersFor(clientID string) []string {
	routers := m.entries[clientID]
	if len(routers) == 0 {
		return nil
	}
	ids := make([]string, 0, len(routers))
	for r := range routers {
		ids = append(ids, r)
	}
	return ids
}

// Snapshot returns a deep copy of the mapping's contents, suitable for
// attaching to an outgoing ClientMappingDictPayload without aliasing the
// router's live map.
func (m *ClientMapping) Snapshot() map[string]map[string]int64 {
	out := make(map[string]map[string]int64, len(m.entries))
	for client, routers := range m.entries {
		inner := make(map[string]int64, len(routers))
		for r, exp := range routers {
			inner[r] = exp
		}
		out[client] = inner
	}
	return out
}
