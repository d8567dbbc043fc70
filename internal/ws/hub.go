// README: Connection registry and broadcaster for the live sync protocol.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"routesync/internal/modules/planner"
	syncproto "routesync/internal/modules/sync"
	"routesync/internal/modules/trip"
)

// Hub tracks every open client connection and fans each state change out to
// all of them, serialized once per change. Planner snapshots arrive through
// the store subscription; trip sessions are pushed explicitly as SYNC_STATE.
type Hub struct {
	store *planner.Store

	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewHub(store *planner.Store) *Hub {
	return &Hub{
		store:   store,
		clients: make(map[*Client]struct{}),
	}
}

// Run relays planner snapshots to all registered clients until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	updates, cancel := h.store.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case state := <-updates:
			payload, err := json.Marshal(state)
			if err != nil {
				log.Printf("ws: marshal snapshot: %v", err)
				continue
			}
			h.broadcast(payload)
		}
	}
}

// BroadcastTrip pushes a SYNC_STATE envelope with the full trip session to
// every registered client.
func (h *Hub) BroadcastTrip(session trip.Session) {
	data, err := json.Marshal(session)
	if err != nil {
		log.Printf("ws: marshal trip session: %v", err)
		return
	}
	payload, err := json.Marshal(syncproto.Message{Event: syncproto.EventSyncState, Data: data})
	if err != nil {
		log.Printf("ws: marshal sync envelope: %v", err)
		return
	}
	h.broadcast(payload)
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// broadcast delivers payload to a snapshot of the registry, so concurrent
// register/unregister is safe during iteration. A client whose send buffer is
// full gets dropped; one slow connection never stalls the rest.
func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if !c.enqueue(payload) {
			log.Print("ws: client send buffer full, dropping connection")
			h.Unregister(c)
			c.shutdown()
		}
	}
}
