// README: Hub tests: fan-out identity and slow-client isolation.
package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"routesync/internal/modules/planner"
	syncproto "routesync/internal/modules/sync"
	"routesync/internal/modules/trip"
	"routesync/internal/types"
)

func recvPayload(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.send:
		return payload
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

// TestFanOutIdenticalPayloads: a mutation observed by one connection is
// observed byte-identically by every other registered connection.
func TestFanOutIdenticalPayloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := planner.NewStore(planner.NewMemoryBackend())
	hub := NewHub(store)
	go hub.Run(ctx)

	clients := []*Client{newClient(nil), newClient(nil), newClient(nil)}
	for _, c := range clients {
		hub.Register(c)
	}
	defer func() {
		for _, c := range clients {
			hub.Unregister(c)
		}
	}()

	if _, err := store.Add(ctx, types.Waypoint{Address: "A", Latitude: 1, Longitude: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	first := recvPayload(t, clients[0])
	for _, c := range clients[1:] {
		if got := recvPayload(t, c); !bytes.Equal(got, first) {
			t.Fatalf("payloads differ:\n%s\n%s", first, got)
		}
	}

	var state planner.RouteState
	if err := json.Unmarshal(first, &state); err != nil {
		t.Fatalf("payload not a snapshot: %v", err)
	}
	if len(state.Waypoints) != 1 || state.Waypoints[0].Address != "A" {
		t.Fatalf("unexpected snapshot: %+v", state)
	}
}

func TestBroadcastTripEnvelope(t *testing.T) {
	store := planner.NewStore(planner.NewMemoryBackend())
	hub := NewHub(store)

	c := newClient(nil)
	hub.Register(c)
	defer hub.Unregister(c)

	hub.BroadcastTrip(trip.Session{
		ID:     "session",
		Status: trip.StatusNavigating,
		Groups: []trip.Group{{Index: 0, WaypointEndIndex: 2, Status: trip.GroupActive}},
	})

	payload := recvPayload(t, c)
	var msg syncproto.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if msg.Event != syncproto.EventSyncState {
		t.Fatalf("event = %s, want SYNC_STATE", msg.Event)
	}
	var session trip.Session
	if err := json.Unmarshal(msg.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Status != trip.StatusNavigating || len(session.Groups) != 1 {
		t.Fatalf("unexpected session: %+v", session)
	}
}

// TestSlowClientDropped: a client whose buffer is full is removed without
// stalling delivery to the others.
func TestSlowClientDropped(t *testing.T) {
	store := planner.NewStore(planner.NewMemoryBackend())
	hub := NewHub(store)

	slow := newClient(nil)
	fast := newClient(nil)
	hub.Register(slow)
	hub.Register(fast)
	defer hub.Unregister(fast)

	for i := 0; i < sendBufferSize; i++ {
		slow.send <- []byte("backlog")
	}

	hub.broadcast([]byte(`{"_id":"session"}`))

	if got := recvPayload(t, fast); !bytes.Equal(got, []byte(`{"_id":"session"}`)) {
		t.Fatalf("fast client got %s", got)
	}

	hub.mu.Lock()
	_, stillThere := hub.clients[slow]
	hub.mu.Unlock()
	if stillThere {
		t.Fatal("slow client still registered")
	}
	select {
	case <-slow.done:
	default:
		t.Fatal("slow client not shut down")
	}
}
