// README: Planning store tests (reindex invariant, scenarios, fan-out).
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"routesync/internal/types"
)

func wp(addr string, lat, lng float64) types.Waypoint {
	return types.Waypoint{Address: addr, Latitude: lat, Longitude: lng}
}

func assertDense(t *testing.T, state RouteState) {
	t.Helper()
	for i, w := range state.Waypoints {
		if w.Index != i {
			t.Fatalf("waypoint %d has index %d, want %d", i, w.Index, i)
		}
	}
}

// TestReindexInvariant drives a mixed sequence of mutations and checks that
// indices stay dense and ordered after every single one.
func TestReindexInvariant(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())

	for i := 0; i < 5; i++ {
		state, err := store.Add(ctx, wp(fmt.Sprintf("stop-%d", i), float64(i), float64(-i)))
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		assertDense(t, state)
	}

	state, err := store.Remove(ctx, 2)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	assertDense(t, state)
	if len(state.Waypoints) != 4 {
		t.Fatalf("len = %d, want 4", len(state.Waypoints))
	}

	// Reverse the remaining waypoints; indices in the input are stale on
	// purpose, ReplaceAll must reassign them.
	reversed := make([]types.Waypoint, 0, len(state.Waypoints))
	for i := len(state.Waypoints) - 1; i >= 0; i-- {
		reversed = append(reversed, state.Waypoints[i])
	}
	state, err = store.ReplaceAll(ctx, reversed)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	assertDense(t, state)
	if state.Waypoints[0].Address != "stop-4" {
		t.Fatalf("first waypoint = %s, want stop-4", state.Waypoints[0].Address)
	}

	state, err = store.Remove(ctx, 0)
	if err != nil {
		t.Fatalf("remove head: %v", err)
	}
	assertDense(t, state)

	state, err = store.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(state.Waypoints) != 0 {
		t.Fatalf("after clear len = %d, want 0", len(state.Waypoints))
	}
}

// TestAddRemoveScenario: empty → ADD A → ADD B → REMOVE 0 leaves exactly B
// at index 0.
func TestAddRemoveScenario(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())

	if _, err := store.Add(ctx, wp("A", -30.0, -51.0)); err != nil {
		t.Fatalf("add A: %v", err)
	}
	if _, err := store.Add(ctx, wp("B", -30.1, -51.1)); err != nil {
		t.Fatalf("add B: %v", err)
	}
	state, err := store.Remove(ctx, 0)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(state.Waypoints) != 1 {
		t.Fatalf("len = %d, want 1", len(state.Waypoints))
	}
	got := state.Waypoints[0]
	if got.Index != 0 || got.Address != "B" || got.Latitude != -30.1 || got.Longitude != -51.1 {
		t.Fatalf("unexpected waypoint: %+v", got)
	}
}

func TestRemoveOutOfRange(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())
	if _, err := store.Add(ctx, wp("A", 1, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	for _, idx := range []int{-1, 1, 99} {
		if _, err := store.Remove(ctx, idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("Remove(%d) = %v, want ErrIndexOutOfRange", idx, err)
		}
	}

	state, err := store.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(state.Waypoints) != 1 {
		t.Fatalf("rejected removes mutated state: %+v", state.Waypoints)
	}
}

func TestClearIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())

	if _, err := store.Add(ctx, wp("A", 1, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	poly := "abc123"
	if _, err := store.SetPolyline(ctx, &poly); err != nil {
		t.Fatalf("set polyline: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := store.Clear(ctx); err != nil {
			t.Fatalf("clear %d: %v", i, err)
		}
		state, err := store.Current(ctx)
		if err != nil {
			t.Fatalf("current: %v", err)
		}
		if len(state.Waypoints) != 0 {
			t.Fatalf("waypoints = %v, want empty", state.Waypoints)
		}
		if state.EncodedPolyline != nil {
			t.Fatalf("polyline = %q, want nil", *state.EncodedPolyline)
		}
	}
}

// TestCurrentWithoutDocument: a fresh store yields an empty snapshot, never
// an error.
func TestCurrentWithoutDocument(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	state, err := store.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if state.ID != SessionID || len(state.Waypoints) != 0 || state.EncodedPolyline != nil {
		t.Fatalf("unexpected empty state: %+v", state)
	}
}

// TestSubscribersSeeEveryCommit: every subscriber observes every committed
// snapshot, with identical content and in commit order.
func TestSubscribersSeeEveryCommit(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())

	chA, cancelA := store.Subscribe()
	chB, cancelB := store.Subscribe()
	defer cancelA()
	defer cancelB()

	if _, err := store.Add(ctx, wp("A", 1, 1)); err != nil {
		t.Fatalf("add A: %v", err)
	}
	if _, err := store.Add(ctx, wp("B", 2, 2)); err != nil {
		t.Fatalf("add B: %v", err)
	}
	if _, err := store.Remove(ctx, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}

	for i := 0; i < 3; i++ {
		a := <-chA
		b := <-chB
		ja, _ := json.Marshal(a)
		jb, _ := json.Marshal(b)
		if string(ja) != string(jb) {
			t.Fatalf("update %d differs between subscribers:\n%s\n%s", i, ja, jb)
		}
	}
}

// TestConcurrentAdds: adds from many goroutines must serialize; run with -race.
func TestConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.Add(ctx, wp(fmt.Sprintf("c-%d", i), float64(i), 0)); err != nil {
				t.Errorf("add: %v", err)
			}
		}(i)
	}
	wg.Wait()

	state, err := store.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(state.Waypoints) != n {
		t.Fatalf("len = %d, want %d (lost update)", len(state.Waypoints), n)
	}
	assertDense(t, state)
}
