// README: Planning store: serialized read-modify-write over one document, with change fan-out.
package planner

import (
	"context"
	"errors"
	"sync"
	"time"

	"routesync/internal/types"
)

var ErrIndexOutOfRange = errors.New("waypoint index out of range")

// Backend persists the single planning document.
type Backend interface {
	Load(ctx context.Context) (RouteState, bool, error)
	Save(ctx context.Context, state RouteState) error
}

// Store owns the planning snapshot. Every mutator runs as one locked
// load-mutate-save sequence, so concurrent edits from different connections
// cannot interleave and clobber each other's reindexing. After a successful
// save the full resulting snapshot is published to all subscribers.
type Store struct {
	mu      sync.Mutex
	backend Backend
	now     func() time.Time

	subMu sync.Mutex
	subs  map[chan RouteState]struct{}
}

func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		now:     time.Now,
		subs:    make(map[chan RouteState]struct{}),
	}
}

// Subscribe registers a change listener. Each committed mutation delivers the
// resulting snapshot on the returned channel. The cancel func must be called
// when the subscriber goes away.
func (s *Store) Subscribe() (<-chan RouteState, func()) {
	ch := make(chan RouteState, 64)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()
	cancel := func() {
		s.subMu.Lock()
		delete(s.subs, ch)
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *Store) publish(state RouteState) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- state:
		default:
			// Subscriber is not draining; dropping beats blocking every
			// store mutation behind it.
		}
	}
}

// Current returns the snapshot, or a fresh empty one when no document
// exists yet. It never fails for the missing-document case.
func (s *Store) Current(ctx context.Context) (RouteState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) (RouteState, error) {
	state, ok, err := s.backend.Load(ctx)
	if err != nil {
		return RouteState{}, err
	}
	if !ok {
		return emptyState(s.now().Unix()), nil
	}
	if state.Waypoints == nil {
		state.Waypoints = []types.Waypoint{}
	}
	return state, nil
}

func (s *Store) commit(ctx context.Context, state RouteState) (RouteState, error) {
	state.ID = SessionID
	state.UpdatedAt = s.now().Unix()
	if err := s.backend.Save(ctx, state); err != nil {
		return RouteState{}, err
	}
	s.publish(state)
	return state, nil
}

// Add appends w at the end of the list, assigning it the next index.
func (s *Store) Add(ctx context.Context, w types.Waypoint) (RouteState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load(ctx)
	if err != nil {
		return RouteState{}, err
	}
	w.Index = len(state.Waypoints)
	state.Waypoints = append(state.Waypoints, w)
	return s.commit(ctx, state)
}

// Remove deletes the waypoint at index and reindexes the remainder.
func (s *Store) Remove(ctx context.Context, index int) (RouteState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load(ctx)
	if err != nil {
		return RouteState{}, err
	}
	if index < 0 || index >= len(state.Waypoints) {
		return RouteState{}, ErrIndexOutOfRange
	}
	state.Waypoints = types.Reindex(append(state.Waypoints[:index:index], state.Waypoints[index+1:]...))
	return s.commit(ctx, state)
}

// ReplaceAll swaps the whole list for newOrder, reindexed to 0..len-1.
// Used for reorder and optimizer results.
func (s *Store) ReplaceAll(ctx context.Context, newOrder []types.Waypoint) (RouteState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load(ctx)
	if err != nil {
		return RouteState{}, err
	}
	state.Waypoints = types.Reindex(newOrder)
	return s.commit(ctx, state)
}

// ReplaceAllWithPolyline swaps the list and the cached polyline in one commit.
func (s *Store) ReplaceAllWithPolyline(ctx context.Context, newOrder []types.Waypoint, polyline *string) (RouteState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load(ctx)
	if err != nil {
		return RouteState{}, err
	}
	state.Waypoints = types.Reindex(newOrder)
	state.EncodedPolyline = polyline
	return s.commit(ctx, state)
}

// SetPolyline updates only the cached polyline. nil clears the cache.
func (s *Store) SetPolyline(ctx context.Context, polyline *string) (RouteState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load(ctx)
	if err != nil {
		return RouteState{}, err
	}
	state.EncodedPolyline = polyline
	return s.commit(ctx, state)
}

// Clear resets the session to an empty list with no polyline.
func (s *Store) Clear(ctx context.Context) (RouteState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, emptyState(s.now().Unix()))
}
