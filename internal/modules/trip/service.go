// README: Trip service: finalize a route into groups and step through them.
package trip

import (
	"context"
	"errors"
	"time"

	"routesync/internal/types"
)

var (
	ErrNoSession   = errors.New("no active trip session")
	ErrNoWaypoints = errors.New("no waypoints to finalize")
)

type Service struct {
	store        *Store
	maxGroupSize int
	now          func() time.Time
}

func NewService(store *Store, maxGroupSize int) *Service {
	if maxGroupSize <= 0 {
		maxGroupSize = MaxGroupSize
	}
	return &Service{store: store, maxGroupSize: maxGroupSize, now: time.Now}
}

func (s *Service) Current(ctx context.Context) (Session, bool, error) {
	return s.store.Current(ctx)
}

// Finalize copies the planning waypoints into a new NAVIGATING session,
// overwriting any previous session under the same id.
func (s *Service) Finalize(ctx context.Context, id string, waypoints []types.Waypoint) (Session, error) {
	if len(waypoints) == 0 {
		return Session{}, ErrNoWaypoints
	}
	now := s.now().Unix()
	session := Session{
		ID:               id,
		Waypoints:        append([]types.Waypoint(nil), waypoints...),
		Groups:           GenerateGroups(waypoints, s.maxGroupSize),
		ActiveGroupIndex: 0,
		Status:           StatusNavigating,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// CompleteActiveGroup marks the active group COMPLETED and activates the
// next one, or completes the whole session after the last group.
func (s *Service) CompleteActiveGroup(ctx context.Context) (Session, error) {
	return s.store.Update(ctx, func(session Session) (Session, error) {
		if session.Status == StatusCompleted {
			return Session{}, ErrNoSession
		}
		groups := append([]Group(nil), session.Groups...)
		for i := range groups {
			switch i {
			case session.ActiveGroupIndex:
				groups[i].Status = GroupCompleted
			case session.ActiveGroupIndex + 1:
				groups[i].Status = GroupActive
			}
		}
		session.Groups = groups
		session.ActiveGroupIndex++
		if session.ActiveGroupIndex >= len(groups) {
			session.Status = StatusCompleted
		} else {
			session.Status = StatusNavigating
		}
		session.UpdatedAt = s.now().Unix()
		return session, nil
	})
}
