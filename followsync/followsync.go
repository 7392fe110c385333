// Package followsync keeps one viewer's (following, followersCount) tuple for
// one event live across concurrent edits by other viewers.
//
// The count a synchronizer reports is derived only from the last authoritative
// read plus +1/-1 deltas for observed follow changes not attributable to the
// viewer; the viewer's own toggles are applied optimistically at call time and
// their later notifications flip only the following flag, so a toggle is never
// counted twice.
package followsync

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"Foresight/feed"
	"Foresight/models"
)

var (
	ErrUnauthenticated = errors.New("a wallet identity is required to follow")
)

const (
	statusAttempts = 3
	statusBackoff  = 500 * time.Millisecond
)

// Status is the point-in-time follow tuple for one viewer and one event.
type Status struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followersCount"`
}

// Store is the authoritative follow relation.
type Store interface {
	FollowStatus(ctx context.Context, eventID uint, viewer string) (Status, error)
	ToggleFollow(ctx context.Context, eventID uint, viewer string) (bool, error)
}

// Synchronizer tracks the live tuple for a single mounted event view. It is
// created on view mount and must be closed on unmount; its feed subscription
// never outlives it.
type Synchronizer struct {
	store   Store
	hub     *feed.Hub
	eventID uint
	viewer  string

	mu sync.Mutex
	st Status

	sub  *feed.Subscription
	done chan struct{}
}

func New(store Store, hub *feed.Hub, eventID uint, viewer string) *Synchronizer {
	return &Synchronizer{
		store:   store,
		hub:     hub,
		eventID: eventID,
		viewer:  strings.ToLower(strings.TrimSpace(viewer)),
	}
}

// Load fetches the authoritative status, retrying transient failures a fixed
// number of times with a fixed backoff. After the last attempt it returns the
// degraded default (not following, zero count) together with the error, so a
// caller can render something instead of blocking.
func (s *Synchronizer) Load(ctx context.Context) (Status, error) {
	var lastErr error
	for attempt := 0; attempt < statusAttempts; attempt++ {
		st, err := s.store.FollowStatus(ctx, s.eventID, s.viewer)
		if err == nil {
			s.mu.Lock()
			s.st = st
			s.mu.Unlock()
			return st, nil
		}
		lastErr = err
		if attempt < statusAttempts-1 {
			select {
			case <-time.After(statusBackoff):
			case <-ctx.Done():
				return Status{}, ctx.Err()
			}
		}
	}
	degraded := Status{}
	s.mu.Lock()
	s.st = degraded
	s.mu.Unlock()
	return degraded, lastErr
}

// Toggle flips the viewer's follow state (logical XOR, not set-to). The local
// tuple is updated optimistically before the store call resolves and reverted
// if the write fails, leaving the prior state unchanged.
func (s *Synchronizer) Toggle(ctx context.Context) (bool, error) {
	if s.viewer == "" {
		return false, ErrUnauthenticated
	}

	s.mu.Lock()
	prev := s.st
	optimistic := !prev.Following
	s.st.Following = optimistic
	if optimistic {
		s.st.FollowersCount = prev.FollowersCount + 1
	} else if s.st.FollowersCount > 0 {
		s.st.FollowersCount = prev.FollowersCount - 1
	}
	s.mu.Unlock()

	following, err := s.store.ToggleFollow(ctx, s.eventID, s.viewer)
	if err != nil {
		s.mu.Lock()
		s.st = prev
		s.mu.Unlock()
		return prev.Following, err
	}

	if following != optimistic {
		// A concurrent toggle won the race; trust the store's answer.
		s.mu.Lock()
		s.st.Following = following
		s.mu.Unlock()
	}
	return following, nil
}

// Status returns the current local tuple.
func (s *Synchronizer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// Start opens the change feed for this event's follow rows and applies
// incoming changes until Close is called.
func (s *Synchronizer) Start() {
	if s.sub != nil {
		return
	}
	eventID := s.eventID
	s.sub = s.hub.Subscribe(feed.TableEventFollows, func(c feed.Change) bool {
		row, ok := c.Row.(models.EventFollow)
		return ok && row.EventID == eventID
	})
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		for change := range s.sub.C {
			s.Apply(change)
		}
	}()
}

// Apply folds one observed change into the local tuple. Changes attributable
// to the viewer (case-insensitive wallet comparison) adjust only the following
// flag; everyone else's adjust only the count, floored at zero.
func (s *Synchronizer) Apply(change feed.Change) {
	row, ok := change.Row.(models.EventFollow)
	if !ok || row.EventID != s.eventID {
		return
	}
	self := s.viewer != "" && strings.EqualFold(row.UserID, s.viewer)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch change.Kind {
	case feed.KindInsert:
		if self {
			s.st.Following = true
		} else {
			s.st.FollowersCount++
		}
	case feed.KindDelete:
		if self {
			s.st.Following = false
		} else if s.st.FollowersCount > 0 {
			s.st.FollowersCount--
		}
	}
}

// Close releases the feed subscription; no work continues afterwards.
func (s *Synchronizer) Close() {
	if s.sub == nil {
		return
	}
	s.sub.Unsubscribe()
	<-s.done
	s.sub = nil
}
