package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/AliNMackie/blackcard-concierge-ai/models"
)

// Status describes the feed session's current condition.
type Status int

const (
	// StatusLoading: nothing fetched yet.
	StatusLoading Status = iota
	// StatusReady: last refresh succeeded.
	StatusReady
	// StatusError: last refresh failed transiently; items are stale but
	// still shown. Non-blocking.
	StatusError
	// StatusDenied: the server answered 403. Rendered as access denied,
	// not retried silently.
	StatusDenied
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	case StatusDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session handed to subscribers.
// Items preserve server delivery order (most recent first).
type Snapshot struct {
	Items           []models.Event
	Status          Status
	LastRefreshedAt time.Time
}

// Session maintains the locally cached event feed with
// stale-while-revalidate semantics: previously fetched items stay visible
// while a refresh is in flight, and a transient fetch failure degrades to
// the stale (possibly empty) view instead of an error page. The displayed
// list is owned exclusively by the session; the only outside mutation is
// the optimistic channel's transient synthetic entry, which it alone
// inserts and removes.
type Session struct {
	api   *API
	limit int

	mu            sync.RWMutex
	items         []models.Event
	status        Status
	lastRefreshed time.Time
	subs          map[chan Snapshot]struct{}

	group singleflight.Group
	kick  chan struct{}
}

// NewSession creates a feed session fetching up to limit events per
// refresh.
func NewSession(api *API, limit int) *Session {
	return &Session{
		api:    api,
		limit:  limit,
		status: StatusLoading,
		subs:   make(map[chan Snapshot]struct{}),
		kick:   make(chan struct{}, 1),
	}
}

// Refresh revalidates the feed. Concurrent callers coalesce onto a single
// network call: a refresh already in flight satisfies every trigger that
// arrives during its lifetime. The returned error is non-nil only for the
// authorization-denied case; transient failures soft-fail to the stale
// view and are logged, not raised.
func (s *Session) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("refresh", func() (interface{}, error) {
		return nil, s.doRefresh(ctx)
	})
	return err
}

func (s *Session) doRefresh(ctx context.Context) error {
	items, err := s.api.FetchEvents(ctx, s.limit)

	s.mu.Lock()
	switch {
	case errors.Is(err, ErrAuthorizationDenied):
		// Items remain whatever was last known.
		s.status = StatusDenied
	case err != nil:
		slog.Warn("feed refresh failed", "err", err)
		s.status = StatusError
	default:
		s.items = items
		s.status = StatusReady
		s.lastRefreshed = time.Now()
	}
	s.mu.Unlock()
	s.publish()

	if errors.Is(err, ErrAuthorizationDenied) {
		return ErrAuthorizationDenied
	}
	return nil
}

// Subscribe starts periodic revalidation and returns a channel of
// snapshots. A snapshot is delivered after every state change; slow
// consumers only ever miss intermediate states, never the latest. The
// subscription's timers stop when ctx is cancelled, and the channel
// closes.
func (s *Session) Subscribe(ctx context.Context, interval time.Duration) <-chan Snapshot {
	out := make(chan Snapshot, 1)
	s.mu.Lock()
	s.subs[out] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.subs, out)
			s.mu.Unlock()
			close(out)
		}()

		_ = s.Refresh(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = s.Refresh(ctx)
			case <-s.kick:
				_ = s.Refresh(ctx)
			}
		}
	}()
	return out
}

// RequestRefresh asks the active subscription to revalidate now. It never
// blocks; a revalidation request that arrives while one is already queued
// collapses into it.
func (s *Session) RequestRefresh() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Focus is the window-regained-focus revalidation trigger.
func (s *Session) Focus() { s.RequestRefresh() }

// Reconnect is the network-restored revalidation trigger.
func (s *Session) Reconnect() { s.RequestRefresh() }

// Snapshot returns the current view.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	items := make([]models.Event, len(s.items))
	copy(items, s.items)
	return Snapshot{Items: items, Status: s.status, LastRefreshedAt: s.lastRefreshed}
}

// Transcript returns the items oldest-first, the order a chat view reads
// in. The server order is preserved internally so this stays
// deterministic.
func (s *Session) Transcript() []models.Event {
	snap := s.Snapshot()
	out := make([]models.Event, len(snap.Items))
	for i, e := range snap.Items {
		out[len(snap.Items)-1-i] = e
	}
	return out
}

// insertLocal prepends an optimistic entry. Only the message channel calls
// this, strictly before its network send.
func (s *Session) insertLocal(e models.Event) {
	s.mu.Lock()
	s.items = append([]models.Event{e}, s.items...)
	s.mu.Unlock()
	s.publish()
}

// removeLocal drops an entry by id; a no-op when a refresh already
// superseded it.
func (s *Session) removeLocal(id int64) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, e := range s.items {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.items = kept
	s.mu.Unlock()
	s.publish()
}

// publish delivers the latest snapshot to every subscriber, latest-wins:
// an undelivered older snapshot is replaced rather than blocking.
func (s *Session) publish() {
	s.mu.RLock()
	snap := s.snapshotLocked()
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	s.mu.RUnlock()
}
