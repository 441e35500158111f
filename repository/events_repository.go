package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/AliNMackie/blackcard-concierge-ai/models"
)

// EventsRepository stores the event log in memory. The mock backend is
// deliberately stateless across restarts: the dashboard only ever needs a
// recent window of events, and seeding repopulates it on boot.
type EventsRepository struct {
	mu     sync.RWMutex
	events []models.Event
	nextID int64
}

func NewEventsRepository() *EventsRepository {
	return &EventsRepository{nextID: 1}
}

// Append records an event, assigning the next positive id and stamping
// OccurredAt if the caller left it zero. The stored copy is returned.
func (r *EventsRepository) Append(e models.Event) models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID
	r.nextID++
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	r.events = append(r.events, e)
	return e
}

// List returns up to limit events, most recent first. When subjectIDs is
// non-nil only events owned by one of those subjects are included; a nil
// filter means all subjects (trainer God Mode view).
func (r *EventsRepository) List(limit int, subjectIDs []string) []models.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var allowed map[string]struct{}
	if subjectIDs != nil {
		allowed = make(map[string]struct{}, len(subjectIDs))
		for _, id := range subjectIDs {
			allowed[id] = struct{}{}
		}
	}

	out := make([]models.Event, 0, limit)
	for _, e := range r.events {
		if allowed != nil {
			if _, ok := allowed[e.SubjectID]; !ok {
				continue
			}
		}
		out = append(out, e)
	}
	// Most recent first; ties broken by id so the order is deterministic.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ListKind returns up to limit events of one kind for a subject, most
// recent first.
func (r *EventsRepository) ListKind(subjectID, kind string, limit int) []models.Event {
	all := r.List(0, []string{subjectID})
	out := make([]models.Event, 0, limit)
	for _, e := range all {
		if e.Kind == kind {
			out = append(out, e)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// SortEventsDesc orders events most recent first with the same tie-break
// List uses, so merged slices stay deterministic.
func SortEventsDesc(in []models.Event) []models.Event {
	out := make([]models.Event, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// DeleteBySubject removes every event owned by the subject and reports how
// many were dropped. Used by the GDPR wipe endpoint.
func (r *EventsRepository) DeleteBySubject(subjectID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.events[:0]
	dropped := 0
	for _, e := range r.events {
		if e.SubjectID == subjectID {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return dropped
}
