package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AliNMackie/blackcard-concierge-ai/models"
)

// Synthetic ids are negative so they can never collide with server ids
// (which are positive). They decrease monotonically from a clock-based
// value, so rapid sends within one millisecond stay unique.
var (
	synthMu   sync.Mutex
	lastSynth int64
)

func nextSyntheticID() int64 {
	synthMu.Lock()
	defer synthMu.Unlock()
	id := -time.Now().UnixMilli()
	if id >= lastSynth {
		id = lastSynth - 1
	}
	lastSynth = id
	return id
}

// Composer sends user-authored messages with immediate local feedback.
// Each send walks composing → sending (optimistic entry inserted) → either
// reconciled by a feed refresh or rolled back with the draft restored. The
// synthetic entry is never authoritative: it exists only between the
// insertion and the reconciliation/rollback.
type Composer struct {
	session *Session
	api     *API

	mu      sync.Mutex
	draft   string
	sending bool
}

func NewComposer(session *Session, api *API) *Composer {
	return &Composer{session: session, api: api}
}

// Send delivers text for the subject. The local insertion happens strictly
// before the network call; on failure the synthetic entry is removed by
// its id and the original input restored verbatim so nothing the user
// typed is lost. On success one feed refresh reconciles the optimistic
// entry with the server's confirmed record(s).
func (c *Composer) Send(ctx context.Context, subjectID, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	c.sending = true
	c.draft = ""
	c.mu.Unlock()

	id := nextSyntheticID()
	c.session.insertLocal(models.Event{
		ID:         id,
		SubjectID:  subjectID,
		Kind:       models.KindChat,
		Payload:    map[string]any{"message": trimmed, "role": "user"},
		OccurredAt: time.Now(),
	})

	_, err := c.api.SendChat(ctx, subjectID, trimmed)

	if err != nil {
		c.session.removeLocal(id)
		c.mu.Lock()
		c.draft = text
		c.sending = false
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	c.mu.Lock()
	c.sending = false
	c.mu.Unlock()

	// Reconcile: the refreshed feed carries the server's confirmed record,
	// superseding the synthetic entry. If the refresh itself soft-fails the
	// explicit removal below still upholds the invariant that no entry
	// stays optimistic forever; the confirmed record arrives with the next
	// successful poll.
	_ = c.session.Refresh(ctx)
	c.session.removeLocal(id)
	return nil
}

// Draft returns the composer's current draft text, restored after a
// failed send.
func (c *Composer) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraft replaces the draft, e.g. as the user types.
func (c *Composer) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
}

// Sending reports whether a send is in flight; the UI disables input
// while true.
func (c *Composer) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}
