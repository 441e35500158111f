package client

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsReconnectBaseDelay = 1 * time.Second
	wsReconnectMaxDelay  = 30 * time.Second
)

// LiveRefresher listens on the notification websocket and turns every
// pushed notice into a feed revalidation. Pushed payloads are never
// trusted as data; they only trigger a refetch, so a missed notice costs
// at most one polling interval.
type LiveRefresher struct {
	wsURL   string
	creds   *AuthProvider
	session *Session
}

// NewLiveRefresher builds a refresher for the session. The websocket URL
// is derived from the resolver's base.
func NewLiveRefresher(resolver Resolver, creds *AuthProvider, session *Session) *LiveRefresher {
	base := resolver.Base()
	base = strings.TrimSuffix(base, MockPrefix)
	wsURL := strings.Replace(base, "http", "ws", 1) + "/ws"
	return &LiveRefresher{wsURL: wsURL, creds: creds, session: session}
}

// Run connects and dispatches until ctx is cancelled, reconnecting with
// exponential backoff. Connection failures are soft: polling still covers
// the feed, so this logs and retries rather than erroring out.
func (l *LiveRefresher) Run(ctx context.Context) {
	delay := wsReconnectBaseDelay
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		header := http.Header{}
		cred := l.creds.Credential(ctx)
		if cred.BearerToken != "" {
			header.Set("Authorization", "Bearer "+cred.BearerToken)
		}
		if cred.APIKey != "" {
			header.Set("X-Elite-Key", cred.APIKey)
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.wsURL, header)
		if err != nil {
			slog.Debug("ws dial failed", "err", err, "retryIn", delay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			if delay *= 2; delay > wsReconnectMaxDelay {
				delay = wsReconnectMaxDelay
			}
			continue
		}
		delay = wsReconnectBaseDelay
		l.session.Reconnect()

		// Close the connection when ctx ends so ReadMessage unblocks.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-done:
			}
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
			l.session.RequestRefresh()
		}
		close(done)
		_ = conn.Close()
	}
}
