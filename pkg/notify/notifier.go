package notify

import (
	"encoding/json"
	"log/slog"

	"github.com/AliNMackie/blackcard-concierge-ai/websocket"
)

// Notifier defines a minimal interface for pushing real-time notices about
// a subject's activity.
type Notifier interface {
	NotifySubject(subjectID string, event interface{})
}

// WSNotifier implements Notifier using a WebSocket Hub.
type WSNotifier struct {
	Hub *websocket.Hub
}

// NotifySubject serializes the event as JSON and delivers it to the
// subject's connections plus any trainer watchers.
func (n *WSNotifier) NotifySubject(subjectID string, event interface{}) {
	if n == nil || n.Hub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal notification", "err", err)
		return
	}
	n.Hub.NotifySubject(subjectID, payload)
}
