package events

// EventCreated is pushed over the notification channel whenever a new
// domain event is recorded. It carries only identifiers; consumers are
// expected to refetch the feed rather than trust pushed payloads.
// The struct is intentionally small and versionable; changes should be additive.
type EventCreated struct {
	Type      string `json:"type"`
	EventID   int64  `json:"eventId"`
	SubjectID string `json:"subjectId"`
	Kind      string `json:"kind"`
}

const TypeEventCreated = "eventCreated"

func NewEventCreated(eventID int64, subjectID, kind string) EventCreated {
	return EventCreated{
		Type:      TypeEventCreated,
		EventID:   eventID,
		SubjectID: subjectID,
		Kind:      kind,
	}
}
