package models

import "time"

// Event kinds emitted by the concierge. The set is open-ended: the sync
// layer treats Kind as an opaque string, these constants only cover what
// this service itself records.
const (
	KindWearable       = "wearable"
	KindVision         = "vision"
	KindChat           = "chat"
	KindTrainerMessage = "trainerMessage"
	KindIntervention   = "intervention"
)

// Event is a single recorded occurrence (biometric reading, chat turn,
// vision analysis, trainer message). Server-assigned ids are positive;
// negative ids are reserved for client-side optimistic entries and must
// never be persisted.
type Event struct {
	ID         int64          `json:"id"`
	SubjectID  string         `json:"subjectId"`
	Kind       string         `json:"kind"`
	Payload    map[string]any `json:"payload,omitempty"`
	Decision   string         `json:"decision,omitempty"`
	Narrative  string         `json:"narrative,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}
