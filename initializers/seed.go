package initializers

import (
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AliNMackie/blackcard-concierge-ai/agent"
	"github.com/AliNMackie/blackcard-concierge-ai/models"
	"github.com/AliNMackie/blackcard-concierge-ai/repository"
	"github.com/AliNMackie/blackcard-concierge-ai/types"
)

// SeedDemoData is called once on application start so a fresh instance has
// something to show: two demo clients with a recent slice of wearable,
// vision and chat history matching what the dashboard renders.
func SeedDemoData(users *repository.UsersRepository, events *repository.EventsRepository) {
	users.EnsureUser("client-1")
	users.EnsureUser("client-2")
	now := time.Now().UTC()

	events.Append(models.Event{
		SubjectID:  "client-1",
		Kind:       models.KindWearable,
		Payload:    map[string]any{"recoveryScore": 42.0, "deviceType": "whoop"},
		Decision:   agent.DecisionRed,
		Narrative:  "Your recovery is critically low (42). Intervention: Day off.",
		OccurredAt: now.Add(-30 * time.Minute),
	})
	events.Append(models.Event{
		SubjectID:  "client-1",
		Kind:       models.KindVision,
		Payload:    map[string]any{"detectedEquipment": []string{"Kettlebells"}},
		Decision:   agent.DecisionWorkoutGenerated,
		Narrative:  "Detected Kettlebells. Generating HIIT flows.",
		OccurredAt: now.Add(-2 * time.Hour),
	})
	events.Append(models.Event{
		SubjectID:  "client-1",
		Kind:       models.KindChat,
		Payload:    map[string]any{"message": "Reschedule to 6pm", "role": "user"},
		Decision:   agent.DecisionAck,
		Narrative:  "Understood. Notifying your Personal Trainer.",
		OccurredAt: now.Add(-5 * time.Hour),
	})
	events.Append(models.Event{
		SubjectID:  "client-2",
		Kind:       models.KindWearable,
		Payload:    map[string]any{"recoveryScore": 95.0, "deviceType": "oura"},
		Decision:   agent.DecisionGreen,
		Narrative:  "Excellent recovery. Go heavy today.",
		OccurredAt: now.Add(-12 * time.Hour),
	})
}

// StartDemoStream schedules a synthetic wearable reading on a cron (enabled
// with DEMO_STREAM=true, schedule override via DEMO_STREAM_CRON). It stands
// in for real device webhooks so the feed keeps moving during demos. The
// returned stop function tears down the cron ticker.
func StartDemoStream(users *repository.UsersRepository, events *repository.EventsRepository, concierge *agent.Concierge) (stop func()) {
	if !strings.EqualFold(os.Getenv("DEMO_STREAM"), "true") {
		return func() {}
	}
	schedule := os.Getenv("DEMO_STREAM_CRON")
	if schedule == "" {
		schedule = "@every 1m"
	}

	c := cron.New()
	subjects := []string{"client-1", "client-2"}
	_, err := c.AddFunc(schedule, func() {
		subject := subjects[rand.Intn(len(subjects))]
		req := types.WearableEventRequest{
			SubjectID:     subject,
			DeviceType:    "whoop",
			RecoveryScore: float64(20 + rand.Intn(80)),
		}
		resp := concierge.HandleWearable(req)
		users.EnsureUser(subject)
		events.Append(models.Event{
			SubjectID: subject,
			Kind:      models.KindWearable,
			Payload:   map[string]any{"recoveryScore": req.RecoveryScore, "deviceType": req.DeviceType},
			Decision:  resp.SuggestedAction,
			Narrative: resp.Message,
		})
		slog.Info("demo stream event", "subjectId", subject, "score", req.RecoveryScore)
	})
	if err != nil {
		slog.Error("invalid demo stream schedule", "schedule", schedule, "err", err)
		return func() {}
	}
	c.Start()
	slog.Info("demo stream started", "schedule", schedule)
	return func() { c.Stop() }
}
