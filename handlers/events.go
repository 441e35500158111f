package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/AliNMackie/blackcard-concierge-ai/agent"
	"github.com/AliNMackie/blackcard-concierge-ai/models"
	"github.com/AliNMackie/blackcard-concierge-ai/pkg/events"
	"github.com/AliNMackie/blackcard-concierge-ai/pkg/notify"
	"github.com/AliNMackie/blackcard-concierge-ai/repository"
	"github.com/AliNMackie/blackcard-concierge-ai/types"
)

const defaultEventLimit = 50

// redactedMedia replaces raw base64 media in persisted payloads. Raw frames
// must never land in the event log (GDPR).
const redactedMedia = "[REDACTED_GDPR_MEDIA]"

type EventsHandler struct {
	events    *repository.EventsRepository
	users     *repository.UsersRepository
	concierge *agent.Concierge
	notifier  notify.Notifier
}

func NewEventsHandler(eventsRepo *repository.EventsRepository, users *repository.UsersRepository, concierge *agent.Concierge) *EventsHandler {
	return &EventsHandler{events: eventsRepo, users: users, concierge: concierge}
}

func (h *EventsHandler) WithNotifier(n notify.Notifier) *EventsHandler {
	h.notifier = n
	return h
}

// List returns recent events, most recent first. Trainers authenticated via
// the API key see everything; trainers signed in normally see only their
// assigned clients; clients see their own feed.
func (h *EventsHandler) List(c *gin.Context) {
	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	subjectID := c.GetString("subjectId")
	role := c.GetString("role")

	var filter []string
	switch {
	case c.GetBool("apiKeyAuth"):
		filter = nil
	case role == models.RoleTrainer:
		filter = h.users.ClientIDs(subjectID)
		if len(filter) == 0 {
			c.JSON(http.StatusOK, []models.Event{})
			return
		}
	default:
		filter = []string{subjectID}
	}

	c.JSON(http.StatusOK, h.events.List(limit, filter))
}

// Chat handles a client chat turn: the concierge answers and the exchange
// is recorded as one chat event (payload carries the user text, narrative
// the agent reply).
func (h *EventsHandler) Chat(c *gin.Context) {
	var req types.ChatEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewError(err.Error()))
		return
	}
	h.users.EnsureUser(req.SubjectID)
	resp := h.concierge.HandleChat(req)
	h.record(models.Event{
		SubjectID: req.SubjectID,
		Kind:      models.KindChat,
		Payload:   map[string]any{"message": req.Message, "role": "user"},
		Decision:  resp.SuggestedAction,
		Narrative: resp.Message,
	})
	c.JSON(http.StatusOK, resp)
}

// Wearable ingests a biometric reading.
func (h *EventsHandler) Wearable(c *gin.Context) {
	var req types.WearableEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewError(err.Error()))
		return
	}
	if req.SubjectID == "" {
		req.SubjectID = c.GetString("subjectId")
	}
	h.users.EnsureUser(req.SubjectID)
	resp := h.concierge.HandleWearable(req)
	h.record(models.Event{
		SubjectID: req.SubjectID,
		Kind:      models.KindWearable,
		Payload: map[string]any{
			"deviceType":    req.DeviceType,
			"recoveryScore": req.RecoveryScore,
		},
		Decision:  resp.SuggestedAction,
		Narrative: resp.Message,
	})
	c.JSON(http.StatusOK, resp)
}

// Vision ingests a camera capture. The media arrives base64-encoded with
// any data: URL prefix already stripped; it is sniffed for its real type,
// then redacted before the event is persisted.
func (h *EventsHandler) Vision(c *gin.Context) {
	var req types.VisionEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewError(err.Error()))
		return
	}
	media := req.ImageBase64
	if media == "" {
		media = req.VideoBase64
	}
	if media == "" {
		c.JSON(http.StatusBadRequest, types.NewError("imageBase64 or videoBase64 is required"))
		return
	}
	raw, err := base64.StdEncoding.DecodeString(media)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewError("media is not valid base64"))
		return
	}
	mediaType := mimetype.Detect(raw).String()

	subjectID := c.GetString("subjectId")
	h.users.EnsureUser(subjectID)
	resp := h.concierge.HandleVision(req)
	h.record(models.Event{
		SubjectID: subjectID,
		Kind:      models.KindVision,
		Payload: map[string]any{
			"detectedEquipment": req.DetectedEquipment,
			"userQuery":         req.UserQuery,
			"mediaType":         mediaType,
			"media":             redactedMedia,
		},
		Decision:  resp.SuggestedAction,
		Narrative: resp.Message,
	})
	c.JSON(http.StatusOK, resp)
}

// Intervention lets a trainer fire the ghostwriter for a client.
func (h *EventsHandler) Intervention(c *gin.Context) {
	if c.GetString("role") != models.RoleTrainer {
		c.JSON(http.StatusForbidden, types.NewError("Trainer access required"))
		return
	}
	clientID := c.Param("clientId")
	h.users.EnsureUser(clientID)
	resp := h.concierge.HandleIntervention(clientID)
	h.record(models.Event{
		SubjectID: clientID,
		Kind:      models.KindIntervention,
		Decision:  resp.SuggestedAction,
		Narrative: resp.Message,
	})
	c.JSON(http.StatusOK, resp)
}

func (h *EventsHandler) record(e models.Event) models.Event {
	stored := h.events.Append(e)
	if h.notifier != nil {
		h.notifier.NotifySubject(stored.SubjectID, events.NewEventCreated(stored.ID, stored.SubjectID, stored.Kind))
	}
	return stored
}
