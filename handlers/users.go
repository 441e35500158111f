package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AliNMackie/blackcard-concierge-ai/models"
	"github.com/AliNMackie/blackcard-concierge-ai/pkg/events"
	"github.com/AliNMackie/blackcard-concierge-ai/pkg/notify"
	"github.com/AliNMackie/blackcard-concierge-ai/repository"
	"github.com/AliNMackie/blackcard-concierge-ai/types"
)

type UsersHandler struct {
	users    *repository.UsersRepository
	events   *repository.EventsRepository
	notifier notify.Notifier
}

func NewUsersHandler(users *repository.UsersRepository, eventsRepo *repository.EventsRepository) *UsersHandler {
	return &UsersHandler{users: users, events: eventsRepo}
}

func (h *UsersHandler) WithNotifier(n notify.Notifier) *UsersHandler {
	h.notifier = n
	return h
}

// Me returns the authenticated user's profile.
func (h *UsersHandler) Me(c *gin.Context) {
	u, err := h.users.GetByID(c.GetString("subjectId"))
	if err != nil {
		c.JSON(http.StatusNotFound, types.NewError("User not found"))
		return
	}
	c.JSON(http.StatusOK, u)
}

// TrainerMessage delivers a trainer-authored message to a client. The
// message is recorded as a trainerMessage event; when SendExternalChannel
// is set the delivery is mirrored to the out-of-band channel (stubbed here,
// the mock has no messaging provider).
func (h *UsersHandler) TrainerMessage(c *gin.Context) {
	if c.GetString("role") != models.RoleTrainer {
		c.JSON(http.StatusForbidden, types.NewError("Trainer access required"))
		return
	}
	clientID := c.Param("id")
	var req types.TrainerMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewError("message is required"))
		return
	}
	h.users.EnsureUser(clientID)

	stored := h.events.Append(models.Event{
		SubjectID: clientID,
		Kind:      models.KindTrainerMessage,
		Payload: map[string]any{
			"message":             req.Message,
			"role":                "trainer",
			"sendExternalChannel": req.SendExternalChannel,
		},
		Decision:  "DELIVERED",
		Narrative: req.Message,
	})
	if req.SendExternalChannel {
		slog.Info("external channel mirror", "clientId", clientID, "eventId", stored.ID)
	}
	if h.notifier != nil {
		h.notifier.NotifySubject(clientID, events.NewEventCreated(stored.ID, clientID, stored.Kind))
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent", "eventId": stored.ID})
}

// ClientMessages returns the message transcript (chat turns and trainer
// messages) for one client, most recent first.
func (h *UsersHandler) ClientMessages(c *gin.Context) {
	clientID := c.Param("id")
	role := c.GetString("role")
	if role != models.RoleTrainer && c.GetString("subjectId") != clientID {
		c.JSON(http.StatusForbidden, types.NewError("Not your transcript"))
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	chat := h.events.ListKind(clientID, models.KindChat, limit)
	trainer := h.events.ListKind(clientID, models.KindTrainerMessage, limit)
	merged := append(chat, trainer...)
	// Re-sort the merged kinds newest first, same tie-break as the feed.
	out := repository.SortEventsDesc(merged)
	if len(out) > limit {
		out = out[:limit]
	}
	c.JSON(http.StatusOK, out)
}

// ToggleTravel flips travel mode for the authenticated user.
func (h *UsersHandler) ToggleTravel(c *gin.Context) {
	traveling, err := h.users.ToggleTravel(c.GetString("subjectId"))
	if err != nil {
		c.JSON(http.StatusNotFound, types.NewError("User not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"isTraveling": traveling})
}

// TravelStatus reports the current travel flag.
func (h *UsersHandler) TravelStatus(c *gin.Context) {
	u, err := h.users.GetByID(c.GetString("subjectId"))
	if err != nil {
		c.JSON(http.StatusNotFound, types.NewError("User not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"isTraveling": u.IsTraveling})
}

// Wipe implements right-to-be-forgotten: all of the subject's events are
// deleted and the profile reset to defaults. The account shell is kept so
// the id stays routable.
func (h *UsersHandler) Wipe(c *gin.Context) {
	if c.GetString("role") != models.RoleTrainer {
		c.JSON(http.StatusForbidden, types.NewError("Trainer access required"))
		return
	}
	userID := c.Param("id")
	dropped := h.events.DeleteBySubject(userID)
	if err := h.users.ResetProfile(userID); err != nil {
		c.JSON(http.StatusNotFound, types.NewError("User not found"))
		return
	}
	slog.Info("gdpr wipe completed", "userId", userID, "eventsDropped", dropped)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "All user data scrubbed."})
}
