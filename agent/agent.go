package agent

import (
	"fmt"
	"strings"

	"github.com/AliNMackie/blackcard-concierge-ai/types"
)

// Decision labels attached to events by the concierge agents.
const (
	DecisionRed              = "RED"
	DecisionGreen            = "GREEN"
	DecisionAck              = "ACK"
	DecisionWorkoutGenerated = "WORKOUT_GENERATED"
	DecisionIntervention     = "INTERVENTION_SENT"
)

// recoveryRedThreshold is the score below which the recovery agent flags a
// client and prescribes backing off.
const recoveryRedThreshold = 50

// Concierge is the mock coaching brain. It produces deterministic, canned
// agent responses so the API surface behaves like the real system without
// any model calls behind it.
type Concierge struct{}

func New() *Concierge { return &Concierge{} }

// HandleWearable classifies a recovery score.
func (a *Concierge) HandleWearable(req types.WearableEventRequest) types.AgentResponse {
	if req.RecoveryScore < recoveryRedThreshold {
		return types.AgentResponse{
			AgentName:       "RecoveryAgent",
			Message:         fmt.Sprintf("Your recovery is critically low (%.0f). Intervention: Day off.", req.RecoveryScore),
			SuggestedAction: DecisionRed,
		}
	}
	return types.AgentResponse{
		AgentName:       "RecoveryAgent",
		Message:         fmt.Sprintf("Excellent recovery (%.0f). Go heavy today.", req.RecoveryScore),
		SuggestedAction: DecisionGreen,
	}
}

// HandleVision reacts to detected equipment. Media bytes never reach the
// agent; it only sees the detection summary.
func (a *Concierge) HandleVision(req types.VisionEventRequest) types.AgentResponse {
	if len(req.DetectedEquipment) > 0 {
		return types.AgentResponse{
			AgentName:       "VisionAgent",
			Message:         fmt.Sprintf("Detected %s. Generating a targeted session.", strings.Join(req.DetectedEquipment, ", ")),
			SuggestedAction: DecisionWorkoutGenerated,
		}
	}
	return types.AgentResponse{
		AgentName:       "VisionAgent",
		Message:         "Analyzing your setup. I'll adapt today's plan to the equipment I can see.",
		SuggestedAction: DecisionWorkoutGenerated,
	}
}

// HandleChat acknowledges a client message and routes it to the trainer.
func (a *Concierge) HandleChat(req types.ChatEventRequest) types.AgentResponse {
	msg := strings.ToLower(req.Message)
	switch {
	case strings.Contains(msg, "reschedule"):
		return types.AgentResponse{
			AgentName:       "ConciergeAgent",
			Message:         "Understood. Notifying your Personal Trainer about the schedule change.",
			SuggestedAction: DecisionAck,
		}
	case strings.Contains(msg, "pain") || strings.Contains(msg, "injur"):
		return types.AgentResponse{
			AgentName:       "ConciergeAgent",
			Message:         "Noted. I'm flagging this to your trainer and reducing load in your next session.",
			SuggestedAction: DecisionRed,
		}
	default:
		return types.AgentResponse{
			AgentName:       "ConciergeAgent",
			Message:         "Got it. Logged for your trainer.",
			SuggestedAction: DecisionAck,
		}
	}
}

// HandleIntervention ghostwrites a motivational nudge for a client.
func (a *Concierge) HandleIntervention(clientID string) types.AgentResponse {
	return types.AgentResponse{
		AgentName:       "Ghostwriter",
		Message:         fmt.Sprintf("Checking in on client %s: adherence is slipping, sending a personal nudge.", clientID),
		SuggestedAction: DecisionIntervention,
	}
}
