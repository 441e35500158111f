package types

// AgentResponse is the shape every event-ingestion endpoint answers with:
// which agent handled the event, what it said, and what it suggests doing.
type AgentResponse struct {
	AgentName       string `json:"agentName"`
	Message         string `json:"message"`
	SuggestedAction string `json:"suggestedAction"`
}

// ErrorResponse carries a human-readable error detail. Clients surface
// Detail verbatim, so it must never contain internal state.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func NewError(detail string) ErrorResponse {
	return ErrorResponse{Detail: detail}
}

// ChatEventRequest is the body of POST /events/chat.
type ChatEventRequest struct {
	SubjectID string `json:"subjectId" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// WearableEventRequest is the body of POST /events/wearable.
type WearableEventRequest struct {
	SubjectID     string  `json:"subjectId"`
	DeviceType    string  `json:"deviceType"`
	RecoveryScore float64 `json:"recoveryScore"`
	HRV           float64 `json:"hrv,omitempty"`
	SleepHours    float64 `json:"sleepHours,omitempty"`
}

// VisionEventRequest is the body of POST /events/vision. Exactly one of
// ImageBase64/VideoBase64 is expected; the data: URL prefix must already be
// stripped by the caller.
type VisionEventRequest struct {
	DetectedEquipment []string `json:"detectedEquipment"`
	UserQuery         string   `json:"userQuery"`
	ImageBase64       string   `json:"imageBase64,omitempty"`
	VideoBase64       string   `json:"videoBase64,omitempty"`
}

// TrainerMessageRequest is the body of PATCH /users/clients/{id}/message.
type TrainerMessageRequest struct {
	Message             string `json:"message" binding:"required"`
	SendExternalChannel bool   `json:"sendExternalChannel"`
}

// RegisterRequest and LoginRequest are the mock identity service bodies.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by /auth/login and /auth/register.
type TokenResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
}
