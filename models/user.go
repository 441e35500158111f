package models

import "time"

// User roles. Trainers see every client's events in God Mode; clients only
// see their own feed.
const (
	RoleClient  = "client"
	RoleTrainer = "trainer"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName,omitempty"`
	Role         string    `json:"role"`
	CoachStyle   string    `json:"coachStyle"`
	IsTraveling  bool      `json:"isTraveling"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
