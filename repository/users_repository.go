package repository

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/AliNMackie/blackcard-concierge-ai/models"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

// UsersRepository is the in-memory mock identity store. Trainer→client
// assignments live here too, mirroring which feeds a trainer may read.
type UsersRepository struct {
	mu         sync.RWMutex
	byID       map[string]*models.User
	byEmail    map[string]string // lowercase email -> id
	assignment map[string][]string
}

func NewUsersRepository() *UsersRepository {
	return &UsersRepository{
		byID:       make(map[string]*models.User),
		byEmail:    make(map[string]string),
		assignment: make(map[string][]string),
	}
}

// CreateUser registers a new client account with a bcrypt-hashed password.
func (r *UsersRepository) CreateUser(email, password, displayName string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	key := strings.ToLower(strings.TrimSpace(email))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[key]; exists {
		return nil, ErrEmailTaken
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        key,
		DisplayName:  displayName,
		Role:         models.RoleClient,
		CoachStyle:   "standard",
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	r.byID[u.ID] = u
	r.byEmail[key] = u.ID
	return cloneUser(u), nil
}

// EnsureUser returns the user with the given id, creating a bare client
// shell if it does not exist yet. Events may arrive (webhooks, seeding)
// before the subject ever signs in.
func (r *UsersRepository) EnsureUser(id string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		return cloneUser(u)
	}
	u := &models.User{
		ID:         id,
		Role:       models.RoleClient,
		CoachStyle: "standard",
		CreatedAt:  time.Now().UTC(),
	}
	r.byID[id] = u
	return cloneUser(u)
}

func (r *UsersRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UsersRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

// SetRole promotes or demotes a user.
func (r *UsersRepository) SetRole(id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Role = role
	return nil
}

// AssignClient links a client to a trainer's roster.
func (r *UsersRepository) AssignClient(trainerID, clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.assignment[trainerID] {
		if id == clientID {
			return
		}
	}
	r.assignment[trainerID] = append(r.assignment[trainerID], clientID)
}

// ClientIDs returns the ids of clients assigned to a trainer.
func (r *UsersRepository) ClientIDs(trainerID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.assignment[trainerID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// ToggleTravel flips the user's travel mode and returns the new value.
func (r *UsersRepository) ToggleTravel(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return false, ErrUserNotFound
	}
	u.IsTraveling = !u.IsTraveling
	return u.IsTraveling, nil
}

// ResetProfile wipes personalization back to defaults. The account shell is
// kept so the id stays valid; event history removal is the events
// repository's concern.
func (r *UsersRepository) ResetProfile(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	u.CoachStyle = "standard"
	u.IsTraveling = false
	return nil
}

func (r *UsersRepository) CheckPassword(email, password string) (*models.User, error) {
	u, err := r.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, err
	}
	return u, nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}
