package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliNMackie/blackcard-concierge-ai/models"
)

func TestCreateUserAndLookup(t *testing.T) {
	r := NewUsersRepository()

	u, err := r.CreateUser("Alice@Example.com", "password123", "Alice")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, models.RoleClient, u.Role)
	assert.NotEqual(t, "password123", u.PasswordHash)

	byEmail, err := r.GetByEmail("ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := r.GetByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	r := NewUsersRepository()
	_, err := r.CreateUser("a@b.com", "password123", "")
	require.NoError(t, err)

	_, err = r.CreateUser("A@B.COM", "password123", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCheckPassword(t *testing.T) {
	r := NewUsersRepository()
	_, err := r.CreateUser("a@b.com", "password123", "")
	require.NoError(t, err)

	u, err := r.CheckPassword("a@b.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)

	_, err = r.CheckPassword("a@b.com", "wrong")
	assert.Error(t, err)

	_, err = r.CheckPassword("nobody@b.com", "password123")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	r := NewUsersRepository()

	first := r.EnsureUser("client-1")
	assert.Equal(t, "client-1", first.ID)
	assert.Equal(t, models.RoleClient, first.Role)

	require.NoError(t, r.SetRole("client-1", models.RoleTrainer))
	second := r.EnsureUser("client-1")
	assert.Equal(t, models.RoleTrainer, second.Role, "existing user untouched")
}

func TestAssignClientDeduplicates(t *testing.T) {
	r := NewUsersRepository()
	r.AssignClient("trainer-1", "client-1")
	r.AssignClient("trainer-1", "client-1")
	r.AssignClient("trainer-1", "client-2")

	assert.Equal(t, []string{"client-1", "client-2"}, r.ClientIDs("trainer-1"))
	assert.Empty(t, r.ClientIDs("trainer-2"))
}

func TestToggleTravel(t *testing.T) {
	r := NewUsersRepository()
	r.EnsureUser("client-1")

	on, err := r.ToggleTravel("client-1")
	require.NoError(t, err)
	assert.True(t, on)

	off, err := r.ToggleTravel("client-1")
	require.NoError(t, err)
	assert.False(t, off)

	_, err = r.ToggleTravel("missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResetProfileKeepsAccountShell(t *testing.T) {
	r := NewUsersRepository()
	r.EnsureUser("client-1")
	_, err := r.ToggleTravel("client-1")
	require.NoError(t, err)

	require.NoError(t, r.ResetProfile("client-1"))
	u, err := r.GetByID("client-1")
	require.NoError(t, err)
	assert.False(t, u.IsTraveling)
	assert.Equal(t, "standard", u.CoachStyle)

	assert.ErrorIs(t, r.ResetProfile("missing"), ErrUserNotFound)
}

func TestGetReturnsClones(t *testing.T) {
	r := NewUsersRepository()
	r.EnsureUser("client-1")

	u, err := r.GetByID("client-1")
	require.NoError(t, err)
	u.Role = models.RoleTrainer

	again, err := r.GetByID("client-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, again.Role, "mutating a returned user must not leak into the store")
}
