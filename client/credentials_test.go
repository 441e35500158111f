package client

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	token      string
	tokenErr   error
	signInErr  error
	signUpErr  error
	signedOut  bool
	identityID string
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (Identity, error) {
	if f.signInErr != nil {
		return Identity{}, f.signInErr
	}
	return Identity{UID: f.identityID, Email: email}, nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) (Identity, error) {
	if f.signUpErr != nil {
		return Identity{}, f.signUpErr
	}
	return Identity{UID: f.identityID, Email: email}, nil
}

func (f *fakeIdentity) SignOut(ctx context.Context) error {
	f.signedOut = true
	f.token = ""
	return nil
}

func (f *fakeIdentity) Token(ctx context.Context) (string, error) {
	return f.token, f.tokenErr
}

func TestBypassFromQueryKeyPersists(t *testing.T) {
	store := NewMemoryStore()
	q := url.Values{}
	q.Set("e2e-key", "secret-key-123")

	p := NewAuthProvider(ProviderOptions{Store: store, Cookies: store, InitialQuery: q})

	assert.True(t, p.BypassActive())
	assert.Equal(t, StateAuthenticated, p.State())

	v, ok := store.Get("E2E_AUTH_MOCK")
	require.True(t, ok)
	assert.Equal(t, "secret-key-123", v)
	cv, ok := store.Cookie("E2E_AUTH_MOCK")
	require.True(t, ok)
	assert.Equal(t, "secret-key-123", cv)
}

func TestBypassFromQueryFlag(t *testing.T) {
	q := url.Values{}
	q.Set("e2e-bypass", "true")

	p := NewAuthProvider(ProviderOptions{Store: NewMemoryStore(), InitialQuery: q})
	assert.True(t, p.BypassActive())

	id := p.Identity()
	require.NotNil(t, id)
	assert.Equal(t, "demo_user", id.UID)
}

func TestBypassSurvivesViaStoreWithoutQuery(t *testing.T) {
	store := NewMemoryStore()
	store.Set("E2E_AUTH_MOCK", "carried-over")

	p := NewAuthProvider(ProviderOptions{Store: store})
	assert.True(t, p.BypassActive())
}

func TestBypassSurvivesViaCookieWhenStoreEmpty(t *testing.T) {
	store := NewMemoryStore()
	store.SetCookie("E2E_AUTH_MOCK", "cookie-value")

	p := NewAuthProvider(ProviderOptions{Store: NewMemoryStore(), Cookies: store})
	assert.True(t, p.BypassActive())
}

func TestCredentialBypassValueWinsOverEverything(t *testing.T) {
	q := url.Values{}
	q.Set("e2e-key", "bypass-token")

	p := NewAuthProvider(ProviderOptions{
		Identity:     &fakeIdentity{token: "live-token"},
		Store:        NewMemoryStore(),
		APIKey:       "static-key",
		InitialQuery: q,
	})

	cred := p.Credential(context.Background())
	assert.Equal(t, "bypass-token", cred.BearerToken)
	assert.Equal(t, "bypass-token", cred.APIKey)
}

func TestCredentialLiveTokenBeatsStaticKey(t *testing.T) {
	p := NewAuthProvider(ProviderOptions{
		Identity: &fakeIdentity{token: "live-token"},
		Store:    NewMemoryStore(),
		APIKey:   "static-key",
	})

	cred := p.Credential(context.Background())
	assert.Equal(t, "live-token", cred.BearerToken)
	assert.Empty(t, cred.APIKey)
}

func TestCredentialFallsBackToStaticKey(t *testing.T) {
	p := NewAuthProvider(ProviderOptions{
		Identity: &fakeIdentity{},
		Store:    NewMemoryStore(),
		APIKey:   "static-key",
	})

	cred := p.Credential(context.Background())
	assert.Equal(t, "static-key", cred.BearerToken)
	assert.Equal(t, "static-key", cred.APIKey)
}

func TestCredentialNeverErrors(t *testing.T) {
	p := NewAuthProvider(ProviderOptions{
		Identity: &fakeIdentity{tokenErr: errors.New("identity backend down")},
		Store:    NewMemoryStore(),
	})

	cred := p.Credential(context.Background())
	assert.True(t, cred.IsZero())
}

func TestResolveWithoutIdentitySettlesAnonymous(t *testing.T) {
	p := NewAuthProvider(ProviderOptions{Store: NewMemoryStore()})
	assert.Equal(t, StateUnresolved, p.State())

	p.Resolve(context.Background())
	assert.Equal(t, StateAnonymous, p.State())
}

func TestResolveWithTokenSettlesAuthenticated(t *testing.T) {
	p := NewAuthProvider(ProviderOptions{
		Identity: &fakeIdentity{token: "tok"},
		Store:    NewMemoryStore(),
	})
	p.Resolve(context.Background())
	assert.Equal(t, StateAuthenticated, p.State())
}

func TestSignInSuccessAndFailure(t *testing.T) {
	id := &fakeIdentity{identityID: "user-1"}
	p := NewAuthProvider(ProviderOptions{Identity: id, Store: NewMemoryStore()})

	require.NoError(t, p.SignIn(context.Background(), "a@b.com", "pw"))
	assert.Equal(t, StateAuthenticated, p.State())
	require.NotNil(t, p.Identity())
	assert.Equal(t, "user-1", p.Identity().UID)

	id.signInErr = ErrInvalidCredentials
	err := p.SignIn(context.Background(), "a@b.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, StateAnonymous, p.State())
}

func TestSignOutClearsBypassAndIdentity(t *testing.T) {
	store := NewMemoryStore()
	q := url.Values{}
	q.Set("e2e-key", "secret")
	id := &fakeIdentity{token: "tok"}

	p := NewAuthProvider(ProviderOptions{Identity: id, Store: store, Cookies: store, InitialQuery: q})
	require.True(t, p.BypassActive())

	require.NoError(t, p.SignOut(context.Background()))
	assert.False(t, p.BypassActive())
	assert.Equal(t, StateAnonymous, p.State())
	assert.Nil(t, p.Identity())
	assert.True(t, id.signedOut)

	_, ok := store.Get("E2E_AUTH_MOCK")
	assert.False(t, ok)
	_, ok = store.Cookie("E2E_AUTH_MOCK")
	assert.False(t, ok)
}
