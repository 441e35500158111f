package client

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
)

// AuthState is the provider's lifecycle: unresolved on construction,
// resolving while the identity service is consulted, then settled.
type AuthState int

const (
	StateUnresolved AuthState = iota
	StateResolving
	StateAnonymous
	StateAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Identity is the display identity of the signed-in user.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
}

// Credential is the resolved identity material for one request. The zero
// value means "no credential"; both fields may be set at once during the
// header-scheme migration.
type Credential struct {
	BearerToken string
	APIKey      string
}

func (c Credential) IsZero() bool {
	return c.BearerToken == "" && c.APIKey == ""
}

// IdentityService is the pluggable identity provider. A nil service is the
// deliberate demo-mode configuration: the provider settles to anonymous
// and stays there.
type IdentityService interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignUp(ctx context.Context, email, password string) (Identity, error)
	SignOut(ctx context.Context) error
	// Token returns the current identity token, or "" when signed out.
	// Called per request; tokens may rotate underneath.
	Token(ctx context.Context) (string, error)
}

// bypassStorageKey is where the test-bypass signal persists between
// navigations, in both the durable store and the cookie mirror.
const bypassStorageKey = "E2E_AUTH_MOCK"

// Query parameter names carrying the bypass signal on first load.
const (
	bypassQueryKey  = "e2e-key"
	bypassQueryFlag = "e2e-bypass"
)

// ProviderOptions configures an AuthProvider.
type ProviderOptions struct {
	Identity IdentityService // nil => demo mode, settles anonymous
	Store    Store           // durable client storage for the bypass signal
	Cookies  CookieStore     // cookie mirror; may be nil
	APIKey   string          // static fallback key, may be empty

	// InitialQuery is the URL query of the initial navigation. The bypass
	// signal is only ever introduced here; afterwards it survives via the
	// store and cookie.
	InitialQuery url.Values
}

// AuthProvider resolves the identity credential attached to every outgoing
// request and exposes the authenticated-identity state. Construct one per
// app session with NewAuthProvider and keep it for the session's lifetime;
// no teardown is needed.
type AuthProvider struct {
	opts ProviderOptions

	mu       sync.RWMutex
	state    AuthState
	identity *Identity
	bypass   string
}

// NewAuthProvider builds the provider and evaluates the bypass signal
// synchronously, so a guard consulting it immediately after construction
// sees the bypass without waiting for Resolve.
func NewAuthProvider(opts ProviderOptions) *AuthProvider {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	p := &AuthProvider{opts: opts, state: StateUnresolved}
	p.bypass = p.detectBypass()
	if p.bypass != "" {
		slog.Info("auth bypass active")
		p.state = StateAuthenticated
		p.identity = &Identity{UID: "demo_user", Email: "e2e-test@example.com", DisplayName: "E2E Tester"}
	}
	return p
}

// detectBypass checks, in order: the initial URL query, durable storage,
// then the cookie mirror. A query hit is persisted to both so the signal
// sticks across navigations.
func (p *AuthProvider) detectBypass() string {
	q := p.opts.InitialQuery
	fromQuery := q.Get(bypassQueryKey)
	if fromQuery == "" && q.Get(bypassQueryFlag) == "true" {
		fromQuery = "true"
	}
	if fromQuery != "" {
		p.opts.Store.Set(bypassStorageKey, fromQuery)
		if p.opts.Cookies != nil {
			p.opts.Cookies.SetCookie(bypassStorageKey, fromQuery)
		}
		return fromQuery
	}
	if v, ok := p.opts.Store.Get(bypassStorageKey); ok && v != "" {
		return v
	}
	if p.opts.Cookies != nil {
		if v, ok := p.opts.Cookies.Cookie(bypassStorageKey); ok && v != "" {
			return v
		}
	}
	return ""
}

// Resolve settles the initial auth state. With a bypass active it already
// settled in the constructor; with no identity service wired it degrades
// to a permanent anonymous demo mode, which is not an error.
func (p *AuthProvider) Resolve(ctx context.Context) {
	p.mu.Lock()
	if p.state != StateUnresolved {
		p.mu.Unlock()
		return
	}
	if p.opts.Identity == nil {
		slog.Info("identity service not configured, running in demo mode")
		p.state = StateAnonymous
		p.mu.Unlock()
		return
	}
	p.state = StateResolving
	p.mu.Unlock()

	token, err := p.opts.Identity.Token(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil || token == "" {
		p.state = StateAnonymous
		return
	}
	p.state = StateAuthenticated
	if p.identity == nil {
		p.identity = &Identity{}
	}
}

// SignIn authenticates against the identity service.
func (p *AuthProvider) SignIn(ctx context.Context, email, password string) error {
	if p.opts.Identity == nil {
		return ErrInvalidCredentials
	}
	p.setState(StateResolving)
	id, err := p.opts.Identity.SignIn(ctx, email, password)
	if err != nil {
		p.setState(StateAnonymous)
		return err
	}
	p.mu.Lock()
	p.state = StateAuthenticated
	p.identity = &id
	p.mu.Unlock()
	return nil
}

// SignUp registers a new account and signs it in.
func (p *AuthProvider) SignUp(ctx context.Context, email, password string) error {
	if p.opts.Identity == nil {
		return ErrInvalidCredentials
	}
	p.setState(StateResolving)
	id, err := p.opts.Identity.SignUp(ctx, email, password)
	if err != nil {
		p.setState(StateAnonymous)
		return err
	}
	p.mu.Lock()
	p.state = StateAuthenticated
	p.identity = &id
	p.mu.Unlock()
	return nil
}

// SignOut clears the session, including any persisted bypass signal so a
// later load does not resurrect a stale bypass session.
func (p *AuthProvider) SignOut(ctx context.Context) error {
	p.opts.Store.Delete(bypassStorageKey)
	if p.opts.Cookies != nil {
		p.opts.Cookies.ClearCookie(bypassStorageKey)
	}
	var err error
	if p.opts.Identity != nil {
		err = p.opts.Identity.SignOut(ctx)
	}
	p.mu.Lock()
	p.state = StateAnonymous
	p.identity = nil
	p.bypass = ""
	p.mu.Unlock()
	return err
}

// Credential resolves identity material for one outgoing request. It never
// fails: when nothing is resolvable the zero Credential is returned and
// the caller decides whether that is fatal. Resolution order: bypass value
// → live identity token → static fallback key → none.
func (p *AuthProvider) Credential(ctx context.Context) Credential {
	p.mu.RLock()
	bypass := p.bypass
	p.mu.RUnlock()

	if bypass != "" && bypass != "true" {
		// A concrete bypass value doubles as the key itself.
		return Credential{BearerToken: bypass, APIKey: bypass}
	}
	if bypass == "" && p.opts.Identity != nil {
		if token, err := p.opts.Identity.Token(ctx); err == nil && token != "" {
			return Credential{BearerToken: token}
		}
	}
	if p.opts.APIKey != "" {
		// Both headers carry the key during the scheme migration.
		return Credential{BearerToken: p.opts.APIKey, APIKey: p.opts.APIKey}
	}
	return Credential{}
}

// State returns the current auth state.
func (p *AuthProvider) State() AuthState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Identity returns the display identity, or nil while not authenticated.
func (p *AuthProvider) Identity() *Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.identity == nil {
		return nil
	}
	id := *p.identity
	return &id
}

// BypassActive reports whether the test bypass short-circuits auth. Safe
// to call synchronously on first render.
func (p *AuthProvider) BypassActive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bypass != ""
}

func (p *AuthProvider) setState(s AuthState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}
