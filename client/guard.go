package client

import "net/url"

// Decision is the route guard's verdict for a protected view.
type Decision int

const (
	// DecisionChecking: auth state is still resolving; render a loading
	// affordance and nothing else.
	DecisionChecking Decision = iota
	// DecisionAllow: render the protected children.
	DecisionAllow
	// DecisionRedirect: send the visitor to the login view.
	DecisionRedirect
)

// Guard gates protected views on the auth provider's state. The bypass
// check is synchronous (it settled in the provider's constructor), so a
// guard consulted on first render never flashes the loading or redirect
// state when automated tests supply the bypass via URL.
type Guard struct {
	auth      *AuthProvider
	loginPath string
}

func NewGuard(auth *AuthProvider, loginPath string) *Guard {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Guard{auth: auth, loginPath: loginPath}
}

// Evaluate decides whether the view at requestedPath may render. A
// redirect target carries the originally requested path so the user
// returns there after authenticating.
func (g *Guard) Evaluate(requestedPath string) (Decision, string) {
	if g.auth.BypassActive() {
		return DecisionAllow, ""
	}
	switch g.auth.State() {
	case StateAuthenticated:
		return DecisionAllow, ""
	case StateAnonymous:
		return DecisionRedirect, g.loginPath + "?redirect=" + url.QueryEscape(requestedPath)
	default:
		return DecisionChecking, ""
	}
}
