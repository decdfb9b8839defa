package gate

import "strings"

// Default paths
const (
	DefaultLoginPath = "/login"
	DefaultHomePath  = "/"
)

// Kind is the shape of a gate decision
type Kind int

const (
	// Allow serves the request
	Allow Kind = iota
	// Deny means the request needs a session; the caller decides how to send the user to sign in
	Deny
	// Redirect sends the user to Location
	Redirect
	// Bypassed means a bypass pattern matched and the gate was never consulted
	Bypassed
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case Redirect:
		return "redirect"
	case Bypassed:
		return "bypass"
	}
	return "unknown"
}

// Decision is the gate's answer for one request
type Decision struct {
	Kind     Kind
	Location string // Set when Kind is Redirect
}

// Allowed reports whether the request may be served as is
func (d Decision) Allowed() bool {
	return d.Kind == Allow || d.Kind == Bypassed
}

// Gate decides access from the request path and whether a session exists.
// It holds no mutable state and performs no I/O, so one value can serve
// concurrent requests.
type Gate struct {
	loginPath string
	homePath  string
}

// New creates a Gate. Empty paths fall back to the defaults.
func New(loginPath, homePath string) Gate {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	if homePath == "" {
		homePath = DefaultHomePath
	}
	return Gate{loginPath: loginPath, homePath: homePath}
}

// LoginPath is the path unauthenticated users are sent to
func (g Gate) LoginPath() string {
	return g.loginPath
}

// Evaluate decides a request:
//   - on the login page with a session: redirect home
//   - without a session: deny
//   - otherwise: allow
func (g Gate) Evaluate(requestPath string, isLoggedIn bool) Decision {
	if isLoggedIn && strings.HasPrefix(requestPath, g.loginPath) {
		return Decision{Kind: Redirect, Location: g.homePath}
	}
	if !isLoggedIn {
		return Decision{Kind: Deny}
	}
	return Decision{Kind: Allow}
}
