package auth

// Identity is a signed-in user as reported by an identity provider or a session token.
type Identity struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Verified bool   `json:"verified"`
}

type Decision int

const (
	// DecisionPending means authentication is not initialized yet; render nothing.
	DecisionPending Decision = iota
	DecisionAllow
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionAllow:
		return "allow"
	case DecisionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Guard decides who may enter the admin area. An empty allow-list admits nobody.
type Guard struct {
	allow *AllowList
	ready func() bool
}

// NewGuard builds a guard. ready reports whether session signing is configured.
func NewGuard(allow *AllowList, ready func() bool) *Guard {
	return &Guard{allow: allow, ready: ready}
}

func (g *Guard) Decide(id *Identity) Decision {
	if g == nil || g.ready == nil || !g.ready() {
		return DecisionPending
	}
	if id == nil || !id.Verified || g.allow == nil {
		return DecisionRedirect
	}
	if !g.allow.Contains(id.Email) {
		return DecisionRedirect
	}
	return DecisionAllow
}

func (g *Guard) AllowList() *AllowList {
	return g.allow
}
