package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"pulse-backend/config"
)

// ViewRole is one of the selectable portal views.
type ViewRole string

const (
	ViewCustomer   ViewRole = "customer"
	ViewZones      ViewRole = "zones"
	ViewAccess     ViewRole = "access"
	ViewAdmin      ViewRole = "admin"
	ViewSuperAdmin ViewRole = "super-admin"
)

// ValidView reports whether v is a recognized view role.
func ValidView(v ViewRole) bool {
	switch v {
	case ViewCustomer, ViewZones, ViewAccess, ViewAdmin, ViewSuperAdmin:
		return true
	}
	return false
}

// gated reports whether the view requires a matching authenticated identity.
func gated(v ViewRole) bool {
	return v == ViewAdmin || v == ViewSuperAdmin
}

// User is an authenticated portal identity.
type User struct {
	Username string   `json:"username"`
	Role     ViewRole `json:"role"`
	Token    string   `json:"token"`
}

// ErrRejected is returned for an unknown role or a bad credential pair. The
// message is deliberately uniform.
var ErrRejected = errors.New("uplink rejected: invalid identifier or security key")

// Gate is the view/role state machine. Selecting a gated view without a
// matching identity stores it as the pending target; a later successful
// login for that role completes the deferred transition. The credential
// registry is injected at construction, never consulted globally.
type Gate struct {
	mu       sync.Mutex
	registry map[string]config.Credential
	current  *User
	view     ViewRole
	pending  ViewRole
}

// NewGate creates a gate starting at the customer view.
func NewGate(registry map[string]config.Credential) *Gate {
	return &Gate{registry: registry, view: ViewCustomer}
}

// View returns the currently visible view.
func (g *Gate) View() ViewRole {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view
}

// Pending returns the deferred gated view, or "" if none.
func (g *Gate) Pending() ViewRole {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// Current returns the authenticated identity, or nil.
func (g *Gate) Current() *User {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return nil
	}
	u := *g.current
	return &u
}

// RequestView attempts a transition. Gated views without a matching identity
// are deferred: the visible view stays put and target becomes pending. The
// returned view is the visible one after the request.
func (g *Gate) RequestView(target ViewRole) (ViewRole, error) {
	if !ValidView(target) {
		return "", fmt.Errorf("unknown view %q", target)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if gated(target) && (g.current == nil || g.current.Role != target) {
		g.pending = target
		return g.view, nil
	}
	g.view = target
	g.pending = ""
	return g.view, nil
}

// CancelPending drops a deferred transition.
func (g *Gate) CancelPending() {
	g.mu.Lock()
	g.pending = ""
	g.mu.Unlock()
}

// Login checks the credential pair against the registry entry for role. On
// success the identity is installed and, if the role matches the pending
// target, the deferred view transition completes.
func (g *Gate) Login(role ViewRole, username, password string) (User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cred, ok := g.registry[string(role)]
	if !ok {
		return User{}, ErrRejected
	}
	userOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(username)), []byte(strings.ToLower(cred.Username))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cred.Password)) == 1
	if !userOK || !passOK {
		return User{}, ErrRejected
	}

	user := User{
		Username: username,
		Role:     role,
		Token:    sessionToken(),
	}
	g.current = &user
	if g.pending == role {
		g.view = role
		g.pending = ""
	}
	return user, nil
}

// Logout drops the identity and always returns to the customer view.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.current = nil
	g.view = ViewCustomer
	g.pending = ""
	g.mu.Unlock()
}

func sessionToken() string {
	buf := make([]byte, 8)
	rand.Read(buf)
	return "PULSE_SEC_UPLINK_" + strings.ToUpper(hex.EncodeToString(buf))
}
