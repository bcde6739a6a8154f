// Package auth gates session construction on resolved authentication.
//
// A Guard starts unresolved: callers that want a table session block in
// Admit until the identity check has completed. Once resolved, an
// unauthenticated guard rejects admission (the caller redirects to the login
// flow), and an authenticated one admits exactly one session. A transport is
// never opened before authentication is resolved.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"poker-platform/client/internal/api"
)

var (
	// ErrNotAuthenticated means the resolved identity check failed; the
	// caller should return to the login flow instead of opening a session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAlreadyAdmitted means a session was already constructed under this
	// guard. A new room requires a new guard and a new session.
	ErrAlreadyAdmitted = errors.New("session already admitted")

	// ErrTokenExpired means the locally held session token is past its
	// expiry claim.
	ErrTokenExpired = errors.New("session token expired")
)

// Identity is the authenticated player, as far as the client knows it.
type Identity struct {
	Username  string
	ExpiresAt time.Time
}

// Guard tracks {initialized, authenticated} and admits at most one session.
type Guard struct {
	mu            sync.Mutex
	initialized   bool
	authenticated bool
	identity      Identity
	admitted      bool

	initDone chan struct{}
}

// NewGuard returns an unresolved guard.
func NewGuard() *Guard {
	return &Guard{initDone: make(chan struct{})}
}

// Resolve asks the server who the session cookie belongs to and marks the
// guard initialized either way. Safe to call once; later calls are no-ops.
func (g *Guard) Resolve(ctx context.Context, client *api.Client) error {
	username, err := client.Me(ctx)
	if err != nil {
		g.Complete(Identity{}, false)
		if errors.Is(err, api.ErrUnauthenticated) {
			return ErrNotAuthenticated
		}
		return fmt.Errorf("resolve identity: %w", err)
	}

	identity := Identity{Username: username}
	if token, ok := client.SessionToken(); ok {
		if claims, err := InspectToken(token); err == nil {
			identity.ExpiresAt = claims.ExpiresAt
		}
	}
	g.Complete(identity, true)
	return nil
}

// Complete records the outcome of an identity check directly. Only the
// first call wins.
func (g *Guard) Complete(identity Identity, authenticated bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initialized {
		return
	}
	g.initialized = true
	g.authenticated = authenticated
	g.identity = identity
	close(g.initDone)
}

// Admit blocks until authentication is resolved, then admits exactly one
// session. While unresolved no session may be constructed; once resolved an
// unauthenticated guard always rejects.
func (g *Guard) Admit(ctx context.Context) (Identity, error) {
	select {
	case <-g.initDone:
	case <-ctx.Done():
		return Identity{}, ctx.Err()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.authenticated {
		return Identity{}, ErrNotAuthenticated
	}
	if g.admitted {
		return Identity{}, ErrAlreadyAdmitted
	}
	g.admitted = true
	return g.identity, nil
}

// Initialized reports whether the identity check has completed.
func (g *Guard) Initialized() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.initialized
}

// Authenticated reports the resolved outcome; false while unresolved.
func (g *Guard) Authenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.initialized && g.authenticated
}

// TokenClaims is the subset of the session token's claims the client cares
// about.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// InspectToken reads the claims out of the session JWT without verifying
// its signature. The server remains the only verifier; this exists so the
// client can show who it thinks it is and skip a doomed reconnect when the
// token has already expired.
func InspectToken(token string) (TokenClaims, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("parse session token: %w", err)
	}

	out := TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
		if time.Now().After(exp.Time) {
			return out, ErrTokenExpired
		}
	}
	return out, nil
}
