package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poker-platform/client/internal/api"
)

func signedToken(t *testing.T, username string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("server-side-secret"))
	require.NoError(t, err)
	return signed
}

func TestGuard_AdmitBlocksUntilResolved(t *testing.T) {
	g := NewGuard()
	require.False(t, g.Initialized())

	admitted := make(chan error, 1)
	go func() {
		_, err := g.Admit(context.Background())
		admitted <- err
	}()

	select {
	case err := <-admitted:
		t.Fatalf("Admit returned %v before resolution", err)
	case <-time.After(20 * time.Millisecond):
	}

	g.Complete(Identity{Username: "alice"}, true)

	select {
	case err := <-admitted:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Admit still blocked after resolution")
	}
	assert.True(t, g.Initialized())
	assert.True(t, g.Authenticated())
}

func TestGuard_UnauthenticatedRejects(t *testing.T) {
	g := NewGuard()
	g.Complete(Identity{}, false)

	_, err := g.Admit(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.True(t, g.Initialized())
	assert.False(t, g.Authenticated())
}

func TestGuard_AdmitsExactlyOnce(t *testing.T) {
	g := NewGuard()
	g.Complete(Identity{Username: "alice"}, true)

	identity, err := g.Admit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)

	_, err = g.Admit(context.Background())
	require.ErrorIs(t, err, ErrAlreadyAdmitted)
}

func TestGuard_AdmitHonorsContext(t *testing.T) {
	g := NewGuard()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Admit(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGuard_FirstCompletionWins(t *testing.T) {
	g := NewGuard()
	g.Complete(Identity{Username: "alice"}, true)
	g.Complete(Identity{Username: "mallory"}, false)

	identity, err := g.Admit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
}

func TestGuard_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/me" {
			http.NotFound(w, r)
			return
		}
		if _, err := r.Cookie(api.SessionCookieName); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"alice"}`))
	}))
	defer srv.Close()

	t.Run("Without cookie", func(t *testing.T) {
		client, err := api.New(srv.URL)
		require.NoError(t, err)

		g := NewGuard()
		require.ErrorIs(t, g.Resolve(context.Background(), client), ErrNotAuthenticated)
		assert.True(t, g.Initialized(), "a failed check still resolves the guard")
		assert.False(t, g.Authenticated())
	})

	t.Run("With cookie", func(t *testing.T) {
		client, err := api.New(srv.URL)
		require.NoError(t, err)

		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		client.Jar().SetCookies(req.URL, []*http.Cookie{{
			Name:  api.SessionCookieName,
			Value: signedToken(t, "alice", time.Now().Add(time.Hour)),
		}})

		g := NewGuard()
		require.NoError(t, g.Resolve(context.Background(), client))

		identity, err := g.Admit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "alice", identity.Username)
		assert.WithinDuration(t, time.Now().Add(time.Hour), identity.ExpiresAt, 5*time.Second)
	})
}

func TestInspectToken(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		exp := time.Now().Add(time.Hour)
		claims, err := InspectToken(signedToken(t, "alice", exp))
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
		assert.WithinDuration(t, exp, claims.ExpiresAt, time.Second)
	})

	t.Run("Expired", func(t *testing.T) {
		claims, err := InspectToken(signedToken(t, "alice", time.Now().Add(-time.Minute)))
		require.ErrorIs(t, err, ErrTokenExpired)
		assert.Equal(t, "alice", claims.Subject, "claims are still readable from an expired token")
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := InspectToken("not-a-jwt")
		require.Error(t, err)
	})
}
