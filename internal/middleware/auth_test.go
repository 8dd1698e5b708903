package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

func testVerifier(t *testing.T) (*auth.Manager, string) {
	t.Helper()
	manager := auth.NewManager("secret", time.Minute, time.Hour, auth.NewInMemorySessionStore())
	tokens, err := manager.Issue(t.Context(), models.User{ID: "user-1", Username: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return manager, tokens.AccessToken
}

func identityProbe(got *auth.Identity, found *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		*got = identity
		*found = ok
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	manager, token := testVerifier(t)

	var identity auth.Identity
	var found bool
	handler := RequireAuth(manager)(identityProbe(&identity, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if !found || identity.UserID != "user-1" {
		t.Fatalf("expected identity on context, got %+v found=%v", identity, found)
	}
}

func TestRequireAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	manager, _ := testVerifier(t)

	var identity auth.Identity
	var found bool
	handler := RequireAuth(manager)(identityProbe(&identity, &found))

	for _, header := range []string{"", "Bearer bogus", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected status %d got %d", header, http.StatusUnauthorized, rec.Code)
		}
	}
	if found {
		t.Fatal("handler must not run for rejected requests")
	}
}

func TestOptionalAuth(t *testing.T) {
	manager, token := testVerifier(t)

	var identity auth.Identity
	var found bool
	handler := OptionalAuth(manager)(identityProbe(&identity, &found))

	// Valid token attaches the identity.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !found || identity.UserID != "user-1" {
		t.Fatalf("expected identity, got code=%d identity=%+v found=%v", rec.Code, identity, found)
	}

	// Missing and invalid tokens pass through anonymously.
	for _, header := range []string{"", "Bearer bogus"} {
		found = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("header %q: expected status %d got %d", header, http.StatusOK, rec.Code)
		}
		if found {
			t.Fatalf("header %q: expected anonymous request", header)
		}
	}
}
