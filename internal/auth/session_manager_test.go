package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/models"
)

type staticUserLookup struct {
	user models.User
}

func (s staticUserLookup) FindByID(_ context.Context, id string) (models.User, error) {
	if id != s.user.ID {
		return models.User{}, errors.New("unknown user")
	}
	return s.user, nil
}

func testUser() models.User {
	return models.User{ID: "user-1", Username: "alice"}
}

func TestManagerIssueAndVerify(t *testing.T) {
	manager := NewManager("secret", time.Minute, time.Hour, NewInMemorySessionStore())

	tokens, err := manager.Issue(context.Background(), testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", tokens)
	}
	if !tokens.AccessExpiresAt.After(time.Now()) {
		t.Fatalf("access token already expired: %v", tokens.AccessExpiresAt)
	}

	identity, err := manager.Verify(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.UserID != "user-1" || identity.Username != "alice" {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestManagerVerifyRejectsBadTokens(t *testing.T) {
	manager := NewManager("secret", time.Minute, time.Hour, NewInMemorySessionStore())
	other := NewManager("other-secret", time.Minute, time.Hour, NewInMemorySessionStore())

	tokens, err := other.Issue(context.Background(), testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := manager.Verify(tokens.AccessToken); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken for foreign signature, got %v", err)
	}

	if _, err := manager.Verify("garbage"); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken for malformed token, got %v", err)
	}
}

func TestManagerVerifyRejectsExpiredToken(t *testing.T) {
	manager := NewManager("secret", -time.Minute, time.Hour, NewInMemorySessionStore())

	tokens, err := manager.Issue(context.Background(), testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := manager.Verify(tokens.AccessToken); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken for expired token, got %v", err)
	}
}

func TestManagerRefreshRotatesToken(t *testing.T) {
	manager := NewManager("secret", time.Minute, time.Hour, NewInMemorySessionStore())
	user := testUser()
	lookup := staticUserLookup{user: user}

	tokens, err := manager.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	refreshed, err := manager.Refresh(context.Background(), tokens.RefreshToken, lookup)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected refresh token rotation")
	}

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken, lookup); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for reused token, got %v", err)
	}
}

func TestManagerRefreshExpiredSession(t *testing.T) {
	manager := NewManager("secret", time.Minute, -time.Hour, NewInMemorySessionStore())
	user := testUser()

	tokens, err := manager.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = manager.Refresh(context.Background(), tokens.RefreshToken, staticUserLookup{user: user})
	if !errors.Is(err, ErrRefreshTokenExpired) {
		t.Fatalf("expected ErrRefreshTokenExpired, got %v", err)
	}
}

func TestManagerRevoke(t *testing.T) {
	manager := NewManager("secret", time.Minute, time.Hour, NewInMemorySessionStore())
	user := testUser()

	tokens, err := manager.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.Revoke(context.Background(), tokens.RefreshToken)

	_, err = manager.Refresh(context.Background(), tokens.RefreshToken, staticUserLookup{user: user})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after revoke, got %v", err)
	}
}
