package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
)

type inMemoryUserStore struct {
	users map[string]models.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[string]models.User)}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) Update(_ context.Context, user models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

type inMemoryBlobStore struct {
	saved   map[string][]byte
	removed []string
}

func newInMemoryBlobStore() *inMemoryBlobStore {
	return &inMemoryBlobStore{saved: make(map[string][]byte)}
}

func (s *inMemoryBlobStore) Save(_ context.Context, key string, r io.Reader) (storage.SavedObject, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.SavedObject{}, err
	}
	s.saved[key] = data
	return storage.SavedObject{URL: "https://cdn.example.com/" + key, StorageID: key}, nil
}

func (s *inMemoryBlobStore) Remove(_ context.Context, storageID string) error {
	delete(s.saved, storageID)
	s.removed = append(s.removed, storageID)
	return nil
}

func testSessionManager(t *testing.T) *auth.Manager {
	t.Helper()
	return auth.NewManager("test-secret", time.Minute, time.Hour, auth.NewInMemorySessionStore())
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func registerForm(t *testing.T, withAvatar bool) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fields := map[string]string{
		"fullName": "Alice Example",
		"email":    "alice@example.com",
		"username": "alice",
		"password": "supersafe",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	if withAvatar {
		part, err := writer.CreateFormFile("avatar", "avatar.png")
		if err != nil {
			t.Fatalf("create avatar part: %v", err)
		}
		if _, err := part.Write([]byte("png-bytes")); err != nil {
			t.Fatalf("write avatar: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestAuthHandlerRegister(t *testing.T) {
	store := newInMemoryUserStore()
	blobs := newInMemoryBlobStore()
	handler := AuthHandler{Users: store, Sessions: testSessionManager(t), Blobs: blobs}

	body, contentType := registerForm(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	resp := decodeEnvelope(t, rec)
	if !resp.Success || resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected envelope: %+v", resp)
	}

	stored, err := store.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("supersafe")) != nil {
		t.Fatal("stored password is not hashed")
	}
	if stored.Avatar.URL == "" || stored.Avatar.StorageID == "" {
		t.Fatalf("expected avatar to be uploaded, got %+v", stored.Avatar)
	}
	if len(blobs.saved) != 1 {
		t.Fatalf("expected 1 stored blob, got %d", len(blobs.saved))
	}
}

func TestAuthHandlerRegisterRequiresAvatar(t *testing.T) {
	handler := AuthHandler{Users: newInMemoryUserStore(), Sessions: testSessionManager(t), Blobs: newInMemoryBlobStore()}

	body, contentType := registerForm(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	store := newInMemoryUserStore()
	store.users["u1"] = models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	handler := AuthHandler{Users: store, Sessions: testSessionManager(t), Blobs: newInMemoryBlobStore()}

	body, contentType := registerForm(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d got %d", http.StatusConflict, rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Success {
		t.Fatalf("conflict response must not be marked success: %+v", resp)
	}
}

func seedUser(t *testing.T, store *inMemoryUserStore, username, password string) models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		ID:       "11111111-1111-1111-1111-111111111111",
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
	}
	store.users[user.ID] = user
	return user
}

func TestAuthHandlerLoginWithUsernameAndEmail(t *testing.T) {
	store := newInMemoryUserStore()
	seedUser(t, store, "bob", "password123")
	handler := AuthHandler{Users: store, Sessions: testSessionManager(t), Blobs: newInMemoryBlobStore()}

	for _, identifier := range []string{"bob", "bob@example.com"} {
		body, _ := json.Marshal(loginRequest{Identifier: identifier, Password: "password123"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("login with %q: expected status %d got %d", identifier, http.StatusOK, rec.Code)
		}

		resp := decodeEnvelope(t, rec)
		payload, _ := json.Marshal(resp.Data)
		var session sessionResponse
		if err := json.Unmarshal(payload, &session); err != nil {
			t.Fatalf("decode session payload: %v", err)
		}
		if session.Tokens.AccessToken == "" || session.Tokens.RefreshToken == "" {
			t.Fatalf("expected tokens to be issued, got %+v", session.Tokens)
		}
		if session.User.Username != "bob" {
			t.Fatalf("unexpected user in response: %+v", session.User)
		}
	}
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	store := newInMemoryUserStore()
	seedUser(t, store, "bob", "password123")
	handler := AuthHandler{Users: store, Sessions: testSessionManager(t), Blobs: newInMemoryBlobStore()}

	cases := []loginRequest{
		{Identifier: "bob", Password: "wrong"},
		{Identifier: "ghost", Password: "password123"},
	}
	for _, c := range cases {
		body, _ := json.Marshal(c)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status %d got %d for %+v", http.StatusUnauthorized, rec.Code, c)
		}
	}
}

func TestAuthHandlerRefreshRoundTrip(t *testing.T) {
	store := newInMemoryUserStore()
	user := seedUser(t, store, "bob", "password123")
	manager := testSessionManager(t)
	handler := AuthHandler{Users: store, Sessions: manager, Blobs: newInMemoryBlobStore()}

	tokens, err := manager.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	body, _ := json.Marshal(refreshRequest{RefreshToken: tokens.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	// Refresh tokens are single use.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	handler.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected reused refresh token to fail with %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthHandlerChangePassword(t *testing.T) {
	store := newInMemoryUserStore()
	user := seedUser(t, store, "bob", "password123")
	handler := AuthHandler{Users: store, Sessions: testSessionManager(t), Blobs: newInMemoryBlobStore()}

	body, _ := json.Marshal(changePasswordRequest{OldPassword: "password123", NewPassword: "evensafer1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password", bytes.NewReader(body))
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: user.ID, Username: user.Username}))
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	updated := store.users[user.ID]
	if bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("evensafer1")) != nil {
		t.Fatal("expected new password to be stored")
	}

	// Wrong old password is rejected.
	body, _ = json.Marshal(changePasswordRequest{OldPassword: "password123", NewPassword: "another123"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password", bytes.NewReader(body))
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: user.ID}))
	rec = httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestBearerTokenGating(t *testing.T) {
	if got := clientIP(&http.Request{RemoteAddr: "10.0.0.1:4432"}); got != "10.0.0.1" {
		t.Fatalf("unexpected client ip %q", got)
	}

	forwarded := &http.Request{
		RemoteAddr: "10.0.0.1:4432",
		Header:     http.Header{"X-Forwarded-For": []string{"203.0.113.9, 10.0.0.1"}},
	}
	if got := clientIP(forwarded); got != "203.0.113.9" {
		t.Fatalf("unexpected forwarded client ip %q", got)
	}
}
