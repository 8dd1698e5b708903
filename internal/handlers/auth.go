package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
)

const minPasswordLength = 8

// AuthHandler implements registration and session endpoints.
type AuthHandler struct {
	Users    UserStore
	Sessions SessionManager
	Blobs    storage.BlobStore
	Limiter  RateLimiter
	NowFunc  func() time.Time
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type sessionResponse struct {
	User   userProfile          `json:"user"`
	Tokens models.SessionTokens `json:"tokens"`
}

// Register handles POST /api/v1/auth/register. The body is a multipart form
// carrying the account fields plus a required avatar image and an optional
// cover image.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "auth") {
		respondMessage(ctx, w, http.StatusTooManyRequests, "too many requests")
		return
	}

	ctx, span := logging.StartSpan(ctx, "auth.register")
	defer span.End()
	logger = logging.FromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondBadRequest(ctx, w, "invalid multipart form")
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	password := r.FormValue("password")

	if fullName == "" || email == "" || username == "" || password == "" {
		respondBadRequest(ctx, w, "fullName, email, username, and password are required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondBadRequest(ctx, w, "invalid email address")
		return
	}
	if len(password) < minPasswordLength {
		respondBadRequest(ctx, w, "password must be at least 8 characters")
		return
	}

	avatarFile, avatarHeader, ok, err := formFile(r, "avatar")
	if err != nil {
		respondBadRequest(ctx, w, "invalid avatar upload")
		return
	}
	if !ok {
		respondBadRequest(ctx, w, "avatar image is required")
		return
	}
	defer avatarFile.Close()

	coverFile, coverHeader, hasCover, err := formFile(r, "coverImage")
	if err != nil {
		respondBadRequest(ctx, w, "invalid cover image upload")
		return
	}
	if hasCover {
		defer coverFile.Close()
	}

	if err := h.ensureUnusedIdentity(r, w, email, username); err != nil {
		return
	}

	avatar, err := saveFormFile(ctx, h.Blobs, avatarFile, avatarHeader, "avatars")
	if err != nil {
		logger.Error("avatar upload failed", "error", err)
		respondError(ctx, w, err)
		return
	}

	var cover storage.SavedObject
	if hasCover {
		cover, err = saveFormFile(ctx, h.Blobs, coverFile, coverHeader, "covers")
		if err != nil {
			logger.Error("cover upload failed", "error", err)
			h.removeBlob(r, avatar.StorageID)
			respondError(ctx, w, err)
			return
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", "error", err)
		respondError(ctx, w, err)
		return
	}

	now := h.now()
	user := models.User{
		ID:         uuid.NewString(),
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     models.MediaAsset{URL: avatar.URL, StorageID: avatar.StorageID},
		CoverImage: models.MediaAsset{URL: cover.URL, StorageID: cover.StorageID},
		Password:   string(hashed),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		h.removeBlob(r, avatar.StorageID)
		h.removeBlob(r, cover.StorageID)
		respondError(ctx, w, err)
		return
	}

	logger.Info("user registered", "userId", user.ID, "username", user.Username)
	respondData(ctx, w, http.StatusCreated, newUserProfile(user), "user registered")
}

// Login handles POST /api/v1/auth/login. The identifier may be an email
// address or a username.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "auth") {
		respondMessage(ctx, w, http.StatusTooManyRequests, "too many requests")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(ctx, w, "invalid request body")
		return
	}

	req.Identifier = strings.ToLower(strings.TrimSpace(req.Identifier))
	if req.Identifier == "" || req.Password == "" {
		respondBadRequest(ctx, w, "identifier and password are required")
		return
	}

	user, err := h.findByIdentifier(r, req.Identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondMessage(ctx, w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(ctx, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondMessage(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user)
	if err != nil {
		logger.Error("failed to issue session", "userId", user.ID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, sessionResponse{User: newUserProfile(user), Tokens: tokens}, "logged in")
}

// Logout handles POST /api/v1/auth/logout and revokes the refresh token.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(ctx, w, "invalid request body")
		return
	}

	h.Sessions.Revoke(ctx, strings.TrimSpace(req.RefreshToken))
	respondMessage(ctx, w, http.StatusOK, "logged out")
}

// Refresh handles POST /api/v1/auth/refresh, exchanging a refresh token for a
// fresh session pair.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(ctx, w, "invalid request body")
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		respondBadRequest(ctx, w, "refresh token is required")
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, req.RefreshToken, h.Users)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) ||
			errors.Is(err, auth.ErrRefreshTokenExpired) ||
			errors.Is(err, repositories.ErrNotFound) {
			respondMessage(ctx, w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, tokens, "session refreshed")
}

// ChangePassword handles POST /api/v1/auth/change-password for the
// authenticated caller.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(ctx, w, "invalid request body")
		return
	}

	if len(req.NewPassword) < minPasswordLength {
		respondBadRequest(ctx, w, "password must be at least 8 characters")
		return
	}

	user, err := h.Users.FindByID(ctx, identity.UserID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		logger.Warn("change password mismatch", "userId", user.ID)
		respondMessage(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", "error", err)
		respondError(ctx, w, err)
		return
	}

	user.Password = string(hashed)
	user.UpdatedAt = h.now()
	if err := h.Users.Update(ctx, user); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondMessage(ctx, w, http.StatusOK, "password changed")
}

func (h AuthHandler) findByIdentifier(r *http.Request, identifier string) (models.User, error) {
	if strings.Contains(identifier, "@") {
		return h.Users.FindByEmail(r.Context(), identifier)
	}
	return h.Users.FindByUsername(r.Context(), identifier)
}

// ensureUnusedIdentity rejects registrations that collide with an existing
// email or username. It writes the response on failure.
func (h AuthHandler) ensureUnusedIdentity(r *http.Request, w http.ResponseWriter, email, username string) error {
	ctx := r.Context()

	for _, lookup := range []struct {
		find  func() (models.User, error)
		label string
	}{
		{func() (models.User, error) { return h.Users.FindByEmail(ctx, email) }, "email"},
		{func() (models.User, error) { return h.Users.FindByUsername(ctx, username) }, "username"},
	} {
		_, err := lookup.find()
		if err == nil {
			respondMessage(ctx, w, http.StatusConflict, lookup.label+" already in use")
			return repositories.ErrConflict
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, err)
			return err
		}
	}

	return nil
}

func (h AuthHandler) removeBlob(r *http.Request, storageID string) {
	if storageID == "" || h.Blobs == nil {
		return
	}
	if err := h.Blobs.Remove(r.Context(), storageID); err != nil {
		logging.FromContext(r.Context()).Warn("failed to remove blob", "storageId", storageID, "error", err)
	}
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
