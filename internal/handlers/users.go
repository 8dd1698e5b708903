package handlers

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/storage"
)

// UserHandler implements the authenticated account endpoints.
type UserHandler struct {
	Users   UserStore
	Blobs   storage.BlobStore
	History HistoryViewer
	NowFunc func() time.Time
}

// userProfile is the public projection of an account returned by the API.
type userProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatarUrl"`
	CoverURL  string    `json:"coverUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserProfile(u models.User) userProfile {
	return userProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.Avatar.URL,
		CoverURL:  u.CoverImage.URL,
		CreatedAt: u.CreatedAt,
	}
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Me handles GET /api/v1/users/me.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.Users.FindByID(ctx, identity.UserID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, newUserProfile(user), "current user")
}

// UpdateAccount handles PATCH /api/v1/users/me. Either field may be omitted
// to leave it unchanged.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(ctx, w, "invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" && req.Email == "" {
		respondBadRequest(ctx, w, "fullName or email is required")
		return
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			respondBadRequest(ctx, w, "invalid email address")
			return
		}
	}

	user, err := h.Users.FindByID(ctx, identity.UserID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	user.UpdatedAt = h.now()

	if err := h.Users.Update(ctx, user); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, newUserProfile(user), "account updated")
}

// UpdateAvatar handles PATCH /api/v1/users/me/avatar. The previous avatar
// blob is removed after the replacement is stored.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", "avatars",
		func(u *models.User) *models.MediaAsset { return &u.Avatar })
}

// UpdateCover handles PATCH /api/v1/users/me/cover.
func (h UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", "covers",
		func(u *models.User) *models.MediaAsset { return &u.CoverImage })
}

// WatchHistory handles GET /api/v1/users/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	history, err := h.History.List(ctx, callerFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, history, "watch history")
}

func (h UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, field, kind string, asset func(*models.User) *models.MediaAsset) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondBadRequest(ctx, w, "invalid multipart form")
		return
	}

	file, header, found, err := formFile(r, field)
	if err != nil {
		respondBadRequest(ctx, w, "invalid "+field+" upload")
		return
	}
	if !found {
		respondBadRequest(ctx, w, field+" file is required")
		return
	}
	defer file.Close()

	user, err := h.Users.FindByID(ctx, identity.UserID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	saved, err := saveFormFile(ctx, h.Blobs, file, header, kind)
	if err != nil {
		logger.Error("image upload failed", "field", field, "error", err)
		respondError(ctx, w, err)
		return
	}

	target := asset(&user)
	previous := target.StorageID
	*target = models.MediaAsset{URL: saved.URL, StorageID: saved.StorageID}
	user.UpdatedAt = h.now()

	if err := h.Users.Update(ctx, user); err != nil {
		if removeErr := h.Blobs.Remove(ctx, saved.StorageID); removeErr != nil {
			logger.Warn("failed to remove blob", "storageId", saved.StorageID, "error", removeErr)
		}
		respondError(ctx, w, err)
		return
	}

	if previous != "" {
		if err := h.Blobs.Remove(ctx, previous); err != nil {
			logger.Warn("failed to remove replaced blob", "storageId", previous, "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, newUserProfile(user), field+" updated")
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
