package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// TweetHandler implements the tweet endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	Viewer  TweetViewer
	NowFunc func() time.Time
}

type tweetRequest struct {
	Content string `json:"content"`
}

type tweetResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newTweetResponse(t models.Tweet) tweetResponse {
	return tweetResponse{
		ID:        t.ID,
		Content:   t.Content,
		OwnerID:   t.OwnerID,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(ctx, w, "invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondBadRequest(ctx, w, "content is required")
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		Content:   req.Content,
		OwnerID:   identity.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusCreated, newTweetResponse(tweet), "tweet created")
}

// ListForUser handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweets, err := h.Viewer.ListForUser(ctx, r.PathValue("userId"), callerFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, tweets, "user tweets")
}

// Update handles PATCH /api/v1/tweets/{id}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, ok := h.ownedTweet(w, r)
	if !ok {
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(ctx, w, "invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondBadRequest(ctx, w, "content is required")
		return
	}

	tweet.Content = req.Content
	tweet.UpdatedAt = h.now()

	if err := h.Tweets.Update(ctx, tweet); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, newTweetResponse(tweet), "tweet updated")
}

// Delete handles DELETE /api/v1/tweets/{id}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, ok := h.ownedTweet(w, r)
	if !ok {
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondMessage(ctx, w, http.StatusOK, "tweet deleted")
}

func (h TweetHandler) ownedTweet(w http.ResponseWriter, r *http.Request) (models.Tweet, bool) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authentication required")
		return models.Tweet{}, false
	}

	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, views.ErrInvalidID)
		return models.Tweet{}, false
	}

	tweet, err := h.Tweets.FindByID(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return models.Tweet{}, false
	}

	if tweet.OwnerID != identity.UserID {
		respondError(ctx, w, errNotOwner)
		return models.Tweet{}, false
	}

	return tweet, true
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
