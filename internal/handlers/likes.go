package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// LikeHandler implements the like toggles and the liked-videos listing.
type LikeHandler struct {
	Likes   LikeStore
	NowFunc func() time.Time
}

// ToggleVideo handles POST /api/v1/likes/video/{id}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetVideo)
}

// ToggleComment handles POST /api/v1/likes/comment/{id}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetComment)
}

// ToggleTweet handles POST /api/v1/likes/tweet/{id}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetTweet)
}

// ListLikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) ListLikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	videos, err := h.Likes.ListLikedVideos(ctx, identity.UserID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	responses := make([]videoResponse, 0, len(videos))
	for _, video := range videos {
		responses = append(responses, newVideoResponse(video))
	}

	respondData(ctx, w, http.StatusOK, responses, "liked videos")
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target models.LikeTarget) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID := r.PathValue("id")
	if _, err := uuid.Parse(targetID); err != nil {
		respondError(ctx, w, views.ErrInvalidID)
		return
	}

	like := models.Like{
		ID:        uuid.NewString(),
		LikedBy:   identity.UserID,
		Target:    target,
		CreatedAt: h.now(),
	}
	switch target {
	case models.LikeTargetVideo:
		like.VideoID = targetID
	case models.LikeTargetComment:
		like.CommentID = targetID
	case models.LikeTargetTweet:
		like.TweetID = targetID
	}

	liked, err := h.Likes.Toggle(ctx, like)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]bool{"liked": liked}, "like toggled")
}

func (h LikeHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
