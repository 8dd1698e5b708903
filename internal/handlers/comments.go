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

// CommentHandler implements the comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	Viewer   CommentViewer
	NowFunc  func() time.Time
}

type commentRequest struct {
	Content string `json:"content"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newCommentResponse(c models.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		Content:   c.Content,
		VideoID:   c.VideoID,
		OwnerID:   c.OwnerID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// List handles GET /api/v1/videos/{id}/comments.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := views.PageRequest{
		Number: intQueryParam(r, "page"),
		Size:   intQueryParam(r, "limit"),
	}

	comments, err := h.Viewer.List(ctx, r.PathValue("id"), page, callerFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, comments, "video comments")
}

// Add handles POST /api/v1/videos/{id}/comments.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	videoID := r.PathValue("id")
	if _, err := uuid.Parse(videoID); err != nil {
		respondError(ctx, w, views.ErrInvalidID)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(ctx, w, "invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondBadRequest(ctx, w, "content is required")
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		Content:   req.Content,
		VideoID:   videoID,
		OwnerID:   identity.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusCreated, newCommentResponse(comment), "comment added")
}

// Update handles PATCH /api/v1/comments/{id}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, ok := h.ownedComment(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(ctx, w, "invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondBadRequest(ctx, w, "content is required")
		return
	}

	comment.Content = req.Content
	comment.UpdatedAt = h.now()

	if err := h.Comments.Update(ctx, comment); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, newCommentResponse(comment), "comment updated")
}

// Delete handles DELETE /api/v1/comments/{id}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, ok := h.ownedComment(w, r)
	if !ok {
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondMessage(ctx, w, http.StatusOK, "comment deleted")
}

func (h CommentHandler) ownedComment(w http.ResponseWriter, r *http.Request) (models.Comment, bool) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authentication required")
		return models.Comment{}, false
	}

	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, views.ErrInvalidID)
		return models.Comment{}, false
	}

	comment, err := h.Comments.FindByID(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return models.Comment{}, false
	}

	if comment.OwnerID != identity.UserID {
		respondError(ctx, w, errNotOwner)
		return models.Comment{}, false
	}

	return comment, true
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
