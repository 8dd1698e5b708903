package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/storage"
	"github.com/vidtube/backend/internal/viewcache"
	"github.com/vidtube/backend/internal/views"
)

// VideoHandler implements the video endpoints: the feed, publishing, and the
// owner-only mutations.
type VideoHandler struct {
	Videos   VideoStore
	Feed     FeedViewer
	Details  VideoViewer
	Blobs    storage.BlobStore
	Prober   DurationProber
	Cache    viewcache.Cache
	CacheTTL time.Duration
	Limiter  RateLimiter
	NowFunc  func() time.Time
}

// videoResponse is the projection of a video returned by the write endpoints.
type videoResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	OwnerID      string    `json:"ownerId"`
	CreatedAt    time.Time `json:"createdAt"`
}

func newVideoResponse(v models.Video) videoResponse {
	return videoResponse{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		VideoURL:     v.VideoFile.URL,
		ThumbnailURL: v.Thumbnail.URL,
		Duration:     v.Duration,
		Views:        v.Views,
		IsPublished:  v.IsPublished,
		OwnerID:      v.OwnerID,
		CreatedAt:    v.CreatedAt,
	}
}

// ListFeed handles GET /api/v1/videos.
func (h VideoHandler) ListFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := views.FeedQuery{
		Search:  strings.TrimSpace(r.URL.Query().Get("query")),
		OwnerID: strings.TrimSpace(r.URL.Query().Get("ownerId")),
		Sort: views.Sort{
			Field: views.ParseSortField(r.URL.Query().Get("sortBy")),
			Desc:  r.URL.Query().Get("sortDir") != "asc",
		},
		Page: views.PageRequest{
			Number: intQueryParam(r, "page"),
			Size:   intQueryParam(r, "limit"),
		},
	}

	caller := callerFromContext(ctx)
	cacheKey := feedCacheKey(q)
	if caller.Anonymous() && h.Cache != nil {
		if cached, ok := h.Cache.Get(ctx, cacheKey); ok {
			respondData(ctx, w, http.StatusOK, json.RawMessage(cached), "video feed")
			return
		}
	}

	feed, err := h.Feed.List(ctx, q)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if caller.Anonymous() && h.Cache != nil {
		if payload, err := json.Marshal(feed); err == nil {
			h.Cache.Set(ctx, cacheKey, payload, h.CacheTTL)
		}
	}

	respondData(ctx, w, http.StatusOK, feed, "video feed")
}

// Publish handles POST /api/v1/videos. The multipart body carries the title,
// description, the video file, and a thumbnail. The duration is probed from
// the uploaded file before it is stored.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	if !allowRequest(h.Limiter, r, "publish") {
		respondMessage(ctx, w, http.StatusTooManyRequests, "too many requests")
		return
	}

	ctx, span := logging.StartSpan(ctx, "video.publish")
	defer span.End()
	logger = logging.FromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondBadRequest(ctx, w, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" {
		respondBadRequest(ctx, w, "title is required")
		return
	}

	videoFile, videoHeader, hasVideo, err := formFile(r, "videoFile")
	if err != nil {
		respondBadRequest(ctx, w, "invalid video upload")
		return
	}
	if !hasVideo {
		respondBadRequest(ctx, w, "videoFile is required")
		return
	}
	defer videoFile.Close()

	thumbFile, thumbHeader, hasThumb, err := formFile(r, "thumbnail")
	if err != nil {
		respondBadRequest(ctx, w, "invalid thumbnail upload")
		return
	}
	if !hasThumb {
		respondBadRequest(ctx, w, "thumbnail is required")
		return
	}
	defer thumbFile.Close()

	duration, cleanup, err := h.probeDuration(r, videoFile)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		logger.Error("failed to probe video duration", "error", err)
		respondError(ctx, w, err)
		return
	}

	if _, err := videoFile.Seek(0, io.SeekStart); err != nil {
		respondError(ctx, w, fmt.Errorf("rewind video upload: %w", err))
		return
	}

	savedVideo, err := saveFormFile(ctx, h.Blobs, videoFile, videoHeader, "videos")
	if err != nil {
		logger.Error("video upload failed", "error", err)
		respondError(ctx, w, err)
		return
	}

	savedThumb, err := saveFormFile(ctx, h.Blobs, thumbFile, thumbHeader, "thumbnails")
	if err != nil {
		logger.Error("thumbnail upload failed", "error", err)
		h.removeBlob(ctx, savedVideo.StorageID)
		respondError(ctx, w, err)
		return
	}

	now := h.now()
	video := models.Video{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		VideoFile:   models.MediaAsset{URL: savedVideo.URL, StorageID: savedVideo.StorageID},
		Thumbnail:   models.MediaAsset{URL: savedThumb.URL, StorageID: savedThumb.StorageID},
		Duration:    duration,
		IsPublished: true,
		OwnerID:     identity.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		h.removeBlob(ctx, savedVideo.StorageID)
		h.removeBlob(ctx, savedThumb.StorageID)
		respondError(ctx, w, err)
		return
	}

	logger.Info("video published", "videoId", video.ID, "ownerId", video.OwnerID)
	respondData(ctx, w, http.StatusCreated, newVideoResponse(video), "video published")
}

// Get handles GET /api/v1/videos/{id}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	details, err := h.Details.Get(ctx, r.PathValue("id"), callerFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, details, "video details")
}

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Update handles PATCH /api/v1/videos/{id}. A JSON body updates the title
// and description; a multipart body may additionally replace the thumbnail.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	var req updateVideoRequest
	var thumbSaved storage.SavedObject

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			respondBadRequest(ctx, w, "invalid multipart form")
			return
		}
		req.Title = r.FormValue("title")
		req.Description = r.FormValue("description")

		file, header, found, err := formFile(r, "thumbnail")
		if err != nil {
			respondBadRequest(ctx, w, "invalid thumbnail upload")
			return
		}
		if found {
			defer file.Close()
			thumbSaved, err = saveFormFile(ctx, h.Blobs, file, header, "thumbnails")
			if err != nil {
				logger.Error("thumbnail upload failed", "error", err)
				respondError(ctx, w, err)
				return
			}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(ctx, w, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" && req.Description == "" && thumbSaved.StorageID == "" {
		respondBadRequest(ctx, w, "nothing to update")
		return
	}

	previousThumb := ""
	if req.Title != "" {
		video.Title = req.Title
	}
	if req.Description != "" {
		video.Description = req.Description
	}
	if thumbSaved.StorageID != "" {
		previousThumb = video.Thumbnail.StorageID
		video.Thumbnail = models.MediaAsset{URL: thumbSaved.URL, StorageID: thumbSaved.StorageID}
	}
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		h.removeBlob(ctx, thumbSaved.StorageID)
		respondError(ctx, w, err)
		return
	}

	if previousThumb != "" {
		h.removeBlob(ctx, previousThumb)
	}

	respondData(ctx, w, http.StatusOK, newVideoResponse(video), "video updated")
}

// Delete handles DELETE /api/v1/videos/{id}. The database cascade removes
// dependent rows first; blob removal failures after that surface as internal
// errors without rolling back the delete.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	var blobErr error
	for _, storageID := range []string{video.VideoFile.StorageID, video.Thumbnail.StorageID} {
		if storageID == "" {
			continue
		}
		if err := h.Blobs.Remove(ctx, storageID); err != nil {
			blobErr = fmt.Errorf("remove blob %s: %w", storageID, err)
		}
	}
	if blobErr != nil {
		respondError(ctx, w, blobErr)
		return
	}

	respondMessage(ctx, w, http.StatusOK, "video deleted")
}

// TogglePublish handles PATCH /api/v1/videos/{id}/publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	published := !video.IsPublished
	if err := h.Videos.SetPublished(ctx, video.ID, published); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]bool{"isPublished": published}, "publish state updated")
}

// ownedVideo loads the addressed video and verifies the caller owns it. It
// writes the response on failure.
func (h VideoHandler) ownedVideo(w http.ResponseWriter, r *http.Request) (models.Video, bool) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authentication required")
		return models.Video{}, false
	}

	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, views.ErrInvalidID)
		return models.Video{}, false
	}

	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return models.Video{}, false
	}

	if video.OwnerID != identity.UserID {
		respondError(ctx, w, errNotOwner)
		return models.Video{}, false
	}

	return video, true
}

// probeDuration copies the upload to a temporary file so the prober can read
// it from disk. The returned cleanup removes the file.
func (h VideoHandler) probeDuration(r *http.Request, file io.Reader) (float64, func(), error) {
	tmp, err := os.CreateTemp("", "vidtube-upload-*")
	if err != nil {
		return 0, nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	if _, err := io.Copy(tmp, file); err != nil {
		return 0, cleanup, fmt.Errorf("spool upload: %w", err)
	}

	duration, err := h.Prober.Duration(r.Context(), tmp.Name())
	if err != nil {
		return 0, cleanup, err
	}

	return duration, cleanup, nil
}

func (h VideoHandler) removeBlob(ctx context.Context, storageID string) {
	if storageID == "" || h.Blobs == nil {
		return
	}
	if err := h.Blobs.Remove(ctx, storageID); err != nil {
		logging.FromContext(ctx).Warn("failed to remove blob", "storageId", storageID, "error", err)
	}
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func intQueryParam(r *http.Request, name string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return value
}

func feedCacheKey(q views.FeedQuery) string {
	page := q.Page.Normalize()
	return fmt.Sprintf("feed:%s:%s:%s:%t:%d:%d",
		q.Search, q.OwnerID, q.Sort.Field, q.Sort.Desc, page.Number, page.Size)
}
