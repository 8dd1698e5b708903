package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/views"
)

type inMemoryVideoStore struct {
	videos map[string]models.Video
}

func newInMemoryVideoStore() *inMemoryVideoStore {
	return &inMemoryVideoStore{videos: make(map[string]models.Video)}
}

func (s *inMemoryVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *inMemoryVideoStore) Update(_ context.Context, video models.Video) error {
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) SetPublished(_ context.Context, id string, published bool) error {
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.IsPublished = published
	s.videos[id] = video
	return nil
}

func (s *inMemoryVideoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

type stubFeedViewer struct {
	feed    views.VideoFeed
	lastQ   views.FeedQuery
	invoked int
}

func (s *stubFeedViewer) List(_ context.Context, q views.FeedQuery) (views.VideoFeed, error) {
	s.lastQ = q
	s.invoked++
	return s.feed, nil
}

type stubVideoViewer struct {
	details    views.VideoDetails
	err        error
	lastCaller views.Caller
}

func (s *stubVideoViewer) Get(_ context.Context, _ string, caller views.Caller) (views.VideoDetails, error) {
	s.lastCaller = caller
	return s.details, s.err
}

type stubProber struct {
	duration float64
}

func (s stubProber) Duration(_ context.Context, _ string) (float64, error) {
	return s.duration, nil
}

func authedRequest(req *http.Request, userID string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: userID}))
}

func publishForm(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("title", "My Video"); err != nil {
		t.Fatalf("write title: %v", err)
	}
	if err := writer.WriteField("description", "about things"); err != nil {
		t.Fatalf("write description: %v", err)
	}
	video, err := writer.CreateFormFile("videoFile", "clip.mp4")
	if err != nil {
		t.Fatalf("create video part: %v", err)
	}
	if _, err := video.Write([]byte("mp4-bytes")); err != nil {
		t.Fatalf("write video: %v", err)
	}
	thumb, err := writer.CreateFormFile("thumbnail", "thumb.png")
	if err != nil {
		t.Fatalf("create thumbnail part: %v", err)
	}
	if _, err := thumb.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write thumbnail: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestVideoHandlerPublish(t *testing.T) {
	store := newInMemoryVideoStore()
	blobs := newInMemoryBlobStore()
	handler := VideoHandler{Videos: store, Blobs: blobs, Prober: stubProber{duration: 42.5}}

	body, contentType := publishForm(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	req = authedRequest(req, "owner-1")
	rec := httptest.NewRecorder()

	handler.Publish(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	if len(store.videos) != 1 {
		t.Fatalf("expected 1 stored video, got %d", len(store.videos))
	}
	for _, video := range store.videos {
		if video.Duration != 42.5 {
			t.Fatalf("expected probed duration 42.5, got %v", video.Duration)
		}
		if !video.IsPublished {
			t.Fatal("expected published video")
		}
		if video.OwnerID != "owner-1" {
			t.Fatalf("unexpected owner %q", video.OwnerID)
		}
		if video.VideoFile.StorageID == "" || video.Thumbnail.StorageID == "" {
			t.Fatalf("expected both assets stored: %+v", video)
		}
	}
	if len(blobs.saved) != 2 {
		t.Fatalf("expected 2 stored blobs, got %d", len(blobs.saved))
	}
}

func TestVideoHandlerPublishRequiresAuth(t *testing.T) {
	handler := VideoHandler{Videos: newInMemoryVideoStore(), Blobs: newInMemoryBlobStore(), Prober: stubProber{}}

	body, contentType := publishForm(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Publish(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestVideoHandlerFeedQueryMapping(t *testing.T) {
	feed := &stubFeedViewer{feed: views.VideoFeed{
		Videos:   []views.VideoSummary{},
		PageInfo: views.PageInfo{Page: 2, PageSize: 5},
	}}
	handler := VideoHandler{Feed: feed}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?query=cats&sortBy=views&sortDir=asc&page=2&limit=5", nil)
	rec := httptest.NewRecorder()

	handler.ListFeed(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	if feed.lastQ.Search != "cats" {
		t.Fatalf("unexpected search %q", feed.lastQ.Search)
	}
	if feed.lastQ.Sort.Field != views.SortByViews || feed.lastQ.Sort.Desc {
		t.Fatalf("unexpected sort %+v", feed.lastQ.Sort)
	}
	if feed.lastQ.Page.Number != 2 || feed.lastQ.Page.Size != 5 {
		t.Fatalf("unexpected page %+v", feed.lastQ.Page)
	}

	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestVideoHandlerGetPassesCaller(t *testing.T) {
	viewer := &stubVideoViewer{details: views.VideoDetails{ID: uuid.NewString()}}
	handler := VideoHandler{Details: viewer}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/abc", nil)
	req.SetPathValue("id", viewer.details.ID)
	req = authedRequest(req, "viewer-9")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if viewer.lastCaller.UserID != "viewer-9" {
		t.Fatalf("expected caller to be forwarded, got %+v", viewer.lastCaller)
	}
}

func TestVideoHandlerUpdateOwnership(t *testing.T) {
	store := newInMemoryVideoStore()
	videoID := uuid.NewString()
	store.videos[videoID] = models.Video{ID: videoID, Title: "orig", OwnerID: "owner-1"}
	handler := VideoHandler{Videos: store, Blobs: newInMemoryBlobStore()}

	body, _ := json.Marshal(updateVideoRequest{Title: "new title"})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/"+videoID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", videoID)
	req = authedRequest(req, "intruder")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
	if store.videos[videoID].Title != "orig" {
		t.Fatal("non-owner must not modify the video")
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/v1/videos/"+videoID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", videoID)
	req = authedRequest(req, "owner-1")
	rec = httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if store.videos[videoID].Title != "new title" {
		t.Fatalf("expected title update, got %q", store.videos[videoID].Title)
	}
}

func TestVideoHandlerDeleteRemovesBlobs(t *testing.T) {
	store := newInMemoryVideoStore()
	blobs := newInMemoryBlobStore()

	videoID := uuid.NewString()
	store.videos[videoID] = models.Video{
		ID:        videoID,
		OwnerID:   "owner-1",
		VideoFile: models.MediaAsset{StorageID: "videos/a.mp4"},
		Thumbnail: models.MediaAsset{StorageID: "thumbnails/a.png"},
	}
	handler := VideoHandler{Videos: store, Blobs: blobs}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos/"+videoID, nil)
	req.SetPathValue("id", videoID)
	req = authedRequest(req, "owner-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if len(store.videos) != 0 {
		t.Fatal("expected video row to be removed")
	}
	if len(blobs.removed) != 2 {
		t.Fatalf("expected 2 removed blobs, got %v", blobs.removed)
	}
}

func TestVideoHandlerTogglePublish(t *testing.T) {
	store := newInMemoryVideoStore()
	videoID := uuid.NewString()
	store.videos[videoID] = models.Video{ID: videoID, OwnerID: "owner-1", IsPublished: true}
	handler := VideoHandler{Videos: store}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/"+videoID+"/publish", nil)
	req.SetPathValue("id", videoID)
	req = authedRequest(req, "owner-1")
	rec := httptest.NewRecorder()

	handler.TogglePublish(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if store.videos[videoID].IsPublished {
		t.Fatal("expected publish state to flip to false")
	}
}

func TestVideoHandlerUnknownVideoIs404(t *testing.T) {
	handler := VideoHandler{Videos: newInMemoryVideoStore(), Blobs: newInMemoryBlobStore()}

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos/"+id, nil)
	req.SetPathValue("id", id)
	req = authedRequest(req, "owner-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}
