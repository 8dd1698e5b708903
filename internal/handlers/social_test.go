package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

type inMemoryLikeStore struct {
	toggled []models.Like
	liked   bool
}

func (s *inMemoryLikeStore) Toggle(_ context.Context, like models.Like) (bool, error) {
	s.toggled = append(s.toggled, like)
	s.liked = !s.liked
	return s.liked, nil
}

func (s *inMemoryLikeStore) ListLikedVideos(_ context.Context, _ string) ([]models.Video, error) {
	return []models.Video{{ID: uuid.NewString(), Title: "liked"}}, nil
}

type inMemorySubscriptionStore struct {
	toggled []models.Subscription
}

func (s *inMemorySubscriptionStore) Toggle(_ context.Context, sub models.Subscription) (bool, error) {
	s.toggled = append(s.toggled, sub)
	return true, nil
}

func (s *inMemorySubscriptionStore) ListSubscribers(_ context.Context, _ string) ([]models.User, error) {
	return []models.User{{ID: uuid.NewString(), Username: "fan"}}, nil
}

func (s *inMemorySubscriptionStore) ListChannels(_ context.Context, _ string) ([]models.User, error) {
	return nil, nil
}

func TestLikeHandlerToggleTargets(t *testing.T) {
	store := &inMemoryLikeStore{}
	handler := LikeHandler{Likes: store}

	targetID := uuid.NewString()

	cases := []struct {
		invoke func(http.ResponseWriter, *http.Request)
		check  func(models.Like) bool
	}{
		{handler.ToggleVideo, func(l models.Like) bool { return l.VideoID == targetID && l.Target == models.LikeTargetVideo }},
		{handler.ToggleComment, func(l models.Like) bool { return l.CommentID == targetID && l.Target == models.LikeTargetComment }},
		{handler.ToggleTweet, func(l models.Like) bool { return l.TweetID == targetID && l.Target == models.LikeTargetTweet }},
	}

	for i, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/x/"+targetID, nil)
		req.SetPathValue("id", targetID)
		req = authedRequest(req, "user-1")
		rec := httptest.NewRecorder()

		c.invoke(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("case %d: expected status %d got %d", i, http.StatusOK, rec.Code)
		}
		like := store.toggled[len(store.toggled)-1]
		if !c.check(like) {
			t.Fatalf("case %d: unexpected like %+v", i, like)
		}
		if like.LikedBy != "user-1" {
			t.Fatalf("case %d: unexpected liker %q", i, like.LikedBy)
		}
	}
}

func TestLikeHandlerToggleRequiresValidID(t *testing.T) {
	handler := LikeHandler{Likes: &inMemoryLikeStore{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/video/nope", nil)
	req.SetPathValue("id", "nope")
	req = authedRequest(req, "user-1")
	rec := httptest.NewRecorder()

	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestSubscriptionHandlerRejectsSelfSubscribe(t *testing.T) {
	store := &inMemorySubscriptionStore{}
	handler := SubscriptionHandler{Subscriptions: store}

	userID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/"+userID, nil)
	req.SetPathValue("channelId", userID)
	req = authedRequest(req, userID)
	rec := httptest.NewRecorder()

	handler.Toggle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
	if len(store.toggled) != 0 {
		t.Fatal("self subscription must not reach the store")
	}
}

func TestSubscriptionHandlerToggle(t *testing.T) {
	store := &inMemorySubscriptionStore{}
	handler := SubscriptionHandler{Subscriptions: store}

	channelID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/"+channelID, nil)
	req.SetPathValue("channelId", channelID)
	req = authedRequest(req, "subscriber-1")
	rec := httptest.NewRecorder()

	handler.Toggle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if len(store.toggled) != 1 || store.toggled[0].ChannelID != channelID || store.toggled[0].SubscriberID != "subscriber-1" {
		t.Fatalf("unexpected toggle %+v", store.toggled)
	}

	resp := decodeEnvelope(t, rec)
	payload, _ := json.Marshal(resp.Data)
	var data map[string]bool
	if err := json.Unmarshal(payload, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !data["subscribed"] {
		t.Fatalf("expected subscribed=true, got %+v", data)
	}
}

func TestSubscriptionHandlerSubscribers(t *testing.T) {
	handler := SubscriptionHandler{Subscriptions: &inMemorySubscriptionStore{}}

	channelID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/"+channelID+"/subscribers", nil)
	req.SetPathValue("channelId", channelID)
	rec := httptest.NewRecorder()

	handler.Subscribers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
}
