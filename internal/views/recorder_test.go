package views

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeEngagementStore struct {
	mu         sync.Mutex
	increments map[string]int
	history    map[string]map[string]int
}

func newFakeEngagementStore() *fakeEngagementStore {
	return &fakeEngagementStore{
		increments: make(map[string]int),
		history:    make(map[string]map[string]int),
	}
}

func (f *fakeEngagementStore) IncrementViews(_ context.Context, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.increments[videoID]++
	return nil
}

func (f *fakeEngagementStore) AddWatchHistory(_ context.Context, userID, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.history[userID] == nil {
		f.history[userID] = make(map[string]int)
	}
	f.history[userID][videoID]++
	return nil
}

func (f *fakeEngagementStore) viewCount(videoID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.increments[videoID]
}

func (f *fakeEngagementStore) watched(userID, videoID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history[userID][videoID]
}

func TestRecorderAppliesAuthenticatedEvent(t *testing.T) {
	store := newFakeEngagementStore()
	recorder := NewRecorder(store, RecorderConfig{QueueSize: 4, Workers: 1}, nil)

	recorder.Record(ViewEvent{VideoID: "video-1", ViewerID: "user-1"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := recorder.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if got := store.viewCount("video-1"); got != 1 {
		t.Fatalf("expected 1 view increment, got %d", got)
	}
	if got := store.watched("user-1", "video-1"); got != 1 {
		t.Fatalf("expected 1 watch history append, got %d", got)
	}
}

func TestRecorderSkipsHistoryForAnonymousEvent(t *testing.T) {
	store := newFakeEngagementStore()
	recorder := NewRecorder(store, RecorderConfig{QueueSize: 4, Workers: 1}, nil)

	recorder.Record(ViewEvent{VideoID: "video-1"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := recorder.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if got := store.viewCount("video-1"); got != 1 {
		t.Fatalf("expected 1 view increment, got %d", got)
	}
	if len(store.history) != 0 {
		t.Fatalf("anonymous views must not write history, got %+v", store.history)
	}
}

func TestRecorderAppliesEveryEventUnderOverflow(t *testing.T) {
	store := newFakeEngagementStore()
	recorder := NewRecorder(store, RecorderConfig{QueueSize: 1, Workers: 1}, nil)

	const events = 20
	for i := 0; i < events; i++ {
		recorder.Record(ViewEvent{VideoID: "video-1", ViewerID: "user-1"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := recorder.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if got := store.viewCount("video-1"); got != events {
		t.Fatalf("expected %d view increments, got %d", events, got)
	}
}

func TestRecorderIgnoresEventsAfterShutdown(t *testing.T) {
	store := newFakeEngagementStore()
	recorder := NewRecorder(store, RecorderConfig{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := recorder.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	recorder.Record(ViewEvent{VideoID: "video-1"})

	if got := store.viewCount("video-1"); got != 0 {
		t.Fatalf("expected no increments after shutdown, got %d", got)
	}
}

func TestPageRequestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"defaults", PageRequest{}, PageRequest{Number: 1, Size: 10}},
		{"negative", PageRequest{Number: -2, Size: -5}, PageRequest{Number: 1, Size: 10}},
		{"clamped", PageRequest{Number: 3, Size: 1000}, PageRequest{Number: 3, Size: 100}},
		{"unchanged", PageRequest{Number: 2, Size: 25}, PageRequest{Number: 2, Size: 25}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestNewPageInfo(t *testing.T) {
	info := NewPageInfo(25, PageRequest{Number: 2, Size: 10})
	if info.TotalPages != 3 {
		t.Fatalf("expected 3 pages for 25 items of 10, got %d", info.TotalPages)
	}
	if !info.HasNext || !info.HasPrev {
		t.Fatalf("expected middle page to have neighbours: %+v", info)
	}

	last := NewPageInfo(25, PageRequest{Number: 3, Size: 10})
	if last.HasNext {
		t.Fatal("last page must not report a next page")
	}

	empty := NewPageInfo(0, PageRequest{Number: 1, Size: 10})
	if empty.TotalPages != 0 || empty.HasNext || empty.HasPrev {
		t.Fatalf("unexpected empty page info: %+v", empty)
	}
}

func TestParseSortField(t *testing.T) {
	cases := map[string]SortField{
		"views":     SortByViews,
		"duration":  SortByDuration,
		"title":     SortByTitle,
		"createdAt": SortByCreatedAt,
		"bogus":     SortByCreatedAt,
		"":          SortByCreatedAt,
	}
	for in, want := range cases {
		if got := ParseSortField(in); got != want {
			t.Fatalf("ParseSortField(%q) = %q, want %q", in, got, want)
		}
	}
}
