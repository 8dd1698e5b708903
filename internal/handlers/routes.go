package handlers

import (
	"net/http"
	"time"

	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/storage"
	"github.com/vidtube/backend/internal/viewcache"
)

// Dependencies aggregates collaborators required by the HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Likes         LikeStore
	Subscriptions SubscriptionStore

	ChannelView ChannelViewer
	FeedView    FeedViewer
	VideoView   VideoViewer
	CommentView CommentViewer
	TweetView   TweetViewer
	HistoryView HistoryViewer

	Blobs    storage.BlobStore
	Prober   DurationProber
	Cache    viewcache.Cache
	CacheTTL time.Duration

	Verifier middleware.TokenVerifier
	Limiter  RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	requireAuth := middleware.RequireAuth(deps.Verifier)
	optionalAuth := middleware.OptionalAuth(deps.Verifier)

	health := NewHealthHandler()
	authH := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Blobs: deps.Blobs, Limiter: deps.Limiter}
	users := UserHandler{Users: deps.Users, Blobs: deps.Blobs, History: deps.HistoryView}
	channels := ChannelHandler{Channels: deps.ChannelView, Cache: deps.Cache, CacheTTL: deps.CacheTTL}
	videos := VideoHandler{
		Videos:   deps.Videos,
		Feed:     deps.FeedView,
		Details:  deps.VideoView,
		Blobs:    deps.Blobs,
		Prober:   deps.Prober,
		Cache:    deps.Cache,
		CacheTTL: deps.CacheTTL,
		Limiter:  deps.Limiter,
	}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos, Viewer: deps.CommentView}
	tweets := TweetHandler{Tweets: deps.Tweets, Viewer: deps.TweetView}
	likes := LikeHandler{Likes: deps.Likes}
	subs := SubscriptionHandler{Subscriptions: deps.Subscriptions}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/register", authH.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authH.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", authH.Logout)
	mux.HandleFunc("POST /api/v1/auth/refresh", authH.Refresh)
	mux.Handle("POST /api/v1/auth/change-password", requireAuth(http.HandlerFunc(authH.ChangePassword)))

	mux.Handle("GET /api/v1/users/me", requireAuth(http.HandlerFunc(users.Me)))
	mux.Handle("PATCH /api/v1/users/me", requireAuth(http.HandlerFunc(users.UpdateAccount)))
	mux.Handle("PATCH /api/v1/users/me/avatar", requireAuth(http.HandlerFunc(users.UpdateAvatar)))
	mux.Handle("PATCH /api/v1/users/me/cover", requireAuth(http.HandlerFunc(users.UpdateCover)))
	mux.Handle("GET /api/v1/users/history", requireAuth(http.HandlerFunc(users.WatchHistory)))

	mux.Handle("GET /api/v1/channels/{username}", optionalAuth(http.HandlerFunc(channels.Profile)))

	mux.Handle("GET /api/v1/videos", optionalAuth(http.HandlerFunc(videos.ListFeed)))
	mux.Handle("POST /api/v1/videos", requireAuth(http.HandlerFunc(videos.Publish)))
	mux.Handle("GET /api/v1/videos/{id}", optionalAuth(http.HandlerFunc(videos.Get)))
	mux.Handle("PATCH /api/v1/videos/{id}", requireAuth(http.HandlerFunc(videos.Update)))
	mux.Handle("DELETE /api/v1/videos/{id}", requireAuth(http.HandlerFunc(videos.Delete)))
	mux.Handle("PATCH /api/v1/videos/{id}/publish", requireAuth(http.HandlerFunc(videos.TogglePublish)))

	mux.Handle("GET /api/v1/videos/{id}/comments", optionalAuth(http.HandlerFunc(comments.List)))
	mux.Handle("POST /api/v1/videos/{id}/comments", requireAuth(http.HandlerFunc(comments.Add)))
	mux.Handle("PATCH /api/v1/comments/{id}", requireAuth(http.HandlerFunc(comments.Update)))
	mux.Handle("DELETE /api/v1/comments/{id}", requireAuth(http.HandlerFunc(comments.Delete)))

	mux.Handle("POST /api/v1/tweets", requireAuth(http.HandlerFunc(tweets.Create)))
	mux.Handle("GET /api/v1/tweets/user/{userId}", optionalAuth(http.HandlerFunc(tweets.ListForUser)))
	mux.Handle("PATCH /api/v1/tweets/{id}", requireAuth(http.HandlerFunc(tweets.Update)))
	mux.Handle("DELETE /api/v1/tweets/{id}", requireAuth(http.HandlerFunc(tweets.Delete)))

	mux.Handle("POST /api/v1/likes/video/{id}", requireAuth(http.HandlerFunc(likes.ToggleVideo)))
	mux.Handle("POST /api/v1/likes/comment/{id}", requireAuth(http.HandlerFunc(likes.ToggleComment)))
	mux.Handle("POST /api/v1/likes/tweet/{id}", requireAuth(http.HandlerFunc(likes.ToggleTweet)))
	mux.Handle("GET /api/v1/likes/videos", requireAuth(http.HandlerFunc(likes.ListLikedVideos)))

	mux.Handle("POST /api/v1/subscriptions/{channelId}", requireAuth(http.HandlerFunc(subs.Toggle)))
	mux.Handle("GET /api/v1/subscriptions/{channelId}/subscribers", optionalAuth(http.HandlerFunc(subs.Subscribers)))
	mux.Handle("GET /api/v1/subscriptions/{subscriberId}/channels", optionalAuth(http.HandlerFunc(subs.Channels)))
}
