package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
	"github.com/vidtube/backend/internal/viewcache"
	"github.com/vidtube/backend/internal/views"
)

// runtimeDeps holds the wired handler dependencies plus the background
// collaborators the server owns for the lifetime of the process.
type runtimeDeps struct {
	handlers handlers.Dependencies
	recorder *views.Recorder
	closers  []func() error
}

func (d *runtimeDeps) close() {
	for _, closeFn := range d.closers {
		_ = closeFn()
	}
}

// buildDependencies wires together the concrete implementations used by the
// HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (*runtimeDeps, error) {
	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	tweets := repositories.NewPostgresTweetRepository(pool)
	likes := repositories.NewPostgresLikeRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)
	sessionStore := repositories.NewPostgresSessionStore(pool)

	manager := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, sessionStore)

	blobs, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return nil, err
	}

	deps := &runtimeDeps{}

	var cache viewcache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := viewcache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, redisCache.Close)
		cache = redisCache
	} else {
		cache = viewcache.NewMemoryCache()
	}

	recorder := views.NewRecorder(videos, views.RecorderConfig{QueueSize: 256, Workers: 2}, logger)
	deps.recorder = recorder

	deps.handlers = handlers.Dependencies{
		Users:         users,
		Sessions:      manager,
		Videos:        videos,
		Comments:      comments,
		Tweets:        tweets,
		Likes:         likes,
		Subscriptions: subscriptions,

		ChannelView: views.ChannelComposer{Users: users, Subs: subscriptions},
		FeedView:    views.FeedComposer{Videos: videos, Users: users},
		VideoView: views.VideoComposer{
			Videos:   videos,
			Users:    users,
			Likes:    likes,
			Subs:     subscriptions,
			Recorder: recorder,
		},
		CommentView: views.CommentComposer{Videos: videos, Comments: comments, Users: users, Likes: likes},
		TweetView:   views.TweetComposer{Tweets: tweets, Users: users, Likes: likes},
		HistoryView: views.HistoryComposer{History: videos, Users: users},

		Blobs:    blobs,
		Prober:   media.NewFFProbe(cfg.FFProbePath, cfg.FFProbeTimeout),
		Cache:    cache,
		CacheTTL: cfg.ViewCacheTTL,

		Verifier: manager,
		Limiter:  middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
	}

	return deps, nil
}
