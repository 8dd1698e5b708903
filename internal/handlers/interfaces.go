package handlers

import (
	"context"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// UserStore captures the persistence operations required by the auth and
// account handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

// SessionManager issues, refreshes, and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, user models.User) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string, users auth.UserLookup) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string)
}

// VideoStore captures the write-side persistence for videos.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
}

// CommentStore captures the write-side persistence for comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
}

// TweetStore captures the write-side persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
}

// LikeStore captures like toggling and the caller's liked-video listing.
type LikeStore interface {
	Toggle(ctx context.Context, like models.Like) (bool, error)
	ListLikedVideos(ctx context.Context, userID string) ([]models.Video, error)
}

// SubscriptionStore captures subscription toggling and membership listings.
type SubscriptionStore interface {
	Toggle(ctx context.Context, sub models.Subscription) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.User, error)
	ListChannels(ctx context.Context, subscriberID string) ([]models.User, error)
}

// DurationProber resolves the duration of an uploaded video file on disk.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// ChannelViewer composes the public channel profile.
type ChannelViewer interface {
	Profile(ctx context.Context, username string, caller views.Caller) (views.ChannelProfile, error)
}

// FeedViewer composes the paginated published-video feed.
type FeedViewer interface {
	List(ctx context.Context, q views.FeedQuery) (views.VideoFeed, error)
}

// VideoViewer composes the single-video aggregate.
type VideoViewer interface {
	Get(ctx context.Context, videoID string, caller views.Caller) (views.VideoDetails, error)
}

// CommentViewer composes a page of a video's comments.
type CommentViewer interface {
	List(ctx context.Context, videoID string, page views.PageRequest, caller views.Caller) (views.CommentPage, error)
}

// TweetViewer composes a user's tweets.
type TweetViewer interface {
	ListForUser(ctx context.Context, userID string, caller views.Caller) ([]views.TweetView, error)
}

// HistoryViewer composes the caller's watch history.
type HistoryViewer interface {
	List(ctx context.Context, caller views.Caller) ([]views.VideoSummary, error)
}
