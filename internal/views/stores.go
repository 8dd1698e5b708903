package views

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// UserReader captures the user lookups required by the composers.
type UserReader interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// SubscriptionReader captures subscription counts and membership checks.
type SubscriptionReader interface {
	CountForChannel(ctx context.Context, channelID string) (int64, error)
	CountForSubscriber(ctx context.Context, subscriberID string) (int64, error)
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)
}

// VideoReader captures video lookups and the published-feed listing.
type VideoReader interface {
	FindByID(ctx context.Context, id string) (models.Video, error)
	ListPublished(ctx context.Context, q FeedQuery) ([]models.Video, int64, error)
}

// VideoLikeReader captures like lookups scoped to a single video.
type VideoLikeReader interface {
	CountForVideo(ctx context.Context, videoID string) (int64, error)
	VideoLikedBy(ctx context.Context, userID, videoID string) (bool, error)
}

// CommentReader lists comments for a video, newest first.
type CommentReader interface {
	ListForVideo(ctx context.Context, videoID string, page PageRequest) ([]models.Comment, int64, error)
}

// CommentLikeReader captures batched like lookups for comments.
type CommentLikeReader interface {
	CountForComments(ctx context.Context, commentIDs []string) (map[string]int64, error)
	LikedComments(ctx context.Context, userID string, commentIDs []string) (map[string]struct{}, error)
}

// TweetReader lists a user's tweets, newest first.
type TweetReader interface {
	ListForUser(ctx context.Context, userID string) ([]models.Tweet, error)
}

// TweetLikeReader captures batched like lookups for tweets.
type TweetLikeReader interface {
	CountForTweets(ctx context.Context, tweetIDs []string) (map[string]int64, error)
	LikedTweets(ctx context.Context, userID string, tweetIDs []string) (map[string]struct{}, error)
}

// HistoryReader lists the videos a user has watched, most recent first.
type HistoryReader interface {
	ListWatchHistory(ctx context.Context, userID string) ([]models.Video, error)
}

// ViewRecorder accepts best-effort engagement side effects from the single
// video composer. Implementations must never block the caller.
type ViewRecorder interface {
	Record(ev ViewEvent)
}
