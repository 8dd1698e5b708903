package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

// VideoRepository defines the data access contract for videos, including the
// feed listing used by the view composers and the engagement side effects.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	ListPublished(ctx context.Context, q views.FeedQuery) ([]models.Video, int64, error)
	Update(ctx context.Context, video models.Video) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	AddWatchHistory(ctx context.Context, userID, videoID string) error
	ListWatchHistory(ctx context.Context, userID string) ([]models.Video, error)
}

// CommentRepository defines the data access contract for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page views.PageRequest) ([]models.Comment, int64, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
}

// TweetRepository defines the data access contract for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForUser(ctx context.Context, userID string) ([]models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
}

// LikeRepository defines the data access contract for likes across all targets.
type LikeRepository interface {
	Toggle(ctx context.Context, like models.Like) (bool, error)
	CountForVideo(ctx context.Context, videoID string) (int64, error)
	CountForComments(ctx context.Context, commentIDs []string) (map[string]int64, error)
	CountForTweets(ctx context.Context, tweetIDs []string) (map[string]int64, error)
	VideoLikedBy(ctx context.Context, userID, videoID string) (bool, error)
	LikedComments(ctx context.Context, userID string, commentIDs []string) (map[string]struct{}, error)
	LikedTweets(ctx context.Context, userID string, tweetIDs []string) (map[string]struct{}, error)
	ListLikedVideos(ctx context.Context, userID string) ([]models.Video, error)
}

// SubscriptionRepository defines the data access contract for subscriptions.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, sub models.Subscription) (bool, error)
	CountForChannel(ctx context.Context, channelID string) (int64, error)
	CountForSubscriber(ctx context.Context, subscriberID string) (int64, error)
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.User, error)
	ListChannels(ctx context.Context, subscriberID string) ([]models.User, error)
}
