package models

import "time"

// MediaAsset references a binary object held by the blob store.
type MediaAsset struct {
	URL       string
	StorageID string
}

// User represents an account within the VidTube platform. Username and email
// are stored lowercase and must be unique.
type User struct {
	ID         string
	Username   string
	Email      string
	FullName   string
	Avatar     MediaAsset
	CoverImage MediaAsset
	Password   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Video is an uploaded video together with its blob store assets.
type Video struct {
	ID          string
	Title       string
	Description string
	VideoFile   MediaAsset
	Thumbnail   MediaAsset
	Duration    float64
	Views       int64
	IsPublished bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is a user comment attached to a video.
type Comment struct {
	ID        string
	Content   string
	VideoID   string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tweet is a short standalone post by a user.
type Tweet struct {
	ID        string
	Content   string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LikeTarget identifies which entity kind a like points at.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Like records that a user liked exactly one of a video, comment, or tweet.
// Only the identifier matching Target is populated.
type Like struct {
	ID        string
	LikedBy   string
	Target    LikeTarget
	VideoID   string
	CommentID string
	TweetID   string
	CreatedAt time.Time
}

// Subscription records that a subscriber follows a channel (another user).
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
