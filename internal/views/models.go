package views

import "time"

// OwnerInfo is the public projection of a user attached to owned content.
type OwnerInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

// ChannelProfile is the aggregated public view of a user's channel.
type ChannelProfile struct {
	ID                        string `json:"id"`
	Username                  string `json:"username"`
	FullName                  string `json:"fullName"`
	Email                     string `json:"email"`
	AvatarURL                 string `json:"avatarUrl"`
	CoverURL                  string `json:"coverUrl"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

// VideoSummary is a feed entry: a published video joined to its owner's
// public fields.
type VideoSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"createdAt"`
	Owner        OwnerInfo `json:"owner"`
}

// VideoFeed is one page of the published-video feed.
type VideoFeed struct {
	Videos   []VideoSummary `json:"videos"`
	PageInfo PageInfo       `json:"pageInfo"`
}

// VideoOwner extends the owner projection with channel subscription data.
type VideoOwner struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	AvatarURL        string `json:"avatarUrl"`
	SubscribersCount int64  `json:"subscribersCount"`
	IsSubscribed     bool   `json:"isSubscribed"`
}

// VideoDetails is the single-video aggregate view.
type VideoDetails struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	VideoURL    string     `json:"videoUrl"`
	Duration    float64    `json:"duration"`
	Views       int64      `json:"views"`
	CreatedAt   time.Time  `json:"createdAt"`
	LikesCount  int64      `json:"likesCount"`
	IsLiked     bool       `json:"isLiked"`
	Owner       VideoOwner `json:"owner"`
}

// CommentView is a comment joined to its owner and like data.
type CommentView struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Owner      OwnerInfo `json:"owner"`
	LikesCount int64     `json:"likesCount"`
	IsLiked    bool      `json:"isLiked"`
}

// CommentPage is one page of a video's comments.
type CommentPage struct {
	Comments []CommentView `json:"comments"`
	PageInfo PageInfo      `json:"pageInfo"`
}

// TweetView is a tweet joined to its owner and like data.
type TweetView struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	Owner      OwnerInfo `json:"owner"`
	LikesCount int64     `json:"likesCount"`
	IsLiked    bool      `json:"isLiked"`
}
