package views

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// TweetComposer assembles a user's tweets with owner and like data.
type TweetComposer struct {
	Tweets TweetReader
	Users  UserReader
	Likes  TweetLikeReader
}

// ListForUser returns the tweets posted by userID, newest first. The user
// must exist; an unknown identifier surfaces as not found.
func (c TweetComposer) ListForUser(ctx context.Context, userID string, caller Caller) ([]TweetView, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrInvalidID
	}

	owner, err := c.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tweets, err := c.Tweets.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tweets: %w", err)
	}

	ids := make([]string, len(tweets))
	for i, tweet := range tweets {
		ids[i] = tweet.ID
	}

	counts := map[string]int64{}
	liked := map[string]struct{}{}
	if len(ids) > 0 {
		counts, err = c.Likes.CountForTweets(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("count tweet likes: %w", err)
		}
		if !caller.Anonymous() {
			liked, err = c.Likes.LikedTweets(ctx, caller.UserID, ids)
			if err != nil {
				return nil, fmt.Errorf("check tweet likes: %w", err)
			}
		}
	}

	ownerInfo := OwnerInfo{
		ID:        owner.ID,
		Username:  owner.Username,
		AvatarURL: owner.Avatar.URL,
	}

	items := make([]TweetView, 0, len(tweets))
	for _, tweet := range tweets {
		_, isLiked := liked[tweet.ID]
		items = append(items, TweetView{
			ID:         tweet.ID,
			Content:    tweet.Content,
			CreatedAt:  tweet.CreatedAt,
			Owner:      ownerInfo,
			LikesCount: counts[tweet.ID],
			IsLiked:    isLiked,
		})
	}

	return items, nil
}
