package views

import (
	"context"
	"fmt"
	"strings"
)

// ChannelComposer assembles the aggregated channel profile view.
type ChannelComposer struct {
	Users UserReader
	Subs  SubscriptionReader
}

// Profile looks up a channel by username and joins in subscription counts.
// The username comparison is case-insensitive. IsSubscribed is always false
// for anonymous callers.
func (c ChannelComposer) Profile(ctx context.Context, username string, caller Caller) (ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return ChannelProfile{}, ErrMissingUsername
	}

	user, err := c.Users.FindByUsername(ctx, username)
	if err != nil {
		return ChannelProfile{}, err
	}

	subscribers, err := c.Subs.CountForChannel(ctx, user.ID)
	if err != nil {
		return ChannelProfile{}, fmt.Errorf("count subscribers: %w", err)
	}

	subscribedTo, err := c.Subs.CountForSubscriber(ctx, user.ID)
	if err != nil {
		return ChannelProfile{}, fmt.Errorf("count subscribed channels: %w", err)
	}

	isSubscribed := false
	if !caller.Anonymous() {
		isSubscribed, err = c.Subs.Exists(ctx, caller.UserID, user.ID)
		if err != nil {
			return ChannelProfile{}, fmt.Errorf("check subscription: %w", err)
		}
	}

	return ChannelProfile{
		ID:                        user.ID,
		Username:                  user.Username,
		FullName:                  user.FullName,
		Email:                     user.Email,
		AvatarURL:                 user.Avatar.URL,
		CoverURL:                  user.CoverImage.URL,
		SubscribersCount:          subscribers,
		ChannelsSubscribedToCount: subscribedTo,
		IsSubscribed:              isSubscribed,
	}, nil
}
