package views

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// VideoComposer assembles the single-video aggregate: like data, the owner's
// channel projection, and per-caller personalization.
type VideoComposer struct {
	Videos   VideoReader
	Users    UserReader
	Likes    VideoLikeReader
	Subs     SubscriptionReader
	Recorder ViewRecorder
}

// Get returns the aggregate view for one video. On success it hands the view
// increment and, for authenticated callers, the watch-history append to the
// recorder; those side effects never delay or fail the read.
func (c VideoComposer) Get(ctx context.Context, videoID string, caller Caller) (VideoDetails, error) {
	if _, err := uuid.Parse(videoID); err != nil {
		return VideoDetails{}, ErrInvalidID
	}

	video, err := c.Videos.FindByID(ctx, videoID)
	if err != nil {
		return VideoDetails{}, err
	}

	likesCount, err := c.Likes.CountForVideo(ctx, video.ID)
	if err != nil {
		return VideoDetails{}, fmt.Errorf("count video likes: %w", err)
	}

	isLiked := false
	if !caller.Anonymous() {
		isLiked, err = c.Likes.VideoLikedBy(ctx, caller.UserID, video.ID)
		if err != nil {
			return VideoDetails{}, fmt.Errorf("check video like: %w", err)
		}
	}

	owner, err := c.composeOwner(ctx, video.OwnerID, caller)
	if err != nil {
		return VideoDetails{}, err
	}

	if c.Recorder != nil {
		c.Recorder.Record(ViewEvent{VideoID: video.ID, ViewerID: caller.UserID})
	}

	return VideoDetails{
		ID:          video.ID,
		Title:       video.Title,
		Description: video.Description,
		VideoURL:    video.VideoFile.URL,
		Duration:    video.Duration,
		Views:       video.Views,
		CreatedAt:   video.CreatedAt,
		LikesCount:  likesCount,
		IsLiked:     isLiked,
		Owner:       owner,
	}, nil
}

func (c VideoComposer) composeOwner(ctx context.Context, ownerID string, caller Caller) (VideoOwner, error) {
	user, err := c.Users.FindByID(ctx, ownerID)
	if err != nil {
		// A video without its owner row is a referential integrity breach,
		// not a missing resource.
		return VideoOwner{}, fmt.Errorf("owner %s: %w: %v", ownerID, ErrMissingOwner, err)
	}

	subscribers, err := c.Subs.CountForChannel(ctx, user.ID)
	if err != nil {
		return VideoOwner{}, fmt.Errorf("count owner subscribers: %w", err)
	}

	isSubscribed := false
	if !caller.Anonymous() {
		isSubscribed, err = c.Subs.Exists(ctx, caller.UserID, user.ID)
		if err != nil {
			return VideoOwner{}, fmt.Errorf("check owner subscription: %w", err)
		}
	}

	return VideoOwner{
		ID:               user.ID,
		Username:         user.Username,
		AvatarURL:        user.Avatar.URL,
		SubscribersCount: subscribers,
		IsSubscribed:     isSubscribed,
	}, nil
}
