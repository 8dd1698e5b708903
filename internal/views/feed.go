package views

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

// FeedComposer assembles pages of the published-video feed.
type FeedComposer struct {
	Videos VideoReader
	Users  UserReader
}

// List executes the feed query and joins each video to its owner's public
// fields. The owner filter must be a well-formed identifier when present.
func (c FeedComposer) List(ctx context.Context, q FeedQuery) (VideoFeed, error) {
	if q.OwnerID != "" {
		if _, err := uuid.Parse(q.OwnerID); err != nil {
			return VideoFeed{}, ErrInvalidID
		}
	}
	q.Page = q.Page.Normalize()
	if q.Sort.Field == "" {
		q.Sort = Sort{Field: SortByCreatedAt, Desc: true}
	}

	videos, total, err := c.Videos.ListPublished(ctx, q)
	if err != nil {
		return VideoFeed{}, fmt.Errorf("list published videos: %w", err)
	}

	owners, err := c.lookupOwners(ctx, videos)
	if err != nil {
		return VideoFeed{}, err
	}

	summaries := make([]VideoSummary, 0, len(videos))
	for _, video := range videos {
		owner, ok := owners[video.OwnerID]
		if !ok {
			return VideoFeed{}, fmt.Errorf("video %s: %w", video.ID, ErrMissingOwner)
		}
		summaries = append(summaries, VideoSummary{
			ID:           video.ID,
			Title:        video.Title,
			Description:  video.Description,
			ThumbnailURL: video.Thumbnail.URL,
			Duration:     video.Duration,
			Views:        video.Views,
			CreatedAt:    video.CreatedAt,
			Owner: OwnerInfo{
				ID:        owner.ID,
				Username:  owner.Username,
				AvatarURL: owner.Avatar.URL,
			},
		})
	}

	return VideoFeed{
		Videos:   summaries,
		PageInfo: NewPageInfo(total, q.Page),
	}, nil
}

func (c FeedComposer) lookupOwners(ctx context.Context, videos []models.Video) (map[string]models.User, error) {
	seen := make(map[string]struct{}, len(videos))
	ids := make([]string, 0, len(videos))
	for _, video := range videos {
		if _, ok := seen[video.OwnerID]; ok {
			continue
		}
		seen[video.OwnerID] = struct{}{}
		ids = append(ids, video.OwnerID)
	}
	if len(ids) == 0 {
		return map[string]models.User{}, nil
	}

	owners, err := c.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup video owners: %w", err)
	}
	return owners, nil
}
