package views

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/models"
)

// HistoryComposer assembles the caller's watch history as video summaries.
type HistoryComposer struct {
	History HistoryReader
	Users   UserReader
}

// List returns the videos the caller has watched, most recent first.
func (c HistoryComposer) List(ctx context.Context, caller Caller) ([]VideoSummary, error) {
	if caller.Anonymous() {
		return nil, ErrCallerRequired
	}

	videos, err := c.History.ListWatchHistory(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list watch history: %w", err)
	}

	seen := make(map[string]struct{}, len(videos))
	ownerIDs := make([]string, 0, len(videos))
	for _, video := range videos {
		if _, ok := seen[video.OwnerID]; !ok {
			seen[video.OwnerID] = struct{}{}
			ownerIDs = append(ownerIDs, video.OwnerID)
		}
	}

	owners := map[string]models.User{}
	if len(ownerIDs) > 0 {
		owners, err = c.Users.FindByIDs(ctx, ownerIDs)
		if err != nil {
			return nil, fmt.Errorf("lookup history owners: %w", err)
		}
	}

	items := make([]VideoSummary, 0, len(videos))
	for _, video := range videos {
		owner, ok := owners[video.OwnerID]
		if !ok {
			return nil, fmt.Errorf("video %s: %w", video.ID, ErrMissingOwner)
		}
		items = append(items, VideoSummary{
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

	return items, nil
}
