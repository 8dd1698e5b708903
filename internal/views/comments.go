package views

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

// CommentComposer assembles paginated comment views for a video.
type CommentComposer struct {
	Videos   VideoReader
	Comments CommentReader
	Users    UserReader
	Likes    CommentLikeReader
}

// List returns one page of a video's comments, newest first, each joined to
// its owner's public fields and like data.
func (c CommentComposer) List(ctx context.Context, videoID string, page PageRequest, caller Caller) (CommentPage, error) {
	if _, err := uuid.Parse(videoID); err != nil {
		return CommentPage{}, ErrInvalidID
	}

	// The video must exist even when it has no comments yet.
	if _, err := c.Videos.FindByID(ctx, videoID); err != nil {
		return CommentPage{}, err
	}

	page = page.Normalize()

	comments, total, err := c.Comments.ListForVideo(ctx, videoID, page)
	if err != nil {
		return CommentPage{}, fmt.Errorf("list comments: %w", err)
	}

	ids := make([]string, len(comments))
	ownerIDs := make([]string, 0, len(comments))
	seen := make(map[string]struct{}, len(comments))
	for i, comment := range comments {
		ids[i] = comment.ID
		if _, ok := seen[comment.OwnerID]; !ok {
			seen[comment.OwnerID] = struct{}{}
			ownerIDs = append(ownerIDs, comment.OwnerID)
		}
	}

	owners := map[string]models.User{}
	if len(ownerIDs) > 0 {
		owners, err = c.Users.FindByIDs(ctx, ownerIDs)
		if err != nil {
			return CommentPage{}, fmt.Errorf("lookup comment owners: %w", err)
		}
	}

	counts := map[string]int64{}
	liked := map[string]struct{}{}
	if len(ids) > 0 {
		counts, err = c.Likes.CountForComments(ctx, ids)
		if err != nil {
			return CommentPage{}, fmt.Errorf("count comment likes: %w", err)
		}
		if !caller.Anonymous() {
			liked, err = c.Likes.LikedComments(ctx, caller.UserID, ids)
			if err != nil {
				return CommentPage{}, fmt.Errorf("check comment likes: %w", err)
			}
		}
	}

	items := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		owner, ok := owners[comment.OwnerID]
		if !ok {
			return CommentPage{}, fmt.Errorf("comment %s: %w", comment.ID, ErrMissingOwner)
		}
		_, isLiked := liked[comment.ID]
		items = append(items, CommentView{
			ID:        comment.ID,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
			UpdatedAt: comment.UpdatedAt,
			Owner: OwnerInfo{
				ID:        owner.ID,
				Username:  owner.Username,
				AvatarURL: owner.Avatar.URL,
			},
			LikesCount: counts[comment.ID],
			IsLiked:    isLiked,
		})
	}

	return CommentPage{
		Comments: items,
		PageInfo: NewPageInfo(total, page),
	}, nil
}
