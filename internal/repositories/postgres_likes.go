package repositories

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes
// across videos, comments, and tweets.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

func likeTargetColumn(target models.LikeTarget) (string, error) {
	switch target {
	case models.LikeTargetVideo:
		return "video_id", nil
	case models.LikeTargetComment:
		return "comment_id", nil
	case models.LikeTargetTweet:
		return "tweet_id", nil
	default:
		return "", fmt.Errorf("unknown like target %q", target)
	}
}

func likeTargetID(like models.Like) string {
	switch like.Target {
	case models.LikeTargetVideo:
		return like.VideoID
	case models.LikeTargetComment:
		return like.CommentID
	case models.LikeTargetTweet:
		return like.TweetID
	}
	return ""
}

// Toggle inserts the like if absent and removes it otherwise, in one
// transaction. The returned bool reports whether the like exists after the
// call. A concurrent duplicate insert hits the (liked_by, target) unique
// index; the loser reports liked rather than a conflict. Serialization
// failures are retried.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, like models.Like) (bool, error) {
	column, err := likeTargetColumn(like.Target)
	if err != nil {
		return false, err
	}
	targetID := likeTargetID(like)
	if targetID == "" {
		return false, fmt.Errorf("like target id missing for %q", like.Target)
	}

	var (
		liked   bool
		lastErr error
	)
	for attempt := 0; attempt < toggleRetryAttempts; attempt++ {
		liked, lastErr = r.toggleOnce(ctx, like, column, targetID)
		if lastErr == nil || !isSerializationFailure(lastErr) {
			return liked, lastErr
		}
	}
	return false, lastErr
}

func (r *PostgresLikeRepository) toggleOnce(ctx context.Context, like models.Like, column, targetID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin toggle like tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		fmt.Sprintf(`DELETE FROM likes WHERE liked_by = $1 AND %s = $2`, column),
		like.LikedBy, targetID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		if err := tx.Commit(ctx); err != nil {
			return false, fmt.Errorf("commit toggle like tx: %w", err)
		}
		return false, nil
	}

	_, err = tx.Exec(ctx,
		fmt.Sprintf(`
            INSERT INTO likes (id, liked_by, %s, created_at)
            VALUES ($1, $2, $3, $4)
        `, column),
		like.ID, like.LikedBy, targetID, like.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return true, nil
		}
		if mapped := translatePgError(err); mapped != nil {
			return false, mapped
		}
		return false, fmt.Errorf("insert like: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit toggle like tx: %w", err)
	}

	return true, nil
}

// CountForVideo returns the number of likes on a video.
func (r *PostgresLikeRepository) CountForVideo(ctx context.Context, videoID string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE video_id = $1`, videoID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count video likes: %w", err)
	}
	return count, nil
}

func (r *PostgresLikeRepository) countByTarget(ctx context.Context, column string, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, fmt.Sprintf(`
        SELECT %s, COUNT(*)
        FROM likes
        WHERE %s = ANY($1)
        GROUP BY %s
    `, column, column, column), ids)
	if err != nil {
		return nil, fmt.Errorf("count likes by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    string
			count int64
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan like count: %w", err)
		}
		out[id] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate like counts: %w", err)
	}

	return out, nil
}

// CountForComments returns per-comment like counts for the given identifiers.
func (r *PostgresLikeRepository) CountForComments(ctx context.Context, commentIDs []string) (map[string]int64, error) {
	return r.countByTarget(ctx, "comment_id", commentIDs)
}

// CountForTweets returns per-tweet like counts for the given identifiers.
func (r *PostgresLikeRepository) CountForTweets(ctx context.Context, tweetIDs []string) (map[string]int64, error) {
	return r.countByTarget(ctx, "tweet_id", tweetIDs)
}

// VideoLikedBy reports whether the user has liked the video.
func (r *PostgresLikeRepository) VideoLikedBy(ctx context.Context, userID, videoID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM likes WHERE liked_by = $1 AND video_id = $2)
    `, userID, videoID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check video like: %w", err)
	}
	return exists, nil
}

func (r *PostgresLikeRepository) likedByTarget(ctx context.Context, column, userID string, ids []string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, fmt.Sprintf(`
        SELECT %s FROM likes WHERE liked_by = $1 AND %s = ANY($2)
    `, column, column), userID, ids)
	if err != nil {
		return nil, fmt.Errorf("query liked %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan liked id: %w", err)
		}
		out[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked ids: %w", err)
	}

	return out, nil
}

// LikedComments returns the subset of commentIDs the user has liked.
func (r *PostgresLikeRepository) LikedComments(ctx context.Context, userID string, commentIDs []string) (map[string]struct{}, error) {
	return r.likedByTarget(ctx, "comment_id", userID, commentIDs)
}

// LikedTweets returns the subset of tweetIDs the user has liked.
func (r *PostgresLikeRepository) LikedTweets(ctx context.Context, userID string, tweetIDs []string) (map[string]struct{}, error) {
	return r.likedByTarget(ctx, "tweet_id", userID, tweetIDs)
}

// ListLikedVideos returns the videos the user has liked, most recently liked
// first.
func (r *PostgresLikeRepository) ListLikedVideos(ctx context.Context, userID string) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+qualifiedVideoColumns+`
        FROM videos v
        JOIN likes l ON l.video_id = v.id
        WHERE l.liked_by = $1
        ORDER BY l.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan liked video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", err)
	}

	return videos, nil
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
var _ views.VideoLikeReader = (*PostgresLikeRepository)(nil)
var _ views.CommentLikeReader = (*PostgresLikeRepository)(nil)
var _ views.TweetLikeReader = (*PostgresLikeRepository)(nil)
