package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

const videoColumns = `id, title, description, video_url, video_storage_id,
        thumbnail_url, thumbnail_storage_id, duration_seconds, views, is_published,
        owner_id, created_at, updated_at`

const qualifiedVideoColumns = `v.id, v.title, v.description, v.video_url, v.video_storage_id,
        v.thumbnail_url, v.thumbnail_storage_id, v.duration_seconds, v.views, v.is_published,
        v.owner_id, v.created_at, v.updated_at`

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(
		&video.ID, &video.Title, &video.Description,
		&video.VideoFile.URL, &video.VideoFile.StorageID,
		&video.Thumbnail.URL, &video.Thumbnail.StorageID,
		&video.Duration, &video.Views, &video.IsPublished,
		&video.OwnerID, &video.CreatedAt, &video.UpdatedAt,
	)
	return video, err
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos,
// the published feed, and the engagement side effects.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, title, description, video_url, video_storage_id,
                thumbnail_url, thumbnail_storage_id, duration_seconds, views, is_published,
                owner_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, video.ID, video.Title, video.Description,
		video.VideoFile.URL, video.VideoFile.StorageID,
		video.Thumbnail.URL, video.Thumbnail.StorageID,
		video.Duration, video.Views, video.IsPublished,
		video.OwnerID, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		if mapped := translatePgError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a video by identifier.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

var feedSortColumns = map[views.SortField]string{
	views.SortByCreatedAt: "created_at",
	views.SortByViews:     "views",
	views.SortByDuration:  "duration_seconds",
	views.SortByTitle:     "title",
}

// ListPublished executes the feed query plan: published videos only, optional
// text search over title and description, optional owner filter, whitelisted
// sort with an id tie-break, and limit/offset pagination. It returns the page
// and the total number of matching rows.
func (r *PostgresVideoRepository) ListPublished(ctx context.Context, q views.FeedQuery) ([]models.Video, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	where := []string{"is_published = TRUE"}
	args := []any{}

	if search := strings.TrimSpace(q.Search); search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if q.OwnerID != "" {
		args = append(args, q.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}

	sortColumn, ok := feedSortColumns[q.Sort.Field]
	if !ok {
		sortColumn = "created_at"
	}
	direction := "ASC"
	if q.Sort.Desc {
		direction = "DESC"
	}

	args = append(args, q.Page.Size, q.Page.Offset())
	query := fmt.Sprintf(`
        SELECT %s, COUNT(*) OVER () AS total
        FROM videos
        WHERE %s
        ORDER BY %s %s, id %s
        LIMIT $%d OFFSET $%d
    `, videoColumns, strings.Join(where, " AND "), sortColumn, direction, direction, len(args)-1, len(args))

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query video feed: %w", err)
	}
	defer rows.Close()

	var (
		videos []models.Video
		total  int64
	)
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(
			&video.ID, &video.Title, &video.Description,
			&video.VideoFile.URL, &video.VideoFile.StorageID,
			&video.Thumbnail.URL, &video.Thumbnail.StorageID,
			&video.Duration, &video.Views, &video.IsPublished,
			&video.OwnerID, &video.CreatedAt, &video.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan video feed row: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate video feed: %w", err)
	}

	// An empty page past the end still needs the real total.
	if len(videos) == 0 {
		countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM videos WHERE %s`, strings.Join(where, " AND "))
		if err := conn.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count video feed: %w", err)
		}
	}

	return videos, total, nil
}

// Update modifies title, description, and thumbnail of an existing video.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3,
            thumbnail_url = $4, thumbnail_storage_id = $5,
            updated_at = $6
        WHERE id = $1
    `, video.ID, video.Title, video.Description,
		video.Thumbnail.URL, video.Thumbnail.StorageID, video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetPublished flips the publish flag on a video.
func (r *PostgresVideoRepository) SetPublished(ctx context.Context, id string, published bool) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos SET is_published = $2, updated_at = $3 WHERE id = $1
    `, id, published, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update publish status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video and cascades to its likes, comments, the likes on
// those comments, and watch-history rows, all in one transaction. Blob assets
// are the caller's responsibility.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete video tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
        DELETE FROM likes
        WHERE video_id = $1
           OR comment_id IN (SELECT id FROM comments WHERE video_id = $1)
    `, id); err != nil {
		return fmt.Errorf("delete video likes: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE video_id = $1`, id); err != nil {
		return fmt.Errorf("delete video comments: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM watch_history WHERE video_id = $1`, id); err != nil {
		return fmt.Errorf("delete watch history: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete video tx: %w", err)
	}

	return nil
}

// IncrementViews adds one to a video's view counter.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AddWatchHistory records that the user watched the video. Watching the same
// video again keeps a single row, refreshed to the latest watch time.
func (r *PostgresVideoRepository) AddWatchHistory(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, video_id)
        DO UPDATE SET watched_at = EXCLUDED.watched_at
    `, userID, videoID, time.Now().UTC())
	if err != nil {
		if mapped := translatePgError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert watch history: %w", err)
	}

	return nil
}

// ListWatchHistory returns the user's watched videos, most recent first.
func (r *PostgresVideoRepository) ListWatchHistory(ctx context.Context, userID string) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+qualifiedVideoColumns+`
        FROM videos v
        JOIN watch_history wh ON wh.video_id = v.id
        WHERE wh.user_id = $1
        ORDER BY wh.watched_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watch history row: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}

	return videos, nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
var _ views.VideoReader = (*PostgresVideoRepository)(nil)
var _ views.EngagementStore = (*PostgresVideoRepository)(nil)
var _ views.HistoryReader = (*PostgresVideoRepository)(nil)
