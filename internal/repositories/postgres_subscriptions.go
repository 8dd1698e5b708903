package repositories

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for
// channel subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle subscribes when no subscription exists and unsubscribes otherwise,
// in one transaction. The returned bool reports whether the subscription
// exists after the call. When a concurrent toggle wins the insert race, the
// loser's unique violation reports subscribed rather than a conflict.
// Serialization failures are retried.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, sub models.Subscription) (bool, error) {
	var (
		subscribed bool
		lastErr    error
	)
	for attempt := 0; attempt < toggleRetryAttempts; attempt++ {
		subscribed, lastErr = r.toggleOnce(ctx, sub)
		if lastErr == nil || !isSerializationFailure(lastErr) {
			return subscribed, lastErr
		}
	}
	return false, lastErr
}

func (r *PostgresSubscriptionRepository) toggleOnce(ctx context.Context, sub models.Subscription) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin toggle subscription tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
    `, sub.SubscriberID, sub.ChannelID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() > 0 {
		if err := tx.Commit(ctx); err != nil {
			return false, fmt.Errorf("commit toggle subscription tx: %w", err)
		}
		return false, nil
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
    `, sub.ID, sub.SubscriberID, sub.ChannelID, sub.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return true, nil
		}
		if mapped := translatePgError(err); mapped != nil {
			return false, mapped
		}
		return false, fmt.Errorf("insert subscription: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit toggle subscription tx: %w", err)
	}

	return true, nil
}

// CountForChannel returns how many users subscribe to the channel.
func (r *PostgresSubscriptionRepository) CountForChannel(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID)
}

// CountForSubscriber returns how many channels the user subscribes to.
func (r *PostgresSubscriptionRepository) CountForSubscriber(ctx context.Context, subscriberID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID)
}

func (r *PostgresSubscriptionRepository) count(ctx context.Context, query, arg string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	if err := conn.QueryRow(ctx, query, arg).Scan(&count); err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return count, nil
}

// Exists reports whether subscriber follows channel.
func (r *PostgresSubscriptionRepository) Exists(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
        )
    `, subscriberID, channelID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return exists, nil
}

// ListSubscribers returns the users subscribed to the channel.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.User, error) {
	return r.listUsers(ctx, `
        SELECT `+qualifiedUserColumns+`
        FROM users u
        JOIN subscriptions s ON s.subscriber_id = u.id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
    `, channelID)
}

// ListChannels returns the channels the user subscribes to.
func (r *PostgresSubscriptionRepository) ListChannels(ctx context.Context, subscriberID string) ([]models.User, error) {
	return r.listUsers(ctx, `
        SELECT `+qualifiedUserColumns+`
        FROM users u
        JOIN subscriptions s ON s.channel_id = u.id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
    `, subscriberID)
}

func (r *PostgresSubscriptionRepository) listUsers(ctx context.Context, query, arg string) ([]models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query subscription users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscription users: %w", err)
	}

	return users, nil
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
var _ views.SubscriptionReader = (*PostgresSubscriptionRepository)(nil)
