package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
)

type UserDeviceRepo struct {
	pool *pgxpool.Pool
}

func NewUserDeviceRepo(pool *pgxpool.Pool) *UserDeviceRepo {
	return &UserDeviceRepo{pool: pool}
}

// Upsert registers a push token. A token moved to another account is reassigned.
func (r *UserDeviceRepo) Upsert(ctx context.Context, userID int64, token string, platform enums.DevicePlatform, seenAt time.Time) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("device token is required")
	}
	if seenAt.IsZero() {
		seenAt = time.Now().UTC()
	}
	if r.pool == nil {
		return ErrStoreUnavailable
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO user_devices (
	user_id,
	token,
	platform,
	first_seen_at,
	last_seen_at
) VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (token) DO UPDATE SET
	user_id = EXCLUDED.user_id,
	platform = EXCLUDED.platform,
	last_seen_at = GREATEST(user_devices.last_seen_at, EXCLUDED.last_seen_at)
`, userID, token, string(platform), seenAt.UTC()); err != nil {
		return fmt.Errorf("upsert user device: %w", err)
	}

	return nil
}

func (r *UserDeviceRepo) ListForUsers(ctx context.Context, userIDs []int64) ([]model.Device, error) {
	if len(userIDs) == 0 || r.pool == nil {
		return []model.Device{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT user_id, token, platform, last_seen_at
FROM user_devices
WHERE user_id = ANY($1)
ORDER BY user_id, last_seen_at DESC
`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list user devices: %w", err)
	}
	defer rows.Close()

	items := make([]model.Device, 0, len(userIDs))
	for rows.Next() {
		var (
			item     model.Device
			platform string
		)
		if err := rows.Scan(&item.UserID, &item.Token, &platform, &item.LastSeenAt); err != nil {
			return nil, fmt.Errorf("scan user device: %w", err)
		}
		item.Platform = enums.DevicePlatform(platform)
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate user devices: %w", rows.Err())
	}

	return items, nil
}

func (r *UserDeviceRepo) DeleteTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 || r.pool == nil {
		return nil
	}
	if _, err := r.pool.Exec(ctx, `
DELETE FROM user_devices
WHERE token = ANY($1)
`, tokens); err != nil {
		return fmt.Errorf("delete user devices: %w", err)
	}
	return nil
}

// DeleteStale drops tokens the client has not refreshed since cutoff.
func (r *UserDeviceRepo) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, ErrStoreUnavailable
	}
	tag, err := r.pool.Exec(ctx, `
DELETE FROM user_devices
WHERE last_seen_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete stale user devices: %w", err)
	}
	return tag.RowsAffected(), nil
}
