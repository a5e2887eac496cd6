package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
)

type FavoriteRepo struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepo(pool *pgxpool.Pool) *FavoriteRepo {
	return &FavoriteRepo{pool: pool}
}

// Add is idempotent; created is false when the favorite already existed.
func (r *FavoriteRepo) Add(ctx context.Context, userID int64, target model.Target, now time.Time) (bool, error) {
	if userID <= 0 || !target.Valid() {
		return false, fmt.Errorf("invalid favorite payload")
	}
	if r.pool == nil {
		return false, ErrStoreUnavailable
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tag, err := r.pool.Exec(ctx, `
INSERT INTO favorites (
	user_id,
	target_type,
	target_id,
	created_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, target_type, target_id) DO NOTHING
`, userID, string(target.Type()), target.ID(), now.UTC())
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *FavoriteRepo) Remove(ctx context.Context, userID int64, target model.Target) (bool, error) {
	if userID <= 0 || !target.Valid() {
		return false, fmt.Errorf("invalid favorite payload")
	}
	if r.pool == nil {
		return false, ErrStoreUnavailable
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM favorites
WHERE user_id = $1 AND target_type = $2 AND target_id = $3
`, userID, string(target.Type()), target.ID())
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *FavoriteRepo) List(ctx context.Context, userID int64, limit int) ([]model.Favorite, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.Favorite{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT user_id, target_type, target_id, created_at
FROM favorites
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	items := make([]model.Favorite, 0, limit)
	for rows.Next() {
		var (
			item       model.Favorite
			targetType string
		)
		if err := rows.Scan(&item.UserID, &targetType, &item.TargetID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		item.TargetType = enums.TargetType(targetType)
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate favorites: %w", rows.Err())
	}

	return items, nil
}
