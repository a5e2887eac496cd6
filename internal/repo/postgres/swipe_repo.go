package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/rules"
)

const pgForeignKeyViolation = "23503"

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// Create inserts one swipe row. Repeated swipes on the same target are kept as separate rows.
func (r *SwipeRepo) Create(ctx context.Context, tx pgx.Tx, actorUserID int64, target model.Target, action enums.SwipeAction, now time.Time) (model.Swipe, error) {
	if actorUserID <= 0 || !target.Valid() || !action.Valid() {
		return model.Swipe{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return model.Swipe{}, errTransactionRequired
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var (
		rec        model.Swipe
		targetType string
		act        string
	)
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	user_id,
	target_type,
	target_id,
	action,
	created_at
) VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, target_type, target_id, action, created_at
`, actorUserID, string(target.Type()), target.ID(), string(action), now.UTC()).Scan(
		&rec.ID,
		&rec.ActorUserID,
		&targetType,
		&rec.TargetID,
		&act,
		&rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return model.Swipe{}, ErrUserNotFound
		}
		return model.Swipe{}, fmt.Errorf("create swipe: %w", err)
	}
	rec.TargetType = enums.TargetType(targetType)
	rec.Action = enums.SwipeAction(act)

	return rec, nil
}

const lockPairSQL = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

func pairLockKey(userA, userB int64) string {
	low, high := rules.OrderedPair(userA, userB)
	return "swipe-pair:" + strconv.FormatInt(low, 10) + ":" + strconv.FormatInt(high, 10)
}

// LockPair serializes reciprocity checks for an unordered pair of users until
// the transaction ends, so two crossing likes cannot both miss each other.
func (r *SwipeRepo) LockPair(ctx context.Context, tx pgx.Tx, userA, userB int64) error {
	if userA <= 0 || userB <= 0 {
		return fmt.Errorf("invalid pair lock payload")
	}
	if tx == nil {
		return errTransactionRequired
	}

	if _, err := tx.Exec(ctx, lockPairSQL, pairLockKey(userA, userB)); err != nil {
		return fmt.Errorf("lock swipe pair: %w", err)
	}
	return nil
}

// HasLikedRoommateOwnedBy reports whether likerID has a like on any roommate profile owned by ownerID.
func (r *SwipeRepo) HasLikedRoommateOwnedBy(ctx context.Context, tx pgx.Tx, likerID, ownerID int64) (bool, error) {
	if likerID <= 0 || ownerID <= 0 {
		return false, fmt.Errorf("invalid reciprocity lookup payload")
	}
	if tx == nil {
		return false, errTransactionRequired
	}

	var exists bool
	err := tx.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM swipes s
	JOIN roommates rm ON rm.id = s.target_id
	WHERE s.user_id = $1
		AND s.target_type = $3
		AND s.action = $4
		AND rm.owner_id = $2
)
`, likerID, ownerID, string(enums.TargetTypeRoommate), string(enums.SwipeActionLike)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	return exists, nil
}
