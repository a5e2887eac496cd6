package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrSwipeQuotaReached   = errors.New("swipe quota reached")
	ErrInvalidExternalID   = errors.New("invalid external id")
	errTransactionRequired = errors.New("transaction is required")
)

const userColumns = `id, external_id, role, is_premium, swipe_count, created_at, updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// EnsureByExternalID returns the user bound to an identity-provider subject,
// creating it on first sight.
func (r *UserRepo) EnsureByExternalID(ctx context.Context, externalID string) (model.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return model.User{}, ErrInvalidExternalID
	}
	if r.pool == nil {
		return model.User{}, ErrStoreUnavailable
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO users (external_id, role, is_premium, swipe_count, created_at, updated_at)
VALUES ($1, $2, FALSE, 0, NOW(), NOW())
ON CONFLICT (external_id) DO UPDATE SET
	updated_at = users.updated_at
RETURNING `+userColumns, externalID, string(enums.RoleTenant))

	user, err := scanUser(row)
	if err != nil {
		return model.User{}, fmt.Errorf("ensure user by external id: %w", err)
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.User{}, ErrStoreUnavailable
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) GetTx(ctx context.Context, tx pgx.Tx, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}
	if tx == nil {
		return model.User{}, errTransactionRequired
	}

	user, err := scanUser(tx.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user in tx: %w", err)
	}
	return user, nil
}

const consumeSwipeSQL = `
UPDATE users
SET
	swipe_count = swipe_count + 1,
	updated_at = NOW()
WHERE id = $1 AND swipe_count < $2
RETURNING swipe_count
`

// ConsumeSwipe increments the free-tier counter only while it is below limit.
// The check and the increment are one statement, so concurrent swipes cannot overshoot.
func (r *UserRepo) ConsumeSwipe(ctx context.Context, tx pgx.Tx, userID int64, limit int) (int, error) {
	if userID <= 0 || limit <= 0 {
		return 0, fmt.Errorf("invalid swipe quota consume payload")
	}
	if tx == nil {
		return 0, errTransactionRequired
	}

	var count int
	err := tx.QueryRow(ctx, consumeSwipeSQL, userID, limit).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrSwipeQuotaReached
		}
		return 0, fmt.Errorf("consume swipe quota: %w", err)
	}

	return count, nil
}

func (r *UserRepo) Update(ctx context.Context, userID int64, patch model.UserPatch) (model.User, error) {
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.User{}, ErrStoreUnavailable
	}

	var role *string
	if patch.Role != nil {
		v := string(*patch.Role)
		role = &v
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
UPDATE users
SET
	role = COALESCE($2, role),
	updated_at = NOW()
WHERE id = $1
RETURNING `+userColumns, userID, role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		user model.User
		role string
	)
	if err := row.Scan(
		&user.ID,
		&user.ExternalID,
		&role,
		&user.IsPremium,
		&user.SwipeCount,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return model.User{}, err
	}
	user.Role = enums.Role(role)
	if !user.Role.Valid() {
		user.Role = enums.RoleTenant
	}
	return user, nil
}
