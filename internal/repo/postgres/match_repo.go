package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
)

var ErrMatchNotFound = errors.New("match not found")

const matchColumns = "id, user1_id, user2_id, related_type, related_id, created_at"

// The conflict target must match the matches_pair_uidx expression index.
const createMatchSQL = `
INSERT INTO matches (
	user1_id,
	user2_id,
	related_type,
	related_id,
	created_at
) VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT ((LEAST(user1_id, user2_id)), (GREATEST(user1_id, user2_id))) DO NOTHING
RETURNING ` + matchColumns

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// FindByUsers looks the pair up in either order.
func (r *MatchRepo) FindByUsers(ctx context.Context, tx pgx.Tx, userA, userB int64) (model.Match, error) {
	if userA <= 0 || userB <= 0 {
		return model.Match{}, fmt.Errorf("invalid match lookup payload")
	}
	if tx == nil {
		return model.Match{}, errTransactionRequired
	}

	m, err := scanMatch(tx.QueryRow(ctx, `
SELECT `+matchColumns+`
FROM matches
WHERE (user1_id = $1 AND user2_id = $2)
	OR (user1_id = $2 AND user2_id = $1)
ORDER BY id
LIMIT 1
`, userA, userB))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("find match: %w", err)
	}
	return m, nil
}

// Create inserts the pair unless a match already exists in either order.
// The returned bool reports whether a new row was written.
func (r *MatchRepo) Create(ctx context.Context, tx pgx.Tx, user1ID, user2ID int64, relatedType enums.TargetType, relatedID *int64) (model.Match, bool, error) {
	if user1ID <= 0 || user2ID <= 0 || user1ID == user2ID {
		return model.Match{}, false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return model.Match{}, false, errTransactionRequired
	}

	var related *string
	if relatedType != "" {
		v := string(relatedType)
		related = &v
	}

	m, err := scanMatch(tx.QueryRow(ctx, createMatchSQL, user1ID, user2ID, related, relatedID))
	if err == nil {
		return m, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Match{}, false, fmt.Errorf("create match: %w", err)
	}

	existing, err := r.FindByUsers(ctx, tx, user1ID, user2ID)
	if err != nil {
		return model.Match{}, false, err
	}
	return existing, false, nil
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]model.Match, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.Match{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+matchColumns+`
FROM matches
WHERE user1_id = $1 OR user2_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.Match, 0, limit)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}

func scanMatch(row pgx.Row) (model.Match, error) {
	var (
		m           model.Match
		relatedType *string
	)
	if err := row.Scan(
		&m.ID,
		&m.User1ID,
		&m.User2ID,
		&relatedType,
		&m.RelatedID,
		&m.CreatedAt,
	); err != nil {
		return model.Match{}, err
	}
	if relatedType != nil {
		m.RelatedType = enums.TargetType(*relatedType)
	}
	return m, nil
}
