package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
)

var (
	ErrRoommateNotFound = errors.New("roommate profile not found")
	ErrPropertyNotFound = errors.New("property not found")
)

type ListingRepo struct {
	pool *pgxpool.Pool
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

func (r *ListingRepo) GetRoommate(ctx context.Context, tx pgx.Tx, roommateID int64) (model.Roommate, error) {
	if roommateID <= 0 {
		return model.Roommate{}, fmt.Errorf("invalid roommate id")
	}
	q, err := r.querier(tx)
	if err != nil {
		return model.Roommate{}, err
	}

	var rm model.Roommate
	err = q.QueryRow(ctx, `
SELECT id, owner_id, created_at
FROM roommates
WHERE id = $1
`, roommateID).Scan(&rm.ID, &rm.OwnerID, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Roommate{}, ErrRoommateNotFound
		}
		return model.Roommate{}, fmt.Errorf("get roommate: %w", err)
	}
	return rm, nil
}

func (r *ListingRepo) GetProperty(ctx context.Context, tx pgx.Tx, propertyID int64) (model.Property, error) {
	if propertyID <= 0 {
		return model.Property{}, fmt.Errorf("invalid property id")
	}
	q, err := r.querier(tx)
	if err != nil {
		return model.Property{}, err
	}

	var p model.Property
	err = q.QueryRow(ctx, `
SELECT id, owner_id, created_at
FROM properties
WHERE id = $1
`, propertyID).Scan(&p.ID, &p.OwnerID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Property{}, ErrPropertyNotFound
		}
		return model.Property{}, fmt.Errorf("get property: %w", err)
	}
	return p, nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querier prefers the open transaction and falls back to the pool for standalone reads.
func (r *ListingRepo) querier(tx pgx.Tx) (rowQuerier, error) {
	if tx != nil {
		return tx, nil
	}
	if r.pool == nil {
		return nil, ErrStoreUnavailable
	}
	return r.pool, nil
}
