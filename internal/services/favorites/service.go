package favorites

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
	pgrepo "github.com/Geraxi/tenant-mvp-sub001/internal/repo/postgres"
)

const defaultListLimit = 100

var (
	ErrValidation     = errors.New("validation error")
	ErrTargetNotFound = errors.New("favorite target not found")
)

type Store interface {
	Add(ctx context.Context, userID int64, target model.Target, now time.Time) (bool, error)
	Remove(ctx context.Context, userID int64, target model.Target) (bool, error)
	List(ctx context.Context, userID int64, limit int) ([]model.Favorite, error)
}

type ListingStore interface {
	GetRoommate(ctx context.Context, tx pgx.Tx, roommateID int64) (model.Roommate, error)
	GetProperty(ctx context.Context, tx pgx.Tx, propertyID int64) (model.Property, error)
}

type Service struct {
	store    Store
	listings ListingStore
	now      func() time.Time
}

func NewService(store Store, listings ListingStore) *Service {
	return &Service{
		store:    store,
		listings: listings,
		now:      time.Now,
	}
}

// Add saves target for later. Saving twice is not an error; created reports
// whether this call stored it.
func (s *Service) Add(ctx context.Context, userID int64, targetType string, targetID int64) (bool, error) {
	target, err := parse(userID, targetType, targetID)
	if err != nil {
		return false, err
	}
	if err := s.ensureTarget(ctx, target); err != nil {
		return false, err
	}
	return s.store.Add(ctx, userID, target, s.now().UTC())
}

func (s *Service) Remove(ctx context.Context, userID int64, targetType string, targetID int64) (bool, error) {
	target, err := parse(userID, targetType, targetID)
	if err != nil {
		return false, err
	}
	return s.store.Remove(ctx, userID, target)
}

func (s *Service) List(ctx context.Context, userID int64) ([]model.Favorite, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	return s.store.List(ctx, userID, defaultListLimit)
}

func (s *Service) ensureTarget(ctx context.Context, target model.Target) error {
	if s.listings == nil {
		return nil
	}

	var err error
	if target.IsRoommate() {
		_, err = s.listings.GetRoommate(ctx, nil, target.ID())
	} else {
		_, err = s.listings.GetProperty(ctx, nil, target.ID())
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgrepo.ErrRoommateNotFound), errors.Is(err, pgrepo.ErrPropertyNotFound):
		return ErrTargetNotFound
	default:
		return err
	}
}

func parse(userID int64, targetType string, targetID int64) (model.Target, error) {
	if userID <= 0 {
		return model.Target{}, ErrValidation
	}
	target, err := model.ParseTarget(targetType, targetID)
	if err != nil {
		return model.Target{}, ErrValidation
	}
	return target, nil
}
