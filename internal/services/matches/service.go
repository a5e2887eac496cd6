package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

var ErrValidation = errors.New("validation error")

type MatchStore interface {
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.Match, error)
}

type Service struct {
	matchStore MatchStore
	maxLimit   int
}

type Dependencies struct {
	MatchStore MatchStore
}

type Config struct {
	MaxListLimit int
}

// MatchItem is a match seen from one side of the pair.
type MatchItem struct {
	ID          int64
	OtherUserID int64
	RelatedType enums.TargetType
	RelatedID   *int64
	CreatedAt   time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MaxListLimit <= 0 {
		cfg.MaxListLimit = maxListLimit
	}
	return &Service{
		matchStore: deps.MatchStore,
		maxLimit:   cfg.MaxListLimit,
	}
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]MatchItem, error) {
	if userID <= 0 || limit < 0 {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is nil")
	}
	if limit == 0 {
		limit = min(defaultListLimit, s.maxLimit)
	}
	limit = min(limit, s.maxLimit)

	rows, err := s.matchStore.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		other, ok := row.OtherUserID(userID)
		if !ok {
			continue
		}
		items = append(items, MatchItem{
			ID:          row.ID,
			OtherUserID: other,
			RelatedType: row.RelatedType,
			RelatedID:   row.RelatedID,
			CreatedAt:   row.CreatedAt,
		})
	}
	return items, nil
}
