package users

import (
	"context"
	"errors"
	"strings"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/rules"
	pgrepo "github.com/Geraxi/tenant-mvp-sub001/internal/repo/postgres"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("user not found")
	ErrInvalidRole = errors.New("invalid role")
)

type Store interface {
	EnsureByExternalID(ctx context.Context, externalID string) (model.User, error)
	GetByID(ctx context.Context, userID int64) (model.User, error)
	Update(ctx context.Context, userID int64, patch model.UserPatch) (model.User, error)
}

// BurstView reports how long a premium account must wait before its next swipe.
type BurstView interface {
	RetryAfterSwipe(ctx context.Context, userID int64) (int64, error)
}

type Config struct {
	FreeSwipeLimit int
}

type Service struct {
	store Store
	burst BurstView
	cfg   Config
}

// Profile is the caller's account together with the swipe allowance left.
type Profile struct {
	User  model.User
	Quota model.Quota
}

// UpdateInput carries the fields a caller may change about themselves. Nil
// fields are untouched; the premium flag is owned by billing and not exposed here.
type UpdateInput struct {
	Role *string
}

func NewService(store Store, cfg Config) *Service {
	if cfg.FreeSwipeLimit <= 0 {
		cfg.FreeSwipeLimit = rules.FreeSwipeLimit
	}
	return &Service{store: store, cfg: cfg}
}

func (s *Service) AttachBurstView(burst BurstView) {
	s.burst = burst
}

func (s *Service) EnsureUser(ctx context.Context, externalID string) (model.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return model.User{}, ErrValidation
	}
	user, err := s.store.EnsureByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrInvalidExternalID) {
			return model.User{}, ErrValidation
		}
		return model.User{}, err
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, ErrValidation
	}
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (Profile, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return s.profile(ctx, user), nil
}

// Update applies a partial update. An empty input returns the current user.
func (s *Service) Update(ctx context.Context, userID int64, in UpdateInput) (Profile, error) {
	if userID <= 0 {
		return Profile{}, ErrValidation
	}

	var patch model.UserPatch
	if in.Role != nil {
		role := enums.Role(strings.ToLower(strings.TrimSpace(*in.Role)))
		if !role.Valid() {
			return Profile{}, ErrInvalidRole
		}
		patch.Role = &role
	}

	if patch.Empty() {
		return s.Me(ctx, userID)
	}

	user, err := s.store.Update(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return s.profile(ctx, user), nil
}

func (s *Service) profile(ctx context.Context, user model.User) Profile {
	quota := rules.QuotaSnapshot(user.IsPremium, user.SwipeCount, s.cfg.FreeSwipeLimit)
	if user.IsPremium && s.burst != nil {
		// The limiter is advisory here; a redis failure leaves the field empty.
		if retryAfter, err := s.burst.RetryAfterSwipe(ctx, user.ID); err == nil {
			quota.RetryAfterSec = retryAfter
		}
	}
	return Profile{User: user, Quota: quota}
}
