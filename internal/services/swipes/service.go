package swipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/rules"
	pgrepo "github.com/Geraxi/tenant-mvp-sub001/internal/repo/postgres"
)

const (
	EventSwipeRecorded            = "swipe_recorded"
	EventSwipeQuotaExceeded       = "swipe_quota_exceeded"
	EventMatchCreated             = "match_created"
	EventReciprocitySkippedNoRoom = "reciprocity_skipped_missing_roommate"

	defaultNotifyTimeout = 5 * time.Second
)

var (
	ErrValidation        = errors.New("validation error")
	ErrUnsupportedAction = errors.New("unsupported action")
	ErrActorNotFound     = errors.New("actor not found")
	ErrTargetNotFound    = errors.New("swipe target not found")
	ErrRoommateMissing   = errors.New("roommate profile missing")
	ErrDependenciesNil   = errors.New("swipe dependencies are not configured")
)

// QuotaExceededError is returned when a free-tier actor has no swipes left.
// Used is the counter value at rejection time.
type QuotaExceededError struct {
	Used  int
	Limit int
}

func (e QuotaExceededError) Error() string {
	return fmt.Sprintf("swipe quota exceeded: %d/%d", e.Used, e.Limit)
}

func IsQuotaExceeded(err error) (*QuotaExceededError, bool) {
	var qe QuotaExceededError
	if errors.As(err, &qe) {
		return &qe, true
	}
	return nil, false
}

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
	GetTx(ctx context.Context, tx pgx.Tx, userID int64) (model.User, error)
	ConsumeSwipe(ctx context.Context, tx pgx.Tx, userID int64, limit int) (int, error)
}

type SwipeStore interface {
	Create(ctx context.Context, tx pgx.Tx, actorUserID int64, target model.Target, action enums.SwipeAction, now time.Time) (model.Swipe, error)
	LockPair(ctx context.Context, tx pgx.Tx, userA, userB int64) error
	HasLikedRoommateOwnedBy(ctx context.Context, tx pgx.Tx, likerID, ownerID int64) (bool, error)
}

type ListingStore interface {
	GetRoommate(ctx context.Context, tx pgx.Tx, roommateID int64) (model.Roommate, error)
	GetProperty(ctx context.Context, tx pgx.Tx, propertyID int64) (model.Property, error)
}

type MatchStore interface {
	Create(ctx context.Context, tx pgx.Tx, user1ID, user2ID int64, relatedType enums.TargetType, relatedID *int64) (model.Match, bool, error)
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, userID int64) (int64, bool, error)
}

type Notifier interface {
	MatchCreated(ctx context.Context, match model.Match) error
}

type EventTracker interface {
	Track(ctx context.Context, userID int64, name string, props map[string]any)
}

type Config struct {
	FreeSwipeLimit int
	NotifyTimeout  time.Duration
}

type Dependencies struct {
	Tx          TxRunner
	Users       UserStore
	Swipes      SwipeStore
	Listings    ListingStore
	Matches     MatchStore
	RateLimiter RateLimiter
	Notifier    Notifier
	Events      EventTracker
	Logger      *zap.Logger
}

type SwipeResult struct {
	Swipe        model.Swipe
	Matched      bool
	MatchCreated bool
	Match        *model.Match
	Quota        model.Quota
}

type Service struct {
	tx          TxRunner
	users       UserStore
	swipes      SwipeStore
	listings    ListingStore
	matches     MatchStore
	rateLimiter RateLimiter
	notifier    Notifier
	events      EventTracker
	log         *zap.Logger
	cfg         Config
	now         func() time.Time
	dispatch    func(func())
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.FreeSwipeLimit <= 0 {
		cfg.FreeSwipeLimit = rules.FreeSwipeLimit
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		tx:          deps.Tx,
		users:       deps.Users,
		swipes:      deps.Swipes,
		listings:    deps.Listings,
		matches:     deps.Matches,
		rateLimiter: deps.RateLimiter,
		notifier:    deps.Notifier,
		events:      deps.Events,
		log:         logger,
		cfg:         cfg,
		now:         time.Now,
		dispatch:    func(fn func()) { go fn() },
	}
}

type trackedEvent struct {
	name  string
	props map[string]any
}

// Swipe records one swipe and, for a like on a roommate profile, creates the
// match when the profile owner already liked one of the actor's profiles.
// Premium burst limits are checked before the transaction opens; everything
// else runs in a single transaction and notifications fire after commit.
func (s *Service) Swipe(ctx context.Context, actorUserID int64, targetType string, targetID int64, action string) (SwipeResult, error) {
	if actorUserID <= 0 || targetID <= 0 {
		return SwipeResult{}, ErrValidation
	}
	target, err := model.ParseTarget(targetType, targetID)
	if err != nil {
		return SwipeResult{}, ErrValidation
	}
	swipeAction, err := ParseAction(action)
	if err != nil {
		return SwipeResult{}, err
	}
	if s.tx == nil || s.users == nil || s.swipes == nil || s.listings == nil || s.matches == nil {
		return SwipeResult{}, ErrDependenciesNil
	}
	if err := s.checkBurst(ctx, actorUserID); err != nil {
		return SwipeResult{}, err
	}

	var (
		result  SwipeResult
		tracked []trackedEvent
	)
	err = s.tx.WithinTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		result = SwipeResult{}
		tracked = tracked[:0]

		actor, err := s.users.GetTx(txCtx, tx, actorUserID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrUserNotFound) {
				return ErrActorNotFound
			}
			return err
		}

		swipe, quota, err := s.RecordSwipe(txCtx, tx, actor, target, swipeAction)
		if err != nil {
			return err
		}
		result.Swipe = swipe
		result.Quota = quota
		tracked = append(tracked, trackedEvent{name: EventSwipeRecorded, props: map[string]any{
			"swipe_id":    swipe.ID,
			"target_type": string(swipe.TargetType),
			"target_id":   swipe.TargetID,
			"action":      string(swipe.Action),
		}})

		if swipeAction != enums.SwipeActionLike || !target.IsRoommate() {
			return nil
		}

		otherUserID, reciprocal, err := s.CheckReciprocity(txCtx, tx, actor.ID, target.ID())
		if err != nil {
			if errors.Is(err, ErrRoommateMissing) {
				s.log.Warn("reciprocity skipped: roommate profile missing",
					zap.Int64("actor_user_id", actor.ID),
					zap.Int64("roommate_id", target.ID()),
				)
				tracked = append(tracked, trackedEvent{name: EventReciprocitySkippedNoRoom, props: map[string]any{
					"roommate_id": target.ID(),
				}})
				return nil
			}
			return err
		}
		if !reciprocal {
			return nil
		}

		match, created, err := s.CreateMatchIfAbsent(txCtx, tx, actor.ID, otherUserID, target.Type(), target.ID())
		if err != nil {
			return err
		}
		result.Matched = true
		result.MatchCreated = created
		result.Match = &match
		if created {
			tracked = append(tracked, trackedEvent{name: EventMatchCreated, props: map[string]any{
				"match_id":      match.ID,
				"other_user_id": otherUserID,
				"roommate_id":   target.ID(),
			}})
		}
		return nil
	})

	if err != nil {
		if qe, ok := IsQuotaExceeded(err); ok {
			s.log.Info("swipe rejected: quota exceeded",
				zap.Int64("actor_user_id", actorUserID),
				zap.Int("swipe_count", qe.Used),
				zap.Int("limit", qe.Limit),
			)
			s.track(ctx, actorUserID, []trackedEvent{{name: EventSwipeQuotaExceeded, props: map[string]any{
				"swipe_count": qe.Used,
				"limit":       qe.Limit,
			}}})
		}
		return SwipeResult{}, err
	}
	s.track(ctx, actorUserID, tracked)

	s.log.Debug("swipe recorded",
		zap.Int64("swipe_id", result.Swipe.ID),
		zap.Int64("actor_user_id", actorUserID),
		zap.String("target_type", string(target.Type())),
		zap.Int64("target_id", target.ID()),
		zap.String("action", string(swipeAction)),
	)
	if result.MatchCreated && result.Match != nil {
		s.log.Info("match created",
			zap.Int64("match_id", result.Match.ID),
			zap.Int64("user1_id", result.Match.User1ID),
			zap.Int64("user2_id", result.Match.User2ID),
		)
		s.notifyMatch(ctx, *result.Match)
	}

	return result, nil
}

// checkBurst applies the premium rate limiter. Free-tier actors are bounded by
// their quota instead and never touch redis.
func (s *Service) checkBurst(ctx context.Context, actorUserID int64) error {
	if s.rateLimiter == nil {
		return nil
	}
	actor, err := s.users.GetByID(ctx, actorUserID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrActorNotFound
		}
		return err
	}
	if !actor.IsPremium {
		return nil
	}
	retryAfter, allowed, err := s.rateLimiter.AllowSwipe(ctx, actor.ID)
	if err != nil {
		return fmt.Errorf("apply premium rate limiter: %w", err)
	}
	if !allowed {
		return TooFastError{RetryAfterSec: retryAfter}
	}
	return nil
}

// RecordSwipe persists a swipe for actor inside tx. Free-tier actors consume
// one unit of quota; once the limit is reached nothing is written.
func (s *Service) RecordSwipe(ctx context.Context, tx pgx.Tx, actor model.User, target model.Target, action enums.SwipeAction) (model.Swipe, model.Quota, error) {
	if actor.ID <= 0 || !target.Valid() || !action.Valid() {
		return model.Swipe{}, model.Quota{}, ErrValidation
	}

	if target.IsProperty() {
		if _, err := s.listings.GetProperty(ctx, tx, target.ID()); err != nil {
			if errors.Is(err, pgrepo.ErrPropertyNotFound) {
				return model.Swipe{}, model.Quota{}, ErrTargetNotFound
			}
			return model.Swipe{}, model.Quota{}, err
		}
	}

	used := actor.SwipeCount
	if !actor.IsPremium {
		if rules.SwipeQuotaExhausted(false, used, s.cfg.FreeSwipeLimit) {
			return model.Swipe{}, model.Quota{}, QuotaExceededError{Used: used, Limit: s.cfg.FreeSwipeLimit}
		}
		next, err := s.users.ConsumeSwipe(ctx, tx, actor.ID, s.cfg.FreeSwipeLimit)
		if err != nil {
			if errors.Is(err, pgrepo.ErrSwipeQuotaReached) {
				return model.Swipe{}, model.Quota{}, s.quotaExceeded(ctx, tx, actor.ID)
			}
			return model.Swipe{}, model.Quota{}, err
		}
		used = next
	}

	swipe, err := s.swipes.Create(ctx, tx, actor.ID, target, action, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.Swipe{}, model.Quota{}, ErrActorNotFound
		}
		return model.Swipe{}, model.Quota{}, err
	}

	return swipe, rules.QuotaSnapshot(actor.IsPremium, used, s.cfg.FreeSwipeLimit), nil
}

// CheckReciprocity resolves the owner of roommateID and reports whether that
// owner has liked any roommate profile owned by the actor. It returns
// ErrRoommateMissing when the profile does not exist.
func (s *Service) CheckReciprocity(ctx context.Context, tx pgx.Tx, actorUserID, roommateID int64) (int64, bool, error) {
	if actorUserID <= 0 || roommateID <= 0 {
		return 0, false, ErrValidation
	}

	roommate, err := s.listings.GetRoommate(ctx, tx, roommateID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrRoommateNotFound) {
			return 0, false, ErrRoommateMissing
		}
		return 0, false, err
	}
	otherUserID := roommate.OwnerID
	if otherUserID <= 0 || otherUserID == actorUserID {
		return 0, false, nil
	}

	if err := s.swipes.LockPair(ctx, tx, actorUserID, otherUserID); err != nil {
		return 0, false, err
	}
	liked, err := s.swipes.HasLikedRoommateOwnedBy(ctx, tx, otherUserID, actorUserID)
	if err != nil {
		return 0, false, err
	}
	if !liked {
		return 0, false, nil
	}
	return otherUserID, true, nil
}

// CreateMatchIfAbsent returns the match between the two users, creating it
// with the given provenance when the pair has none in either order.
func (s *Service) CreateMatchIfAbsent(ctx context.Context, tx pgx.Tx, userA, userB int64, relatedType enums.TargetType, relatedID int64) (model.Match, bool, error) {
	if userA <= 0 || userB <= 0 || userA == userB {
		return model.Match{}, false, ErrValidation
	}

	var related *int64
	if relatedID > 0 {
		related = &relatedID
	}
	return s.matches.Create(ctx, tx, userA, userB, relatedType, related)
}

func (s *Service) quotaExceeded(ctx context.Context, tx pgx.Tx, userID int64) error {
	current, err := s.users.GetTx(ctx, tx, userID)
	if err != nil {
		return err
	}
	return QuotaExceededError{Used: current.SwipeCount, Limit: s.cfg.FreeSwipeLimit}
}

func (s *Service) notifyMatch(ctx context.Context, match model.Match) {
	if s.notifier == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	s.dispatch(func() {
		notifyCtx, cancel := context.WithTimeout(base, s.cfg.NotifyTimeout)
		defer cancel()

		if err := s.notifier.MatchCreated(notifyCtx, match); err != nil {
			s.log.Warn("match notification failed", zap.Int64("match_id", match.ID), zap.Error(err))
		}
	})
}

func (s *Service) track(ctx context.Context, userID int64, events []trackedEvent) {
	if s.events == nil {
		return
	}
	for _, event := range events {
		s.events.Track(ctx, userID, event.name, event.props)
	}
}

func ParseAction(input string) (enums.SwipeAction, error) {
	action := enums.SwipeAction(strings.ToLower(strings.TrimSpace(input)))
	if !action.Valid() {
		return "", ErrUnsupportedAction
	}
	return action, nil
}
