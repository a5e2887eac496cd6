package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
	"github.com/Geraxi/tenant-mvp-sub001/internal/infra/push"
	"github.com/Geraxi/tenant-mvp-sub001/internal/pkg/validate"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidPlatform  = errors.New("invalid device platform")
	ErrSenderNotWired   = errors.New("push sender is not configured")
	ErrDeviceStoreUnset = errors.New("device store is not configured")
)

type DeviceStore interface {
	Upsert(ctx context.Context, userID int64, token string, platform enums.DevicePlatform, seenAt time.Time) error
	ListForUsers(ctx context.Context, userIDs []int64) ([]model.Device, error)
	DeleteTokens(ctx context.Context, tokens []string) error
}

type Service struct {
	devices DeviceStore
	sender  push.Sender
	log     *zap.Logger
	now     func() time.Time
	newID   func() uuid.UUID
}

func NewService(devices DeviceStore, sender push.Sender, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		devices: devices,
		sender:  sender,
		log:     logger,
		now:     time.Now,
		newID:   uuid.New,
	}
}

func (s *Service) RegisterDevice(ctx context.Context, userID int64, token, platform string) error {
	token = strings.TrimSpace(token)
	if !validate.PositiveID(userID) || !validate.DeviceToken(token) {
		return ErrValidation
	}
	p := enums.DevicePlatform(strings.ToLower(strings.TrimSpace(platform)))
	if !p.Valid() {
		return ErrInvalidPlatform
	}
	if s.devices == nil {
		return ErrDeviceStoreUnset
	}

	return s.devices.Upsert(ctx, userID, token, p, s.now().UTC())
}

// MatchCreated pushes a match notice to every registered device of both users.
// Tokens the provider reports as unregistered are removed.
func (s *Service) MatchCreated(ctx context.Context, match model.Match) error {
	if s.sender == nil {
		return ErrSenderNotWired
	}
	if s.devices == nil {
		return ErrDeviceStoreUnset
	}

	devices, err := s.devices.ListForUsers(ctx, []int64{match.User1ID, match.User2ID})
	if err != nil {
		return fmt.Errorf("list match devices: %w", err)
	}
	if len(devices) == 0 {
		return nil
	}

	byUser := make(map[int64][]string, 2)
	for _, d := range devices {
		byUser[d.UserID] = append(byUser[d.UserID], d.Token)
	}

	var (
		invalid []string
		errs    []error
	)
	for _, userID := range []int64{match.User1ID, match.User2ID} {
		tokens := byUser[userID]
		if len(tokens) == 0 {
			continue
		}
		other, _ := match.OtherUserID(userID)

		res, err := s.sender.Send(ctx, tokens, push.Message{
			Title: "It's a match!",
			Body:  "You both liked each other. Say hello.",
			Data: map[string]string{
				"type":            "match_created",
				"notification_id": s.newID().String(),
				"match_id":        strconv.FormatInt(match.ID, 10),
				"other_user_id":   strconv.FormatInt(other, 10),
			},
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("send to user %d: %w", userID, err))
			continue
		}
		invalid = append(invalid, res.InvalidTokens...)
		if res.Failed > 0 {
			s.log.Warn("match push partially failed",
				zap.Int64("match_id", match.ID),
				zap.Int64("user_id", userID),
				zap.Int("failed", res.Failed),
			)
		}
	}

	if len(invalid) > 0 {
		if err := s.devices.DeleteTokens(ctx, invalid); err != nil {
			errs = append(errs, fmt.Errorf("prune invalid tokens: %w", err))
		}
	}

	return errors.Join(errs...)
}
