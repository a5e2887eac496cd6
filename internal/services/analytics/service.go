package analytics

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	pgrepo "github.com/Geraxi/tenant-mvp-sub001/internal/repo/postgres"
)

const (
	defaultMaxBatchSize = 100
	defaultTrackTimeout = 2 * time.Second
)

var ErrValidation = errors.New("validation error")

type Store interface {
	InsertBatch(ctx context.Context, events []pgrepo.EventWriteRecord) error
}

type Config struct {
	MaxBatchSize int
	TrackTimeout time.Duration
}

// Service persists product events: server-side ones through Track and
// client-reported batches through IngestBatch.
type Service struct {
	store Store
	log   *zap.Logger
	cfg   Config
	now   func() time.Time
	newID func() uuid.UUID
}

type BatchEvent struct {
	Name  string
	TS    int64
	Props map[string]any
}

func NewService(store Store, logger *zap.Logger, cfg Config) *Service {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = defaultMaxBatchSize
	}
	if cfg.TrackTimeout <= 0 {
		cfg.TrackTimeout = defaultTrackTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store: store,
		log:   logger,
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.New,
	}
}

// Track writes a single server-side event. Failures are logged and never
// returned: analytics must not break the operation being tracked.
func (s *Service) Track(ctx context.Context, userID int64, name string, props map[string]any) {
	if s.store == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	trackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.TrackTimeout)
	defer cancel()

	record := pgrepo.EventWriteRecord{
		ID:         s.newID(),
		UserID:     userID,
		Name:       name,
		OccurredAt: s.now().UTC(),
		Props:      cloneProps(props),
	}
	if err := s.store.InsertBatch(trackCtx, []pgrepo.EventWriteRecord{record}); err != nil {
		s.log.Warn("track event failed",
			zap.String("event", name),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}

func (s *Service) IngestBatch(ctx context.Context, userID int64, events []BatchEvent) error {
	if s.store == nil {
		return fmt.Errorf("analytics store is nil")
	}
	if len(events) == 0 || len(events) > s.cfg.MaxBatchSize {
		return ErrValidation
	}

	now := s.now().UTC()
	rows := make([]pgrepo.EventWriteRecord, 0, len(events))
	for _, event := range events {
		name := strings.TrimSpace(event.Name)
		if name == "" {
			return ErrValidation
		}

		rows = append(rows, pgrepo.EventWriteRecord{
			ID:         s.newID(),
			UserID:     userID,
			Name:       name,
			OccurredAt: parseTS(event.TS, now),
			Props:      cloneProps(event.Props),
		})
	}

	if err := s.store.InsertBatch(ctx, rows); err != nil {
		return fmt.Errorf("insert events batch: %w", err)
	}

	return nil
}

func parseTS(ts int64, fallback time.Time) time.Time {
	if ts <= 0 {
		return fallback
	}
	if ts >= 1_000_000_000_000 {
		return time.UnixMilli(ts).UTC()
	}
	return time.Unix(ts, 0).UTC()
}

func cloneProps(props map[string]any) map[string]any {
	if len(props) == 0 {
		return map[string]any{}
	}
	return maps.Clone(props)
}
