package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepo struct {
	pool *pgxpool.Pool
}

type EventWriteRecord struct {
	ID         uuid.UUID
	UserID     int64
	Name       string
	OccurredAt time.Time
	Props      map[string]any
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) InsertBatch(ctx context.Context, events []EventWriteRecord) error {
	if len(events) == 0 {
		return nil
	}
	if r.pool == nil {
		return nil
	}

	const query = `
INSERT INTO events (
	id,
	user_id,
	name,
	payload,
	occurred_at,
	created_at
) VALUES (
	$1,
	$2,
	$3,
	$4::jsonb,
	$5,
	NOW()
)
ON CONFLICT (id) DO NOTHING
`

	batch := &pgx.Batch{}
	for _, event := range events {
		payload, err := json.Marshal(event.Props)
		if err != nil {
			return fmt.Errorf("marshal event props: %w", err)
		}

		var uid any
		if event.UserID > 0 {
			uid = event.UserID
		}

		id := event.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		occurredAt := event.OccurredAt.UTC()
		if event.OccurredAt.IsZero() {
			occurredAt = time.Now().UTC()
		}
		batch.Queue(query, id.String(), uid, event.Name, string(payload), occurredAt)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(events); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert event batch item #%d: %w", i, err)
		}
	}

	return nil
}

func (r *EventRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, ErrStoreUnavailable
	}
	tag, err := r.pool.Exec(ctx, `
DELETE FROM events
WHERE occurred_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old events: %w", err)
	}
	return tag.RowsAffected(), nil
}
