package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionRoomCreated = "ROOM_CREATED"
	ActionRoomUpdated = "ROOM_UPDATED"
	ActionRoomDeleted = "ROOM_DELETED"
)

type Event struct {
	ID         int64           `json:"id"`
	RoomID     int64           `json:"roomId"`
	Action     string          `json:"action"`
	Actor      string          `json:"actor"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListByRoom(ctx context.Context, roomID int64) ([]Event, error) {
	const q = `
SELECT id, room_id, action, actor, COALESCE(metadata, '{}'::jsonb), occurred_at
FROM room_events
WHERE room_id = $1
ORDER BY occurred_at ASC, id ASC
`
	rows, err := r.db.Query(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RoomID, &e.Action, &e.Actor, &e.Metadata, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Insert records a lifecycle event inside the caller's transaction.
func Insert(ctx context.Context, tx pgx.Tx, roomID int64, action, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("marshal %s metadata: %w", action, err)
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO room_events (room_id, action, actor, metadata)
VALUES ($1, $2, $3, CAST($4 AS jsonb))
`
	_, err := tx.Exec(ctx, q, roomID, action, actor, s)
	return err
}
