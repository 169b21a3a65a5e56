package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists domain events to the domain_events table.
type PGStore struct {
	Pool *pgxpool.Pool
}

// InsertEvent writes the event row and returns the stored representation.
func (s PGStore) InsertEvent(ctx context.Context, topic, aggregateID string, payload []byte) (Event, error) {
	if s.Pool == nil {
		return Event{}, errors.New("events: pool not configured")
	}
	var (
		id         pgtype.UUID
		occurredAt time.Time
	)
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO domain_events (topic, aggregate_id, payload)
		 VALUES ($1, $2, $3)
		 RETURNING id, occurred_at`,
		topic, aggregateID, payload,
	).Scan(&id, &occurredAt)
	if err != nil {
		return Event{}, err
	}
	eventID := ""
	if id.Valid {
		eventID = uuid.UUID(id.Bytes).String()
	}
	return Event{
		ID:          eventID,
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  occurredAt,
	}, nil
}
