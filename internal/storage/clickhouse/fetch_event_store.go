package clickhouse

import (
	"context"
	"fmt"

	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/storage"
)

// FetchEventStore implements storage.FetchEventStore using ClickHouse.
type FetchEventStore struct {
	conn *Conn
}

// NewFetchEventStore creates a new FetchEventStore.
func NewFetchEventStore(conn *Conn) *FetchEventStore {
	return &FetchEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FetchEventStore = (*FetchEventStore)(nil)

// Insert appends a fetch event.
func (s *FetchEventStore) Insert(ctx context.Context, e *domain.FetchEvent) error {
	if e == nil || e.URI == "" {
		return storage.ErrInvalidInput
	}
	return s.InsertBulk(ctx, []*domain.FetchEvent{e})
}

// InsertBulk appends events in one batch.
func (s *FetchEventStore) InsertBulk(ctx context.Context, events []*domain.FetchEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO fetch_events (
			uri, kind, mode, outcome, bytes, duration_ms, timestamp_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		err = batch.Append(
			e.URI, string(e.Kind), e.Mode, string(e.Outcome),
			e.Bytes, e.DurationMs, e.TimestampMs,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByURI retrieves all events for a URI, ordered by timestamp ASC.
func (s *FetchEventStore) GetByURI(ctx context.Context, uri string) ([]*domain.FetchEvent, error) {
	query := `
		SELECT uri, kind, mode, outcome, bytes, duration_ms, timestamp_ms
		FROM fetch_events
		WHERE uri = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, uri)
	if err != nil {
		return nil, fmt.Errorf("query by uri: %w", err)
	}
	defer rows.Close()

	return scanFetchEvents(rows)
}

// scanFetchEvents scans multiple rows.
func scanFetchEvents(rows chRows) ([]*domain.FetchEvent, error) {
	var events []*domain.FetchEvent

	for rows.Next() {
		var e domain.FetchEvent
		var kind, outcome string

		err := rows.Scan(
			&e.URI, &kind, &e.Mode, &outcome,
			&e.Bytes, &e.DurationMs, &e.TimestampMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan fetch event row: %w", err)
		}

		e.Kind = domain.FetchKind(kind)
		e.Outcome = domain.FetchOutcome(outcome)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fetch event rows: %w", err)
	}

	return events, nil
}
