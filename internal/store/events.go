package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/votingworks/paper-handler/internal/models"
)

const eventsTable = "scanner_events"

// EventStore persists the scanner audit trail.
type EventStore struct {
	db QueryInterceptor
}

func NewEventStore(db QueryInterceptor) *EventStore {
	return &EventStore{db: db}
}

// Record appends an event. The id is assigned by the database.
func (s *EventStore) Record(ctx context.Context, event models.ScannerEvent) error {
	query, args, err := sq.Insert(eventsTable).
		Columns("event_id", "user_role", "disposition", "message", "previous_status", "new_status", "created_at").
		Values(
			event.EventID,
			event.User,
			string(event.Disposition),
			event.Message,
			string(event.PreviousStatus),
			string(event.NewStatus),
			event.Timestamp.UTC(),
		).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting scanner event: %w", err)
	}
	return nil
}

// List returns events, newest first.
func (s *EventStore) List(ctx context.Context, opts ...ListOption) ([]models.ScannerEvent, error) {
	builder := sq.Select("id", "event_id", "user_role", "disposition", "message", "previous_status", "new_status", "created_at").
		From(eventsTable).
		OrderBy("id DESC")
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.ScannerEvent{}
	for rows.Next() {
		var (
			e                  models.ScannerEvent
			disposition        string
			previous, newState string
		)
		if err := rows.Scan(&e.ID, &e.EventID, &e.User, &disposition, &e.Message, &previous, &newState, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Disposition = models.Disposition(disposition)
		e.PreviousStatus = models.SimpleStatus(previous)
		e.NewStatus = models.SimpleStatus(newState)
		events = append(events, e)
	}
	return events, rows.Err()
}
