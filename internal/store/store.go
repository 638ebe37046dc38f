package store

import (
	"context"
	"database/sql"

	"github.com/votingworks/paper-handler/internal/models"
)

// Store is the paper handler workspace: accepted sheets and the scanner audit trail.
type Store struct {
	db     *sql.DB
	sheets *SheetStore
	events *EventStore
}

func NewStore(db *sql.DB) *Store {
	qi := newQueryInterceptor(db)
	return &Store{
		db:     db,
		sheets: NewSheetStore(qi),
		events: NewEventStore(qi),
	}
}

func (s *Store) Sheets() *SheetStore {
	return s.sheets
}

func (s *Store) Events() *EventStore {
	return s.events
}

// AddSheet appends an accepted sheet.
func (s *Store) AddSheet(ctx context.Context, sheet models.AcceptedSheet) error {
	return s.sheets.Add(ctx, sheet)
}

// RecordEvent appends a scanner audit event.
func (s *Store) RecordEvent(ctx context.Context, event models.ScannerEvent) error {
	return s.events.Record(ctx, event)
}

func (s *Store) Close() error {
	return s.db.Close()
}
