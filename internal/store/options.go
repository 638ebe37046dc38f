package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/votingworks/paper-handler/pkg/filter"
)

// EventFields are the names a filter may use on the events table.
var EventFields = filter.Fields{
	"id":              "id",
	"event_id":        "event_id",
	"user":            "user_role",
	"disposition":     "disposition",
	"message":         "message",
	"previous_status": "previous_status",
	"new_status":      "new_status",
	"timestamp":       "created_at",
}

// SheetFields are the names a filter may use on the sheets table.
var SheetFields = filter.Fields{
	"id":               "id",
	"batch_id":         "batch_id",
	"accepted_at":      "accepted_at",
	"front_image_path": "front_image_path",
	"back_image_path":  "back_image_path",
}

// ListOption modifies a SELECT query for filtering and pagination.
type ListOption func(sq.SelectBuilder) sq.SelectBuilder

// WithLimit sets the LIMIT clause. Zero means no limit.
func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if limit == 0 {
			return b
		}
		return b.Limit(limit)
	}
}

// WithOffset sets the OFFSET clause.
func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if offset == 0 {
			return b
		}
		return b.Offset(offset)
	}
}

// ByBatch keeps the sheets of one batch.
func ByBatch(batchID string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if batchID == "" {
			return b
		}
		return b.Where(sq.Eq{"batch_id": batchID})
	}
}

// ByEventID keeps the events of the given kinds (OR logic).
func ByEventID(eventIDs ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(eventIDs) == 0 {
			return b
		}
		return b.Where(sq.Eq{"event_id": eventIDs})
	}
}

// WithFilter adds a condition compiled by the filter package.
func WithFilter(cond sq.Sqlizer) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if cond == nil {
			return b
		}
		return b.Where(cond)
	}
}
