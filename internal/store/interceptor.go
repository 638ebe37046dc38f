package store

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// QueryInterceptor is the subset of *sql.DB the stores use.
type QueryInterceptor interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// queryInterceptor logs every statement at debug level with its duration.
type queryInterceptor struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

func newQueryInterceptor(db *sql.DB) *queryInterceptor {
	return &queryInterceptor{
		db:     db,
		logger: zap.S().Named("store"),
	}
}

func (q *queryInterceptor) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer q.trace("query_row", query, args, time.Now())
	return q.db.QueryRowContext(ctx, query, args...)
}

func (q *queryInterceptor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer q.trace("query", query, args, time.Now())
	return q.db.QueryContext(ctx, query, args...)
}

func (q *queryInterceptor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer q.trace("exec", query, args, time.Now())
	return q.db.ExecContext(ctx, query, args...)
}

// slowQuery is long enough to delay a poll of the paper handler.
const slowQuery = 100 * time.Millisecond

func (q *queryInterceptor) trace(kind, query string, args []any, start time.Time) {
	elapsed := time.Since(start)
	if elapsed >= slowQuery {
		q.logger.Warnw("slow "+kind, "query", query, "duration", elapsed)
		return
	}
	q.logger.Debugw(kind, "query", query, "args", args, "duration", elapsed)
}
