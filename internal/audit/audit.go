// Package audit emits auditable paper handler events.
//
// Log never blocks the caller: entries are queued and written by a background
// goroutine. A full queue drops the entry with a warning. With an EventSink every
// entry except status changes is also stored as a scanner event; the paper handler
// records status changes itself.
package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/votingworks/paper-handler/internal/models"
)

// LogEventID identifies the kind of an audit event.
type LogEventID string

const (
	EventScannerStateChanged  LogEventID = "scanner-state-changed"
	EventScannerCommand       LogEventID = "scanner-command"
	EventSheetAccepted        LogEventID = "sheet-accepted"
	EventSheetRecordFailed    LogEventID = "sheet-record-failed"
	EventHardwareConnected    LogEventID = "hardware-connected"
	EventHardwareDisconnected LogEventID = "hardware-disconnected"
	EventMachineStarted       LogEventID = "machine-started"
	EventMachineStopped       LogEventID = "machine-stopped"
)

// Role is who caused an event.
type Role string

const (
	RoleSystem   Role = "system"
	RoleOperator Role = "operator"
	RoleVoter    Role = "voter"
)

// Entry is the body of an audit event.
type Entry struct {
	Disposition models.Disposition
	Message     string
	Fields      map[string]any
}

type Logger interface {
	Log(ctx context.Context, eventID LogEventID, role Role, entry Entry)
}

type record struct {
	eventID LogEventID
	role    Role
	entry   Entry
	at      time.Time
}

const (
	DefaultBufferSize = 256

	sinkTimeout = 5 * time.Second
)

// EventSink stores audit entries. store.Store implements it.
type EventSink interface {
	RecordEvent(ctx context.Context, event models.ScannerEvent) error
}

type Option func(*AsyncLogger)

// WithEventSink also writes entries to sink.
func WithEventSink(sink EventSink) Option {
	return func(l *AsyncLogger) {
		l.sink = sink
	}
}

// AsyncLogger writes audit entries to a zap logger from a background goroutine.
type AsyncLogger struct {
	log     *zap.Logger
	sink    EventSink
	queue   chan record
	dropped atomic.Int64
	wg      sync.WaitGroup
	once    sync.Once
}

func NewAsyncLogger(log *zap.Logger, bufferSize int, opts ...Option) *AsyncLogger {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	l := &AsyncLogger{
		log:   log,
		queue: make(chan record, bufferSize),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *AsyncLogger) Log(ctx context.Context, eventID LogEventID, role Role, entry Entry) {
	select {
	case l.queue <- record{eventID: eventID, role: role, entry: entry, at: time.Now()}:
	default:
		l.dropped.Add(1)
		zap.S().Named("audit").Warnw("audit queue full, entry dropped", "event_id", eventID, "message", entry.Message)
	}
}

// Dropped returns the number of entries lost to a full queue.
func (l *AsyncLogger) Dropped() int64 {
	return l.dropped.Load()
}

// Close flushes queued entries. Log must not be called after Close.
func (l *AsyncLogger) Close() {
	l.once.Do(func() {
		close(l.queue)
		l.wg.Wait()
		_ = l.log.Sync()
	})
}

func (l *AsyncLogger) run() {
	defer l.wg.Done()
	for r := range l.queue {
		fields := []zap.Field{
			zap.String("event_id", string(r.eventID)),
			zap.String("role", string(r.role)),
			zap.String("disposition", string(r.entry.Disposition)),
			zap.Time("at", r.at),
		}
		for k, v := range r.entry.Fields {
			fields = append(fields, zap.Any(k, v))
		}
		l.log.Info(r.entry.Message, fields...)
		l.store(r)
	}
}

func (l *AsyncLogger) store(r record) {
	if l.sink == nil || r.eventID == EventScannerStateChanged {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	err := l.sink.RecordEvent(ctx, models.ScannerEvent{
		EventID:     string(r.eventID),
		User:        string(r.role),
		Disposition: r.entry.Disposition,
		Message:     r.entry.Message,
		Timestamp:   r.at,
	})
	if err != nil {
		l.log.Warn("failed to store audit entry", zap.String("event_id", string(r.eventID)), zap.Error(err))
	}
}
