package services_test

import (
	"context"
	"sync"

	"github.com/votingworks/paper-handler/internal/audit"
	"github.com/votingworks/paper-handler/internal/models"
)

type mockWorkspace struct {
	mu       sync.Mutex
	sheets   []models.AcceptedSheet
	events   []models.ScannerEvent
	addErr   error
	addCalls int
}

func (m *mockWorkspace) AddSheet(ctx context.Context, sheet models.AcceptedSheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls++
	if m.addErr != nil {
		return m.addErr
	}
	m.sheets = append(m.sheets, sheet)
	return nil
}

func (m *mockWorkspace) RecordEvent(ctx context.Context, event models.ScannerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockWorkspace) Sheets() []models.AcceptedSheet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.AcceptedSheet(nil), m.sheets...)
}

func (m *mockWorkspace) AddCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addCalls
}

// Statuses returns the statuses the machine went through, in order.
func (m *mockWorkspace) Statuses() []models.SimpleStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SimpleStatus
	for _, e := range m.events {
		out = append(out, e.NewStatus)
	}
	return out
}

// mockInterpreter returns queued results, then the fallback.
type mockInterpreter struct {
	mu       sync.Mutex
	results  []models.InterpretationResult
	fallback models.InterpretationResult
	calls    int
}

func newMockInterpreter(fallback models.InterpretationResult) *mockInterpreter {
	return &mockInterpreter{fallback: fallback}
}

func (m *mockInterpreter) Queue(results ...models.InterpretationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, results...)
}

func (m *mockInterpreter) SetFallback(r models.InterpretationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = r
}

func (m *mockInterpreter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockInterpreter) Interpret(ctx context.Context, images models.SheetImages) (models.InterpretationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.results) > 0 {
		r := m.results[0]
		m.results = m.results[1:]
		return r, nil
	}
	return m.fallback, nil
}

type auditRecord struct {
	eventID audit.LogEventID
	role    audit.Role
	entry   audit.Entry
}

type mockAuditLogger struct {
	mu      sync.Mutex
	records []auditRecord
}

func (m *mockAuditLogger) Log(ctx context.Context, eventID audit.LogEventID, role audit.Role, entry audit.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, auditRecord{eventID: eventID, role: role, entry: entry})
}

func (m *mockAuditLogger) Count(eventID audit.LogEventID, disposition models.Disposition) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.records {
		if r.eventID == eventID && r.entry.Disposition == disposition {
			n++
		}
	}
	return n
}

func pages(front, back models.PageType) models.InterpretationResult {
	return models.InterpretationResult{
		Front: models.PageInterpretation{Type: front},
		Back:  models.PageInterpretation{Type: back},
	}
}

// hungInterpreter ignores its context and blocks until release is closed.
type hungInterpreter struct {
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func (h *hungInterpreter) Interpret(ctx context.Context, images models.SheetImages) (models.InterpretationResult, error) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
	<-h.release
	return models.InterpretationResult{}, nil
}

func (h *hungInterpreter) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}
