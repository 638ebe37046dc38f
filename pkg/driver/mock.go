package driver

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/votingworks/paper-handler/internal/models"
	srvErrors "github.com/votingworks/paper-handler/pkg/errors"
)

// MockDriver is an in-memory paper handler.
//
// Tests drive it by inserting and removing sheets, injecting jams and queueing
// failures for specific operations. It records every call and counts calls that
// overlapped another call.
type MockDriver struct {
	mu sync.Mutex

	connected bool
	paper     bool
	position  models.PaperPosition
	jammed    bool
	coverOpen bool

	images    []models.SheetImages
	scanCount int
	printed   [][]byte

	failures map[Op][]error
	calls    []Op

	callDelay time.Duration
	inFlight  atomic.Int32
	overlaps  atomic.Int32
}

func NewMockDriver() *MockDriver {
	return &MockDriver{failures: make(map[Op][]error)}
}

// WithCallDelay makes every call take at least d.
func (m *MockDriver) WithCallDelay(d time.Duration) *MockDriver {
	m.callDelay = d
	return m
}

// InsertSheet puts a sheet at the front slot.
func (m *MockDriver) InsertSheet() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paper = true
	m.position = models.PositionFront
}

// RemoveSheet takes the sheet out of the paper path.
func (m *MockDriver) RemoveSheet() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paper = false
	m.position = ""
}

func (m *MockDriver) SetJammed(jammed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jammed = jammed
}

func (m *MockDriver) SetCoverOpen(open bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coverOpen = open
}

// QueueScanImages sets the images returned by the next scans, in order.
func (m *MockDriver) QueueScanImages(images ...models.SheetImages) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = append(m.images, images...)
}

// FailNext makes the next call of op return err.
func (m *MockDriver) FailNext(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = append(m.failures[op], err)
}

func (m *MockDriver) Calls() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]Op, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns how many times op was called.
func (m *MockDriver) CallCount(op Op) int {
	n := 0
	for _, c := range m.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

// Overlaps returns the number of calls that started while another call was running.
func (m *MockDriver) Overlaps() int {
	return int(m.overlaps.Load())
}

func (m *MockDriver) Printed() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.printed...)
}

func (m *MockDriver) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockDriver) Connect(ctx context.Context) error {
	return m.call(ctx, OpConnect, func() error {
		m.connected = true
		return nil
	})
}

func (m *MockDriver) GetPaperStatus(ctx context.Context) (models.ScannerStatus, error) {
	var status models.ScannerStatus
	err := m.call(ctx, OpGetPaperStatus, func() error {
		if !m.connected {
			return srvErrors.NewDriverError(string(OpGetPaperStatus), srvErrors.DriverErrorDisconnected, nil)
		}
		var sensors uint32
		if m.paper {
			switch m.position {
			case models.PositionInternal:
				sensors |= models.SensorBackPaper
			default:
				sensors |= models.SensorFrontPaper
			}
		}
		if m.jammed {
			sensors |= models.SensorJam
		}
		if m.coverOpen {
			sensors |= models.SensorCoverOpen
		}
		status = models.NewScannerStatus(sensors)
		return nil
	})
	return status, err
}

func (m *MockDriver) Scan(ctx context.Context) (models.SheetImages, error) {
	var images models.SheetImages
	err := m.call(ctx, OpScan, func() error {
		if err := m.checkPaperPath(OpScan); err != nil {
			return err
		}
		m.scanCount++
		if len(m.images) > 0 {
			images = m.images[0]
			m.images = m.images[1:]
			return nil
		}
		images = models.SheetImages{
			FrontPath: fmt.Sprintf("sheet-%d-front.jpg", m.scanCount),
			BackPath:  fmt.Sprintf("sheet-%d-back.jpg", m.scanCount),
		}
		return nil
	})
	return images, err
}

func (m *MockDriver) MoveTo(ctx context.Context, position models.PaperPosition) error {
	return m.call(ctx, OpMoveTo, func() error {
		if err := m.checkPaperPath(OpMoveTo); err != nil {
			return err
		}
		m.position = position
		return nil
	})
}

func (m *MockDriver) Eject(ctx context.Context, direction models.EjectDirection) error {
	return m.call(ctx, OpEject, func() error {
		if err := m.checkPaperPath(OpEject); err != nil {
			return err
		}
		switch direction {
		case models.EjectRear:
			m.paper = false
			m.position = ""
		case models.EjectFront:
			// the sheet stays in the front slot until it is taken out
			m.position = models.PositionFront
		}
		return nil
	})
}

func (m *MockDriver) Print(ctx context.Context, pdf []byte) error {
	return m.call(ctx, OpPrint, func() error {
		if err := m.checkPaperPath(OpPrint); err != nil {
			return err
		}
		m.printed = append(m.printed, pdf)
		return nil
	})
}

func (m *MockDriver) Disconnect(ctx context.Context) error {
	return m.call(ctx, OpDisconnect, func() error {
		m.connected = false
		return nil
	})
}

// checkPaperPath must be called with m.mu held.
func (m *MockDriver) checkPaperPath(op Op) error {
	switch {
	case !m.connected:
		return srvErrors.NewDriverError(string(op), srvErrors.DriverErrorDisconnected, nil)
	case m.jammed:
		return srvErrors.NewDriverError(string(op), srvErrors.DriverErrorJammed, nil)
	case !m.paper:
		return srvErrors.NewDriverError(string(op), srvErrors.DriverErrorNoPaper, nil)
	}
	return nil
}

func (m *MockDriver) call(ctx context.Context, op Op, fn func() error) error {
	if m.inFlight.Add(1) > 1 {
		m.overlaps.Add(1)
	}
	defer m.inFlight.Add(-1)

	if m.callDelay > 0 {
		select {
		case <-time.After(m.callDelay):
		case <-ctx.Done():
			return srvErrors.NewDriverError(string(op), srvErrors.DriverErrorTimeout, ctx.Err())
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, op)
	if queued := m.failures[op]; len(queued) > 0 {
		m.failures[op] = queued[1:]
		return queued[0]
	}
	return fn()
}
