// Package driver wraps the physical scanner / paper handler behind a small
// capability interface.
//
// A Driver performs no business logic. It reports what the sensors see and moves
// paper when asked to. Every call is fallible and returns a *errors.DriverError on
// failure. Calls must be sequenced by the caller: a Driver is never used from two
// goroutines at the same time.
//
// Implementations:
//
//	┌─────────────┬─────────────────────────────────────────────────────────┐
//	│ MockDriver  │ In-memory programmable device used by tests and demos   │
//	│ FileDriver  │ Device simulated by image files dropped in a folder     │
//	└─────────────┴─────────────────────────────────────────────────────────┘
package driver

import (
	"context"
	"fmt"

	"github.com/votingworks/paper-handler/internal/models"
)

type Driver interface {
	Connect(ctx context.Context) error
	GetPaperStatus(ctx context.Context) (models.ScannerStatus, error)
	Scan(ctx context.Context) (models.SheetImages, error)
	MoveTo(ctx context.Context, position models.PaperPosition) error
	Eject(ctx context.Context, direction models.EjectDirection) error
	Print(ctx context.Context, pdf []byte) error
	Disconnect(ctx context.Context) error
}

// Op names a driver operation.
type Op string

const (
	OpConnect        Op = "connect"
	OpGetPaperStatus Op = "get_paper_status"
	OpScan           Op = "scan"
	OpMoveTo         Op = "move_to"
	OpEject          Op = "eject"
	OpPrint          Op = "print"
	OpDisconnect     Op = "disconnect"
)

type Kind string

const (
	KindMock Kind = "mock"
	KindFile Kind = "file"
)

func ParseKind(s string) (Kind, error) {
	switch s {
	case "mock":
		return KindMock, nil
	case "file":
		return KindFile, nil
	default:
		return "", fmt.Errorf("invalid driver kind: %s", s)
	}
}
