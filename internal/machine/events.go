package machine

import (
	"fmt"
	"strings"
	"time"

	"github.com/votingworks/paper-handler/internal/models"
)

// Event is an input of Transition. Every event carries the time it was observed.
type Event interface {
	At() time.Time
}

// Tick is the passage of time without a hardware read.
type Tick struct {
	Now time.Time
}

// Poll is a successful paper status read.
type Poll struct {
	Now    time.Time
	Status models.ScannerStatus
}

type PollFailed struct {
	Now time.Time
	Err error
}

type Connected struct {
	Now time.Time
}

type ConnectFailed struct {
	Now time.Time
	Err error
}

type MoveCompleted struct {
	Now time.Time
	Err error
}

type ScanCompleted struct {
	Now    time.Time
	Images models.SheetImages
	Err    error
}

type InterpretCompleted struct {
	Now    time.Time
	Result models.InterpretationResult
	Err    error
}

// EjectCompleted means the device accepted the eject. The sheet is gone only
// once a poll reports the paper path empty.
type EjectCompleted struct {
	Now time.Time
	Err error
}

type PrintCompleted struct {
	Now time.Time
	Err error
}

type SheetRecorded struct {
	Now time.Time
	Err error
}

type ResetCompleted struct {
	Now time.Time
	Err error
}

// CommandKind names an operator command.
type CommandKind string

const (
	CommandAcceptBallot             CommandKind = "accept_ballot"
	CommandRejectBallot             CommandKind = "reject_ballot"
	CommandClearJam                 CommandKind = "clear_jam"
	CommandEnableScanning           CommandKind = "enable_scanning"
	CommandDisableScanning          CommandKind = "disable_scanning"
	CommandConfirmInvalidatedBallot CommandKind = "confirm_invalidated_ballot"
	CommandReloadPaper              CommandKind = "reload_paper"
	CommandPrintBallot              CommandKind = "print_ballot"
)

// Command is an operator command. PDF is only set for CommandPrintBallot.
type Command struct {
	Now  time.Time
	Kind CommandKind
	PDF  []byte
}

func (e Tick) At() time.Time { return e.Now }
func (e Poll) At() time.Time { return e.Now }
func (e PollFailed) At() time.Time { return e.Now }
func (e Connected) At() time.Time { return e.Now }
func (e ConnectFailed) At() time.Time { return e.Now }
func (e MoveCompleted) At() time.Time { return e.Now }
func (e ScanCompleted) At() time.Time { return e.Now }
func (e InterpretCompleted) At() time.Time { return e.Now }
func (e EjectCompleted) At() time.Time { return e.Now }
func (e PrintCompleted) At() time.Time { return e.Now }
func (e SheetRecorded) At() time.Time { return e.Now }
func (e ResetCompleted) At() time.Time { return e.Now }
func (e Command) At() time.Time { return e.Now }

// EventName returns the variant name of e, for logs.
func EventName(e Event) string {
	if c, ok := e.(Command); ok {
		return string(c.Kind)
	}
	return typeName(e)
}

func typeName(v any) string {
	name := fmt.Sprintf("%T", v)
	return name[strings.LastIndex(name, ".")+1:]
}
