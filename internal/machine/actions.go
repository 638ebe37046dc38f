package machine

import "github.com/votingworks/paper-handler/internal/models"

// Action is a side effect requested by Transition. The service executes actions in
// order and feeds each result back as an event.
type Action interface {
	isAction()
}

type Connect struct{}

type Move struct {
	Position models.PaperPosition
}

type Scan struct{}

type Interpret struct {
	Images models.SheetImages
}

type Eject struct {
	Direction models.EjectDirection
}

type Print struct {
	PDF []byte
}

// RecordSheet persists an accepted sheet.
type RecordSheet struct {
	Sheet models.Sheet
}

// ResetHardware disconnects and reconnects the device after a jam.
type ResetHardware struct{}

// RejectCommand marks a command that is not valid in the current state. It has
// no side effect on the device.
type RejectCommand struct {
	Command CommandKind
}

func (Connect) isAction() {}
func (Move) isAction() {}
func (Scan) isAction() {}
func (Interpret) isAction() {}
func (Eject) isAction() {}
func (Print) isAction() {}
func (RecordSheet) isAction() {}
func (ResetHardware) isAction() {}
func (RejectCommand) isAction() {}

// ActionName returns the variant name of a, for logs.
func ActionName(a Action) string {
	return typeName(a)
}
