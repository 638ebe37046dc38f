package machine

import (
	"time"

	"github.com/votingworks/paper-handler/internal/models"
)

// State is one variant of the internal paper handler state.
//
// The set of variants is closed: accept is unexported, so only this package can
// add a state, and adding one requires a new StateVisitor method.
type State interface {
	accept(v StateVisitor)
}

// StateVisitor has one method per state variant.
type StateVisitor interface {
	VisitDisconnected(s Disconnected)
	VisitNotAcceptingPaper(s NotAcceptingPaper)
	VisitAcceptingPaper(s AcceptingPaper)
	VisitPaperReloaded(s PaperReloaded)
	VisitLoadingPaper(s LoadingPaper)
	VisitWaitingForBallotData(s WaitingForBallotData)
	VisitPrintingBallot(s PrintingBallot)
	VisitScanning(s Scanning)
	VisitInterpreting(s Interpreting)
	VisitTransitionInterpretation(s TransitionInterpretation)
	VisitPresentingBallot(s PresentingBallot)
	VisitBlankPageInterpretation(s BlankPageInterpretation)
	VisitWaitingForInvalidatedBallotConfirmation(s WaitingForInvalidatedBallotConfirmation)
	VisitEjectingToFront(s EjectingToFront)
	VisitEjectingToRear(s EjectingToRear)
	VisitResettingStateMachineAfterSuccess(s ResettingStateMachineAfterSuccess)
	VisitJammed(s Jammed)
	VisitResettingStateMachineAfterJam(s ResettingStateMachineAfterJam)
	VisitJamCleared(s JamCleared)
}

// Visit dispatches s to the matching method of v.
func Visit(s State, v StateVisitor) {
	s.accept(v)
}

// Reasons carried by states that need operator attention.
const (
	ReasonPaperJam      = "paper_jam"
	ReasonCoverOpen     = "cover_open"
	ReasonLoadFailed    = "load_failed"
	ReasonScanFailed    = "scan_failed"
	ReasonPresentFailed = "present_failed"
	ReasonEjectFailed   = "eject_failed"
	ReasonEjectTimeout  = "eject_timeout"
	ReasonPrintFailed   = "print_failed"
	ReasonResetFailed   = "reset_failed"
	ReasonUnexpected    = "unexpected_event"

	ReasonUnreadable    = "unreadable"
	ReasonWrongElection = "wrong_election"
	ReasonRejected      = "rejected"
	ReasonBlank         = "blank"
	ReasonInvalidated   = "invalidated"
)

// Disconnected means the driver is unreachable. The machine reconnects every
// Delays.Reconnect.
type Disconnected struct {
	Since     time.Time
	Attempts  int
	LastError error
}

type NotAcceptingPaper struct{}

// AcceptingPaper waits for a sheet at the front slot. Reload is set when the
// previous sheet was returned as blank.
type AcceptingPaper struct {
	Reload bool
}

type PaperReloaded struct {
	Since time.Time
}

type LoadingPaper struct {
	Since time.Time
}

type WaitingForBallotData struct{}

type PrintingBallot struct {
	PDF     []byte
	Attempt int
}

type Scanning struct {
	Attempt int
}

type Interpreting struct {
	Images  models.SheetImages
	Attempt int
}

// TransitionInterpretation moves an interpreted sheet to the front for review.
type TransitionInterpretation struct {
	Sheet models.Sheet
	Since time.Time
}

type PresentingBallot struct {
	Sheet models.Sheet
}

type BlankPageInterpretation struct {
	Sheet models.Sheet
}

// WaitingForInvalidatedBallotConfirmation holds a sheet that will not be counted
// until an operator confirms it can be returned. Sheet is nil when the sheet was
// never interpreted.
type WaitingForInvalidatedBallotConfirmation struct {
	Sheet  *models.Sheet
	Reason string
}

type EjectingToFront struct {
	Reason string
	Since  time.Time
}

type EjectingToRear struct {
	Sheet models.Sheet
	Since time.Time
}

type ResettingStateMachineAfterSuccess struct {
	Since time.Time
}

// Jammed is sticky: only a clear jam command leaves it.
type Jammed struct {
	Reason string
	Err    error
}

type ResettingStateMachineAfterJam struct {
	Since time.Time
}

type JamCleared struct{}

func (s Disconnected) accept(v StateVisitor) { v.VisitDisconnected(s) }
func (s NotAcceptingPaper) accept(v StateVisitor) { v.VisitNotAcceptingPaper(s) }
func (s AcceptingPaper) accept(v StateVisitor) { v.VisitAcceptingPaper(s) }
func (s PaperReloaded) accept(v StateVisitor) { v.VisitPaperReloaded(s) }
func (s LoadingPaper) accept(v StateVisitor) { v.VisitLoadingPaper(s) }
func (s WaitingForBallotData) accept(v StateVisitor) { v.VisitWaitingForBallotData(s) }
func (s PrintingBallot) accept(v StateVisitor) { v.VisitPrintingBallot(s) }
func (s Scanning) accept(v StateVisitor) { v.VisitScanning(s) }
func (s Interpreting) accept(v StateVisitor) { v.VisitInterpreting(s) }
func (s TransitionInterpretation) accept(v StateVisitor) {
	v.VisitTransitionInterpretation(s)
}
func (s PresentingBallot) accept(v StateVisitor) { v.VisitPresentingBallot(s) }
func (s BlankPageInterpretation) accept(v StateVisitor) { v.VisitBlankPageInterpretation(s) }
func (s WaitingForInvalidatedBallotConfirmation) accept(v StateVisitor) {
	v.VisitWaitingForInvalidatedBallotConfirmation(s)
}
func (s EjectingToFront) accept(v StateVisitor) { v.VisitEjectingToFront(s) }
func (s EjectingToRear) accept(v StateVisitor) { v.VisitEjectingToRear(s) }
func (s ResettingStateMachineAfterSuccess) accept(v StateVisitor) {
	v.VisitResettingStateMachineAfterSuccess(s)
}
func (s Jammed) accept(v StateVisitor) { v.VisitJammed(s) }
func (s ResettingStateMachineAfterJam) accept(v StateVisitor) {
	v.VisitResettingStateMachineAfterJam(s)
}
func (s JamCleared) accept(v StateVisitor) { v.VisitJamCleared(s) }

// Initial returns the state of a freshly connected machine.
func Initial() State {
	return NotAcceptingPaper{}
}

// Name returns the variant name of s, for logs.
func Name(s State) string {
	return typeName(s)
}
