package machine

import (
	"time"

	"github.com/votingworks/paper-handler/internal/models"
	srvErrors "github.com/votingworks/paper-handler/pkg/errors"
	"github.com/votingworks/paper-handler/pkg/interpreter"
)

// Transition computes the next state of the paper handler.
//
// It is pure and total. Hardware signals that no state expects lead to Jammed,
// never to an unchanged state. Operator commands that are not valid in the current
// state leave it unchanged and return a RejectCommand action.
func Transition(p Policy, s State, e Event) (State, []Action) {
	now := e.At()

	if next, actions, ok := global(s, e); ok {
		return next, actions
	}

	switch st := s.(type) {
	case Disconnected:
		return disconnected(p, st, e)

	case NotAcceptingPaper:
		if isCommand(e, CommandEnableScanning) {
			return AcceptingPaper{}, nil
		}

	case AcceptingPaper:
		if isCommand(e, CommandDisableScanning) {
			return NotAcceptingPaper{}, nil
		}
		if poll, ok := e.(Poll); ok && poll.Status.PaperPresent() {
			if st.Reload {
				return PaperReloaded{Since: now}, nil
			}
			return LoadingPaper{Since: now}, []Action{Move{Position: models.PositionInternal}}
		}

	case PaperReloaded:
		if poll, ok := e.(Poll); ok && poll.Status.PaperAbsent() {
			return AcceptingPaper{Reload: true}, nil
		}
		if isTimer(e) && elapsed(st.Since, now, p.Delays.PaperReloaded) {
			return LoadingPaper{Since: now}, []Action{Move{Position: models.PositionInternal}}
		}

	case LoadingPaper:
		if ev, ok := e.(MoveCompleted); ok {
			if ev.Err != nil {
				return failure(now, ReasonLoadFailed, ev.Err), nil
			}
			if p.Workflow == WorkflowPrint {
				return WaitingForBallotData{}, nil
			}
			return Scanning{Attempt: 1}, []Action{Scan{}}
		}

	case WaitingForBallotData:
		if c, ok := e.(Command); ok && c.Kind == CommandPrintBallot && len(c.PDF) > 0 {
			return PrintingBallot{PDF: c.PDF, Attempt: 1}, []Action{Print{PDF: c.PDF}}
		}

	case PrintingBallot:
		if ev, ok := e.(PrintCompleted); ok {
			if ev.Err == nil {
				return Scanning{Attempt: 1}, []Action{Scan{}}
			}
			if st.Attempt < p.MaxPrintAttempts {
				return PrintingBallot{PDF: st.PDF, Attempt: st.Attempt + 1}, []Action{Print{PDF: st.PDF}}
			}
			return failure(now, ReasonPrintFailed, ev.Err), nil
		}

	case Scanning:
		if ev, ok := e.(ScanCompleted); ok {
			if ev.Err != nil {
				return failure(now, ReasonScanFailed, ev.Err), nil
			}
			return Interpreting{Images: ev.Images, Attempt: st.Attempt}, []Action{Interpret{Images: ev.Images}}
		}

	case Interpreting:
		if ev, ok := e.(InterpretCompleted); ok {
			return interpreted(p, st, ev)
		}

	case TransitionInterpretation:
		if ev, ok := e.(MoveCompleted); ok {
			if ev.Err != nil {
				return failure(now, ReasonPresentFailed, ev.Err), nil
			}
			return PresentingBallot{Sheet: st.Sheet}, nil
		}

	case PresentingBallot:
		if isCommand(e, CommandAcceptBallot) {
			return EjectingToRear{Sheet: st.Sheet, Since: now}, []Action{Eject{Direction: models.EjectRear}}
		}
		if isCommand(e, CommandRejectBallot) {
			sheet := st.Sheet
			return WaitingForInvalidatedBallotConfirmation{Sheet: &sheet, Reason: ReasonRejected}, nil
		}

	case BlankPageInterpretation:
		if isCommand(e, CommandReloadPaper) {
			return EjectingToFront{Reason: ReasonBlank, Since: now}, []Action{Eject{Direction: models.EjectFront}}
		}

	case WaitingForInvalidatedBallotConfirmation:
		if isCommand(e, CommandConfirmInvalidatedBallot) {
			return EjectingToFront{Reason: ReasonInvalidated, Since: now}, []Action{Eject{Direction: models.EjectFront}}
		}

	case EjectingToRear:
		switch ev := e.(type) {
		case EjectCompleted:
			if ev.Err != nil {
				return failure(now, ReasonEjectFailed, ev.Err), nil
			}
			return st, nil
		case Poll:
			// The ballot leaves through the internal path. A sheet at the front
			// slot is the next voter's.
			if !ev.Status.BackSensor {
				return ResettingStateMachineAfterSuccess{Since: now}, []Action{RecordSheet{Sheet: st.Sheet}}
			}
			if elapsed(st.Since, now, p.Delays.EjectTimeout) {
				return Jammed{Reason: ReasonEjectTimeout}, nil
			}
		}

	case EjectingToFront:
		switch ev := e.(type) {
		case EjectCompleted:
			if ev.Err != nil {
				return failure(now, ReasonEjectFailed, ev.Err), nil
			}
			return st, nil
		case Poll:
			if ev.Status.PaperAbsent() {
				switch {
				case st.Reason == ReasonBlank:
					return AcceptingPaper{Reload: true}, nil
				case p.Workflow == WorkflowPrint:
					return NotAcceptingPaper{}, nil
				default:
					return AcceptingPaper{}, nil
				}
			}
			// A sheet waiting at the front slot is the voter's to take. Only a
			// sheet still inside the device can time out.
			if ev.Status.BackSensor && elapsed(st.Since, now, p.Delays.EjectTimeout) {
				return Jammed{Reason: ReasonEjectTimeout}, nil
			}
		}

	case ResettingStateMachineAfterSuccess:
		if _, ok := e.(SheetRecorded); ok {
			return st, nil
		}
		if isTimer(e) {
			if p.Workflow == WorkflowPrint {
				if elapsed(st.Since, now, p.Delays.AcceptedResetToNoPaper) {
					return NotAcceptingPaper{}, nil
				}
			} else if elapsed(st.Since, now, p.Delays.AcceptedReady) {
				return AcceptingPaper{}, nil
			}
		}

	case Jammed:
		if isCommand(e, CommandClearJam) {
			return ResettingStateMachineAfterJam{Since: now}, []Action{ResetHardware{}}
		}
		if _, ok := e.(Command); ok {
			return reject(s, e)
		}
		return st, nil

	case ResettingStateMachineAfterJam:
		if ev, ok := e.(ResetCompleted); ok {
			if ev.Err != nil {
				return Jammed{Reason: ReasonResetFailed, Err: ev.Err}, nil
			}
			return st, nil
		}
		// The device may not answer while it resets.
		_, pollFailed := e.(PollFailed)
		if isTimer(e) || pollFailed {
			if elapsed(st.Since, now, p.Delays.Reconnect) {
				return JamCleared{}, nil
			}
			return st, nil
		}

	case JamCleared:
		if poll, ok := e.(Poll); ok && poll.Status.PaperAbsent() {
			return NotAcceptingPaper{}, nil
		}
	}

	return fallback(s, e)
}

// global applies the rules shared by every connected state.
func global(s State, e Event) (State, []Action, bool) {
	switch s.(type) {
	case Disconnected, Jammed, ResettingStateMachineAfterJam:
		return nil, nil, false
	}

	switch ev := e.(type) {
	case PollFailed:
		return Disconnected{Since: ev.Now, LastError: ev.Err}, nil, true
	case Poll:
		switch {
		case ev.Status.Jammed:
			return Jammed{Reason: ReasonPaperJam}, nil, true
		case ev.Status.CoverOpen:
			return Jammed{Reason: ReasonCoverOpen}, nil, true
		}
	}
	return nil, nil, false
}

func disconnected(p Policy, s Disconnected, e Event) (State, []Action) {
	switch ev := e.(type) {
	case Connected:
		return NotAcceptingPaper{}, nil
	case ConnectFailed:
		return Disconnected{Since: ev.Now, Attempts: s.Attempts + 1, LastError: ev.Err}, nil
	case Tick, Poll, PollFailed:
		if elapsed(s.Since, ev.At(), p.Delays.Reconnect) {
			return s, []Action{Connect{}}
		}
		return s, nil
	case Command:
		return reject(s, e)
	}
	// Results of actions issued before the connection was lost.
	return s, nil
}

func interpreted(p Policy, s Interpreting, e InterpretCompleted) (State, []Action) {
	sheet := models.Sheet{Images: s.Images, Interpretation: e.Result}

	classification := interpreter.ClassificationUnreadable
	if e.Err == nil {
		classification = interpreter.Classify(e.Result)
	}

	switch classification {
	case interpreter.ClassificationWrongElection:
		return WaitingForInvalidatedBallotConfirmation{Sheet: &sheet, Reason: ReasonWrongElection}, nil
	case interpreter.ClassificationBlank:
		return BlankPageInterpretation{Sheet: sheet}, nil
	case interpreter.ClassificationValidBallot:
		if p.AcceptPolicy == AcceptPolicyAuto {
			return EjectingToRear{Sheet: sheet, Since: e.Now}, []Action{Eject{Direction: models.EjectRear}}
		}
		return TransitionInterpretation{Sheet: sheet, Since: e.Now}, []Action{Move{Position: models.PositionFront}}
	case interpreter.ClassificationNeedsReview:
		return TransitionInterpretation{Sheet: sheet, Since: e.Now}, []Action{Move{Position: models.PositionFront}}
	}

	if s.Attempt <= p.MaxInterpretationRetries {
		return Scanning{Attempt: s.Attempt + 1}, []Action{Scan{}}
	}
	if e.Err != nil {
		return WaitingForInvalidatedBallotConfirmation{Reason: ReasonUnreadable}, nil
	}
	return WaitingForInvalidatedBallotConfirmation{Sheet: &sheet, Reason: ReasonUnreadable}, nil
}

// fallback handles events no rule matched.
func fallback(s State, e Event) (State, []Action) {
	switch e.(type) {
	case Command:
		return reject(s, e)
	case Tick, Poll, SheetRecorded:
		return s, nil
	}
	return Jammed{Reason: ReasonUnexpected}, nil
}

func reject(s State, e Event) (State, []Action) {
	return s, []Action{RejectCommand{Command: e.(Command).Kind}}
}

// failure maps a failed driver call to the state that recovers from it.
func failure(now time.Time, reason string, err error) State {
	switch srvErrors.DriverErrorCodeOf(err) {
	case srvErrors.DriverErrorDisconnected:
		return Disconnected{Since: now, LastError: err}
	case srvErrors.DriverErrorJammed:
		return Jammed{Reason: ReasonPaperJam, Err: err}
	}
	return Jammed{Reason: reason, Err: err}
}

func isCommand(e Event, kind CommandKind) bool {
	c, ok := e.(Command)
	return ok && c.Kind == kind
}

// isTimer reports events that advance timed states.
func isTimer(e Event) bool {
	switch e.(type) {
	case Tick, Poll:
		return true
	}
	return false
}

func elapsed(since, now time.Time, d time.Duration) bool {
	return !now.Before(since.Add(d))
}
