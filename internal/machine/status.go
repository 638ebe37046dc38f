package machine

import (
	"time"

	"github.com/votingworks/paper-handler/internal/models"
)

// SimpleStatusOf maps an internal state to its externally visible status.
func SimpleStatusOf(s State) models.SimpleStatus {
	v := &simpleStatusVisitor{}
	s.accept(v)
	return v.status
}

// StatusOf maps an internal state to its status, with the reason of jams,
// escalations and hardware loss.
func StatusOf(s State, since time.Time) models.Status {
	v := &simpleStatusVisitor{}
	s.accept(v)
	return models.Status{SimpleStatus: v.status, Reason: v.reason, Since: since}
}

type simpleStatusVisitor struct {
	status models.SimpleStatus
	reason string
}

func (v *simpleStatusVisitor) VisitDisconnected(s Disconnected) {
	v.status = models.SimpleStatusNoHardware
	if s.LastError != nil {
		v.reason = s.LastError.Error()
	}
}

func (v *simpleStatusVisitor) VisitNotAcceptingPaper(NotAcceptingPaper) {
	v.status = models.SimpleStatusNotAcceptingPaper
}

func (v *simpleStatusVisitor) VisitAcceptingPaper(AcceptingPaper) {
	v.status = models.SimpleStatusAcceptingPaper
}

func (v *simpleStatusVisitor) VisitPaperReloaded(PaperReloaded) {
	v.status = models.SimpleStatusPaperReloaded
}

func (v *simpleStatusVisitor) VisitLoadingPaper(LoadingPaper) {
	v.status = models.SimpleStatusLoadingPaper
}

func (v *simpleStatusVisitor) VisitWaitingForBallotData(WaitingForBallotData) {
	v.status = models.SimpleStatusWaitingForBallotData
}

func (v *simpleStatusVisitor) VisitPrintingBallot(PrintingBallot) {
	v.status = models.SimpleStatusPrintingBallot
}

func (v *simpleStatusVisitor) VisitScanning(Scanning) {
	v.status = models.SimpleStatusScanning
}

func (v *simpleStatusVisitor) VisitInterpreting(Interpreting) {
	v.status = models.SimpleStatusInterpreting
}

func (v *simpleStatusVisitor) VisitTransitionInterpretation(TransitionInterpretation) {
	v.status = models.SimpleStatusTransitionInterpretation
}

func (v *simpleStatusVisitor) VisitPresentingBallot(PresentingBallot) {
	v.status = models.SimpleStatusPresentingBallot
}

func (v *simpleStatusVisitor) VisitBlankPageInterpretation(BlankPageInterpretation) {
	v.status = models.SimpleStatusBlankPageInterpretation
}

func (v *simpleStatusVisitor) VisitWaitingForInvalidatedBallotConfirmation(s WaitingForInvalidatedBallotConfirmation) {
	v.status = models.SimpleStatusWaitingForInvalidatedBallotConfirmation
	v.reason = s.Reason
}

func (v *simpleStatusVisitor) VisitEjectingToFront(s EjectingToFront) {
	v.status = models.SimpleStatusEjectingToFront
	v.reason = s.Reason
}

func (v *simpleStatusVisitor) VisitEjectingToRear(EjectingToRear) {
	v.status = models.SimpleStatusEjectingToRear
}

func (v *simpleStatusVisitor) VisitResettingStateMachineAfterSuccess(ResettingStateMachineAfterSuccess) {
	v.status = models.SimpleStatusResettingStateMachineAfterSuccess
}

func (v *simpleStatusVisitor) VisitJammed(s Jammed) {
	v.status = models.SimpleStatusJammed
	v.reason = s.Reason
}

func (v *simpleStatusVisitor) VisitResettingStateMachineAfterJam(ResettingStateMachineAfterJam) {
	v.status = models.SimpleStatusResettingStateMachineAfterJam
}

func (v *simpleStatusVisitor) VisitJamCleared(JamCleared) {
	v.status = models.SimpleStatusJamCleared
}
