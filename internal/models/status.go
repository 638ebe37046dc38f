package models

import (
	"fmt"
	"time"
)

// SimpleStatus is the externally visible state of the paper handler.
type SimpleStatus string

const (
	SimpleStatusNoHardware                              SimpleStatus = "no_hardware"
	SimpleStatusNotAcceptingPaper                       SimpleStatus = "not_accepting_paper"
	SimpleStatusAcceptingPaper                          SimpleStatus = "accepting_paper"
	SimpleStatusLoadingPaper                            SimpleStatus = "loading_paper"
	SimpleStatusScanning                                SimpleStatus = "scanning"
	SimpleStatusInterpreting                            SimpleStatus = "interpreting"
	SimpleStatusTransitionInterpretation                SimpleStatus = "transition_interpretation"
	SimpleStatusBlankPageInterpretation                 SimpleStatus = "blank_page_interpretation"
	SimpleStatusWaitingForBallotData                    SimpleStatus = "waiting_for_ballot_data"
	SimpleStatusPresentingBallot                        SimpleStatus = "presenting_ballot"
	SimpleStatusPrintingBallot                          SimpleStatus = "printing_ballot"
	SimpleStatusEjectingToFront                         SimpleStatus = "ejecting_to_front"
	SimpleStatusEjectingToRear                          SimpleStatus = "ejecting_to_rear"
	SimpleStatusJammed                                  SimpleStatus = "jammed"
	SimpleStatusJamCleared                              SimpleStatus = "jam_cleared"
	SimpleStatusResettingStateMachineAfterJam           SimpleStatus = "resetting_state_machine_after_jam"
	SimpleStatusResettingStateMachineAfterSuccess       SimpleStatus = "resetting_state_machine_after_success"
	SimpleStatusPaperReloaded                           SimpleStatus = "paper_reloaded"
	SimpleStatusWaitingForInvalidatedBallotConfirmation SimpleStatus = "waiting_for_invalidated_ballot_confirmation"
)

// SimpleStatuses lists every SimpleStatus value.
var SimpleStatuses = []SimpleStatus{
	SimpleStatusNoHardware,
	SimpleStatusNotAcceptingPaper,
	SimpleStatusAcceptingPaper,
	SimpleStatusLoadingPaper,
	SimpleStatusScanning,
	SimpleStatusInterpreting,
	SimpleStatusTransitionInterpretation,
	SimpleStatusBlankPageInterpretation,
	SimpleStatusWaitingForBallotData,
	SimpleStatusPresentingBallot,
	SimpleStatusPrintingBallot,
	SimpleStatusEjectingToFront,
	SimpleStatusEjectingToRear,
	SimpleStatusJammed,
	SimpleStatusJamCleared,
	SimpleStatusResettingStateMachineAfterJam,
	SimpleStatusResettingStateMachineAfterSuccess,
	SimpleStatusPaperReloaded,
	SimpleStatusWaitingForInvalidatedBallotConfirmation,
}

func ParseSimpleStatus(s string) (SimpleStatus, error) {
	for _, v := range SimpleStatuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid simple status: %s", s)
}

func (s SimpleStatus) String() string {
	return string(s)
}

// Status holds the current simple status and metadata.
type Status struct {
	SimpleStatus SimpleStatus
	// Reason explains jams, escalations and hardware loss. Empty otherwise.
	Reason string
	Since  time.Time
}
