// Package v1 holds the types and routing of the paper handler HTTP API.
package v1

import "time"

// Defines values for ScannerStatusStatus.
const (
	ScannerStatusStatusNoHardware                              ScannerStatusStatus = "no_hardware"
	ScannerStatusStatusNotAcceptingPaper                       ScannerStatusStatus = "not_accepting_paper"
	ScannerStatusStatusAcceptingPaper                          ScannerStatusStatus = "accepting_paper"
	ScannerStatusStatusLoadingPaper                            ScannerStatusStatus = "loading_paper"
	ScannerStatusStatusScanning                                ScannerStatusStatus = "scanning"
	ScannerStatusStatusInterpreting                            ScannerStatusStatus = "interpreting"
	ScannerStatusStatusTransitionInterpretation                ScannerStatusStatus = "transition_interpretation"
	ScannerStatusStatusBlankPageInterpretation                 ScannerStatusStatus = "blank_page_interpretation"
	ScannerStatusStatusWaitingForBallotData                    ScannerStatusStatus = "waiting_for_ballot_data"
	ScannerStatusStatusPresentingBallot                        ScannerStatusStatus = "presenting_ballot"
	ScannerStatusStatusPrintingBallot                          ScannerStatusStatus = "printing_ballot"
	ScannerStatusStatusEjectingToFront                         ScannerStatusStatus = "ejecting_to_front"
	ScannerStatusStatusEjectingToRear                          ScannerStatusStatus = "ejecting_to_rear"
	ScannerStatusStatusJammed                                  ScannerStatusStatus = "jammed"
	ScannerStatusStatusJamCleared                              ScannerStatusStatus = "jam_cleared"
	ScannerStatusStatusResettingStateMachineAfterJam           ScannerStatusStatus = "resetting_state_machine_after_jam"
	ScannerStatusStatusResettingStateMachineAfterSuccess       ScannerStatusStatus = "resetting_state_machine_after_success"
	ScannerStatusStatusPaperReloaded                           ScannerStatusStatus = "paper_reloaded"
	ScannerStatusStatusWaitingForInvalidatedBallotConfirmation ScannerStatusStatus = "waiting_for_invalidated_ballot_confirmation"
)

// Defines values for PageInterpretationType.
const (
	PageInterpretationTypeBallot        PageInterpretationType = "ballot"
	PageInterpretationTypeBlank         PageInterpretationType = "blank"
	PageInterpretationTypeWrongElection PageInterpretationType = "wrong_election"
	PageInterpretationTypeUnreadable    PageInterpretationType = "unreadable"
)

// Defines values for ScannerEventDisposition.
const (
	ScannerEventDispositionSuccess ScannerEventDisposition = "success"
	ScannerEventDispositionFailure ScannerEventDisposition = "failure"
	ScannerEventDispositionNa      ScannerEventDisposition = "na"
)

// ScannerStatus defines model for ScannerStatus.
type ScannerStatus struct {
	// BatchId is the batch of the running paper handler.
	BatchId *string `json:"batchId,omitempty"`

	// Reason explains jammed, ejecting and invalidated statuses.
	Reason *string             `json:"reason,omitempty"`
	Since  time.Time           `json:"since"`
	Status ScannerStatusStatus `json:"status"`
}

// ScannerStatusStatus defines model for ScannerStatus.Status.
type ScannerStatusStatus string

// PageInterpretation defines model for PageInterpretation.
type PageInterpretation struct {
	BallotId   *string                `json:"ballotId,omitempty"`
	Overvotes  *[]string              `json:"overvotes,omitempty"`
	Reason     *string                `json:"reason,omitempty"`
	Type       PageInterpretationType `json:"type"`
	Undervotes *[]string              `json:"undervotes,omitempty"`
}

// PageInterpretationType defines model for PageInterpretation.Type.
type PageInterpretationType string

// Sheet defines model for Sheet.
type Sheet struct {
	AcceptedAt          time.Time          `json:"acceptedAt"`
	BackImagePath       string             `json:"backImagePath"`
	BackInterpretation  PageInterpretation `json:"backInterpretation"`
	BatchId             string             `json:"batchId"`
	FrontImagePath      string             `json:"frontImagePath"`
	FrontInterpretation PageInterpretation `json:"frontInterpretation"`
	Id                  string             `json:"id"`
}

// SheetList defines model for SheetList.
type SheetList struct {
	Sheets []Sheet `json:"sheets"`
	Total  int     `json:"total"`
}

// ScannerEvent defines model for ScannerEvent.
type ScannerEvent struct {
	Disposition    ScannerEventDisposition `json:"disposition"`
	EventId        string                  `json:"eventId"`
	Id             int64                   `json:"id"`
	Message        string                  `json:"message"`
	NewStatus      *ScannerStatusStatus    `json:"newStatus,omitempty"`
	PreviousStatus *ScannerStatusStatus    `json:"previousStatus,omitempty"`
	Timestamp      time.Time               `json:"timestamp"`
	User           string                  `json:"user"`
}

// ScannerEventDisposition defines model for ScannerEvent.Disposition.
type ScannerEventDisposition string

// EventList defines model for EventList.
type EventList struct {
	Events []ScannerEvent `json:"events"`
}

// CommandRejected defines model for CommandRejected.
type CommandRejected struct {
	Error  string              `json:"error"`
	Status ScannerStatusStatus `json:"status"`
}

// ListSheetsParams defines parameters for ListSheets.
type ListSheetsParams struct {
	Limit  *int    `form:"limit,omitempty" json:"limit,omitempty"`
	Offset *int    `form:"offset,omitempty" json:"offset,omitempty"`
	Batch  *string `form:"batch,omitempty" json:"batch,omitempty"`
	Filter *string `form:"filter,omitempty" json:"filter,omitempty"`
}

// ListEventsParams defines parameters for ListEvents.
type ListEventsParams struct {
	Limit  *int    `form:"limit,omitempty" json:"limit,omitempty"`
	Filter *string `form:"filter,omitempty" json:"filter,omitempty"`
}
