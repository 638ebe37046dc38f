package models

import "time"

// SheetImages holds the paths of the two scanned sides of a sheet.
type SheetImages struct {
	FrontPath string
	BackPath  string
}

// PageType classifies one side of a scanned sheet.
type PageType string

const (
	PageTypeBallot        PageType = "ballot"
	PageTypeBlank         PageType = "blank"
	PageTypeWrongElection PageType = "wrong_election"
	PageTypeUnreadable    PageType = "unreadable"
)

// PageInterpretation is the interpreter's verdict for one side.
type PageInterpretation struct {
	Type       PageType `json:"type" yaml:"type"`
	BallotID   string   `json:"ballotId,omitempty" yaml:"ballotId,omitempty"`
	Overvotes  []string `json:"overvotes,omitempty" yaml:"overvotes,omitempty"`
	Undervotes []string `json:"undervotes,omitempty" yaml:"undervotes,omitempty"`
	Reason     string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// InterpretationResult is the interpretation of both sides of a sheet.
type InterpretationResult struct {
	Front PageInterpretation
	Back  PageInterpretation
}

// Sheet is a scanned sheet together with its interpretation.
type Sheet struct {
	Images         SheetImages
	Interpretation InterpretationResult
}

// AcceptedSheet is a sheet that was dropped into the ballot box.
// Records are append-only.
type AcceptedSheet struct {
	ID                  string
	BatchID             string
	FrontImagePath      string
	BackImagePath       string
	FrontInterpretation PageInterpretation
	BackInterpretation  PageInterpretation
	AcceptedAt          time.Time
}
