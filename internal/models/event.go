package models

import "time"

// Disposition tells whether an audited event succeeded.
type Disposition string

const (
	DispositionSuccess Disposition = "success"
	DispositionFailure Disposition = "failure"
	DispositionNA      Disposition = "na"
)

// ScannerEvent is an audit row written by the paper handler.
type ScannerEvent struct {
	ID             int64
	EventID        string
	User           string
	Disposition    Disposition
	Message        string
	PreviousStatus SimpleStatus
	NewStatus      SimpleStatus
	Timestamp      time.Time
}
