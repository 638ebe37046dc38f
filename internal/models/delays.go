package models

import (
	"fmt"
	"time"
)

// Delays holds every timed wait of the paper handler.
type Delays struct {
	// Reconnect is the wait between reconnect rounds and the settle time after a jam reset.
	Reconnect time.Duration
	// AcceptedReady is the wait after a successful accept before accepting paper again.
	AcceptedReady time.Duration
	// AcceptedResetToNoPaper is the wait after a successful accept before returning
	// to not accepting paper (print workflow).
	AcceptedResetToNoPaper time.Duration
	// PollingInterval is the period of the paper status poll.
	PollingInterval time.Duration
	// EjectTimeout bounds how long the sheet may stay in the paper path after an eject.
	EjectTimeout time.Duration
	// PaperReloaded is the settle time after a blank sheet was replaced.
	PaperReloaded time.Duration
	// DriverTimeout bounds any single driver call.
	DriverTimeout time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		Reconnect:              3 * time.Second,
		AcceptedReady:          2500 * time.Millisecond,
		AcceptedResetToNoPaper: 2 * time.Second,
		PollingInterval:        200 * time.Millisecond,
		EjectTimeout:           10 * time.Second,
		PaperReloaded:          1 * time.Second,
		DriverTimeout:          30 * time.Second,
	}
}

func (d Delays) Validate() error {
	fields := map[string]time.Duration{
		"reconnect":                  d.Reconnect,
		"accepted-ready":             d.AcceptedReady,
		"accepted-reset-to-no-paper": d.AcceptedResetToNoPaper,
		"polling-interval":           d.PollingInterval,
		"eject-timeout":              d.EjectTimeout,
		"paper-reloaded":             d.PaperReloaded,
		"driver-timeout":             d.DriverTimeout,
	}
	for name, v := range fields {
		if v <= 0 {
			return fmt.Errorf("delay %s must be positive, got %s", name, v)
		}
	}
	return nil
}
