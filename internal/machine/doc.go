// Package machine is the paper handler state machine.
//
// Transition is a pure function of a Policy, the current State and an Event. It
// returns the next state and the actions the caller must execute, in order. Each
// action result is fed back as an event:
//
//	┌───────────────┬──────────────────────────────┐
//	│ Action        │ Result event                 │
//	├───────────────┼──────────────────────────────┤
//	│ Connect       │ Connected / ConnectFailed    │
//	│ Move          │ MoveCompleted                │
//	│ Scan          │ ScanCompleted                │
//	│ Interpret     │ InterpretCompleted           │
//	│ Eject         │ EjectCompleted               │
//	│ Print         │ PrintCompleted               │
//	│ RecordSheet   │ SheetRecorded                │
//	│ ResetHardware │ ResetCompleted               │
//	│ RejectCommand │ none                         │
//	└───────────────┴──────────────────────────────┘
//
// Timed transitions are evaluated against the Now of Tick and Poll events, so
// tests drive the clock explicitly.
//
// SimpleStatusOf maps every State to exactly one models.SimpleStatus through a
// StateVisitor.
package machine
