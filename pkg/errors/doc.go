// Package errors provides custom error types for the paper-handler agent.
//
// Each error type includes a constructor, Error() method, and a type-checking
// helper using errors.As for proper error unwrapping.
//
// # Error Types Overview
//
//	┌────────────────────────────┬────────┬──────────────────────────────────────┐
//	│ Error Type                 │ HTTP   │ Description                          │
//	├────────────────────────────┼────────┼──────────────────────────────────────┤
//	│ DriverError                │ -      │ Hardware call failed (never surfaced)│
//	│ CommandRejectedError       │ 409    │ Command invalid in current status    │
//	│ MachineNotRunningError     │ 503    │ Paper handler loop not started       │
//	│ MachineAlreadyRunningError │ 409    │ Paper handler started twice          │
//	│ ResourceNotFoundError      │ 404    │ Requested sheet doesn't exist        │
//	│ InterpretationError        │ -      │ Interpreter could not read a sheet   │
//	└────────────────────────────┴────────┴──────────────────────────────────────┘
//
// # DriverError
//
// Wraps a failure reported by a hardware driver with the operation name and a
// DriverErrorCode. The paper handler never returns a DriverError to callers:
// it converts it into a state transition (jammed, no hardware).
//
// Constructor:
//   - NewDriverError(op string, code DriverErrorCode, err error)
//
// Usage:
//
//	if errors.DriverErrorCodeOf(err) == errors.DriverErrorJammed {
//	    // treat as a paper jam
//	}
//
// # CommandRejectedError
//
// Indicates an operator command (accept, reject, clear jam...) arrived while the
// machine was in a status where it does not apply. The state is left unchanged.
//
// Constructor:
//   - NewCommandRejectedError(command, status string)
//
// Usage:
//
//	if errors.IsCommandRejectedError(err) {
//	    c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
//	}
//
// # MachineNotRunningError / MachineAlreadyRunningError
//
// Returned by the paper handler service when a command is issued before Start,
// or when Start is called twice.
//
// # ResourceNotFoundError
//
// Indicates a requested record was not found in the store.
//
// Constructors:
//   - NewResourceNotFoundError(kind, id string)
//   - NewSheetNotFoundError(id string)
//
// # Type Checking Pattern
//
// All error types provide Is* helper functions that use errors.As
// for proper error chain unwrapping:
//
//	wrapped := fmt.Errorf("accept failed: %w", errors.NewCommandRejectedError("accept", "jammed"))
//	errors.IsCommandRejectedError(wrapped) // returns true
package errors
