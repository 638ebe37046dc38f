package errors

import (
	"errors"
	"fmt"
)

// DriverErrorCode classifies a hardware failure reported by a driver.
type DriverErrorCode string

const (
	DriverErrorDisconnected DriverErrorCode = "disconnected"
	DriverErrorTimeout      DriverErrorCode = "timeout"
	DriverErrorBusy         DriverErrorCode = "busy"
	DriverErrorJammed       DriverErrorCode = "jammed"
	DriverErrorNoPaper      DriverErrorCode = "no_paper"
	DriverErrorHardware     DriverErrorCode = "hardware"
)

// DriverError indicates a hardware call failed.
type DriverError struct {
	Op   string
	Code DriverErrorCode
	Err  error
}

func NewDriverError(op string, code DriverErrorCode, err error) *DriverError {
	return &DriverError{Op: op, Code: code, Err: err}
}

func (e *DriverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("driver %s failed (%s): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("driver %s failed (%s)", e.Op, e.Code)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// IsDriverError checks if the error is a DriverError.
func IsDriverError(err error) bool {
	var e *DriverError
	return errors.As(err, &e)
}

// DriverErrorCodeOf returns the code of the first DriverError in the chain,
// or DriverErrorHardware when err is not a DriverError.
func DriverErrorCodeOf(err error) DriverErrorCode {
	var e *DriverError
	if errors.As(err, &e) {
		return e.Code
	}
	return DriverErrorHardware
}

// CommandRejectedError indicates an operator command is not valid in the current state.
type CommandRejectedError struct {
	Command string
	Status  string
}

func NewCommandRejectedError(command, status string) *CommandRejectedError {
	return &CommandRejectedError{Command: command, Status: status}
}

func (e *CommandRejectedError) Error() string {
	return fmt.Sprintf("command %q rejected in status %q", e.Command, e.Status)
}

func IsCommandRejectedError(err error) bool {
	var e *CommandRejectedError
	return errors.As(err, &e)
}

// MachineNotRunningError indicates the paper handler loop is not running.
type MachineNotRunningError struct{}

func NewMachineNotRunningError() *MachineNotRunningError {
	return &MachineNotRunningError{}
}

func (e *MachineNotRunningError) Error() string {
	return "paper handler is not running"
}

func IsMachineNotRunningError(err error) bool {
	var e *MachineNotRunningError
	return errors.As(err, &e)
}

// MachineAlreadyRunningError indicates an attempt to start the paper handler twice.
type MachineAlreadyRunningError struct{}

func NewMachineAlreadyRunningError() *MachineAlreadyRunningError {
	return &MachineAlreadyRunningError{}
}

func (e *MachineAlreadyRunningError) Error() string {
	return "paper handler already running"
}

func IsMachineAlreadyRunningError(err error) bool {
	var e *MachineAlreadyRunningError
	return errors.As(err, &e)
}

// ResourceNotFoundError indicates a resource was not found.
type ResourceNotFoundError struct {
	Kind string
	ID   string
}

func NewResourceNotFoundError(kind, id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: kind, ID: id}
}

func NewSheetNotFoundError(id string) *ResourceNotFoundError {
	return NewResourceNotFoundError("sheet", id)
}

func (e *ResourceNotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

// InterpretationError indicates the interpreter could not produce a result for a sheet.
type InterpretationError struct {
	msg string
}

func NewInterpretationError(format string, args ...any) *InterpretationError {
	return &InterpretationError{msg: fmt.Sprintf(format, args...)}
}

func (e *InterpretationError) Error() string {
	return "interpretation failed: " + e.msg
}

func IsInterpretationError(err error) bool {
	var e *InterpretationError
	return errors.As(err, &e)
}
