package machine

import (
	"fmt"

	"github.com/votingworks/paper-handler/internal/models"
)

// Workflow selects what happens to a loaded sheet.
type Workflow string

const (
	// WorkflowScan scans sheets inserted by the voter.
	WorkflowScan Workflow = "scan"
	// WorkflowPrint prints a ballot on a blank sheet, then scans it.
	WorkflowPrint Workflow = "print"
)

func ParseWorkflow(s string) (Workflow, error) {
	switch s {
	case "scan":
		return WorkflowScan, nil
	case "print":
		return WorkflowPrint, nil
	default:
		return "", fmt.Errorf("invalid workflow: %s", s)
	}
}

// AcceptPolicy selects what happens to a valid ballot.
type AcceptPolicy string

const (
	// AcceptPolicyReview presents every ballot and waits for accept or reject.
	AcceptPolicyReview AcceptPolicy = "review"
	// AcceptPolicyAuto drops valid ballots into the box. Ballots with overvotes are
	// still presented.
	AcceptPolicyAuto AcceptPolicy = "auto"
)

func ParseAcceptPolicy(s string) (AcceptPolicy, error) {
	switch s {
	case "review":
		return AcceptPolicyReview, nil
	case "auto":
		return AcceptPolicyAuto, nil
	default:
		return "", fmt.Errorf("invalid accept policy: %s", s)
	}
}

const (
	DefaultMaxInterpretationRetries = 2
	DefaultMaxPrintAttempts         = 3
)

// Policy holds everything Transition needs besides the state and the event.
type Policy struct {
	Workflow     Workflow
	AcceptPolicy AcceptPolicy
	// MaxInterpretationRetries is the number of rescans of an unreadable sheet.
	// The next unreadable result escalates to an operator.
	MaxInterpretationRetries int
	// MaxPrintAttempts bounds the print attempts of one ballot.
	MaxPrintAttempts int
	Delays           models.Delays
}

func DefaultPolicy() Policy {
	return Policy{
		Workflow:                 WorkflowScan,
		AcceptPolicy:             AcceptPolicyReview,
		MaxInterpretationRetries: DefaultMaxInterpretationRetries,
		MaxPrintAttempts:         DefaultMaxPrintAttempts,
		Delays:                   models.DefaultDelays(),
	}
}

func (p Policy) Validate() error {
	if _, err := ParseWorkflow(string(p.Workflow)); err != nil {
		return err
	}
	if _, err := ParseAcceptPolicy(string(p.AcceptPolicy)); err != nil {
		return err
	}
	if p.MaxInterpretationRetries < 0 {
		return fmt.Errorf("max interpretation retries must not be negative, got %d", p.MaxInterpretationRetries)
	}
	if p.MaxPrintAttempts < 1 {
		return fmt.Errorf("max print attempts must be at least 1, got %d", p.MaxPrintAttempts)
	}
	return p.Delays.Validate()
}
