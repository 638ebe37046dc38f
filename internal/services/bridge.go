package services

import (
	"context"
	"fmt"

	"github.com/votingworks/paper-handler/internal/audit"
	"github.com/votingworks/paper-handler/internal/machine"
	"github.com/votingworks/paper-handler/internal/models"
)

// publish stores the next state and reports status changes to the audit log and
// the workspace.
func (p *PaperHandlerService) publish(ctx context.Context, next machine.State, event machine.Event) {
	p.mu.Lock()
	prevState := p.state
	prev := p.status
	p.state = next

	status := machine.StatusOf(next, event.At())
	if status.SimpleStatus == prev.SimpleStatus {
		status.Since = prev.Since
	}
	p.status = status
	p.mu.Unlock()

	from, to := machine.Name(prevState), machine.Name(next)
	if from != to {
		p.log.Infow("state transition", "from", from, "event", machine.EventName(event), "to", to)
	} else {
		p.log.Debugw("state unchanged", "state", to, "event", machine.EventName(event))
	}

	if status.SimpleStatus == prev.SimpleStatus {
		return
	}

	disposition := dispositionOf(status.SimpleStatus)
	message := fmt.Sprintf("scanner status changed from %s to %s", prev.SimpleStatus, status.SimpleStatus)
	if status.Reason != "" {
		message += ": " + status.Reason
	}

	p.audit.Log(ctx, audit.EventScannerStateChanged, audit.RoleSystem, audit.Entry{
		Disposition: disposition,
		Message:     message,
		Fields: map[string]any{
			"previous_status": string(prev.SimpleStatus),
			"new_status":      string(status.SimpleStatus),
			"reason":          status.Reason,
		},
	})

	switch {
	case status.SimpleStatus == models.SimpleStatusNoHardware:
		p.audit.Log(ctx, audit.EventHardwareDisconnected, audit.RoleSystem, audit.Entry{
			Disposition: models.DispositionFailure,
			Message:     "paper handler hardware disconnected",
			Fields:      map[string]any{"reason": status.Reason},
		})
	case prev.SimpleStatus == models.SimpleStatusNoHardware:
		p.audit.Log(ctx, audit.EventHardwareConnected, audit.RoleSystem, audit.Entry{
			Disposition: models.DispositionSuccess,
			Message:     "paper handler hardware connected",
		})
	}

	err := p.workspace.RecordEvent(context.WithoutCancel(ctx), models.ScannerEvent{
		EventID:        string(audit.EventScannerStateChanged),
		User:           string(audit.RoleSystem),
		Disposition:    disposition,
		Message:        message,
		PreviousStatus: prev.SimpleStatus,
		NewStatus:      status.SimpleStatus,
		Timestamp:      status.Since,
	})
	if err != nil {
		p.log.Errorw("failed to record scanner event", "new_status", status.SimpleStatus, "error", err)
	}
}

func (p *PaperHandlerService) auditCommand(ctx context.Context, kind machine.CommandKind, err error) {
	entry := audit.Entry{
		Disposition: models.DispositionSuccess,
		Message:     fmt.Sprintf("operator command %s applied", kind),
		Fields:      map[string]any{"command": string(kind), "status": string(p.GetSimpleStatus())},
	}
	if err != nil {
		entry.Disposition = models.DispositionFailure
		entry.Message = fmt.Sprintf("operator command %s rejected", kind)
	}
	p.audit.Log(ctx, audit.EventScannerCommand, audit.RoleOperator, entry)
}

// dispositionOf tells whether entering a status means something went wrong.
func dispositionOf(s models.SimpleStatus) models.Disposition {
	switch s {
	case models.SimpleStatusJammed,
		models.SimpleStatusNoHardware,
		models.SimpleStatusWaitingForInvalidatedBallotConfirmation,
		models.SimpleStatusBlankPageInterpretation:
		return models.DispositionFailure
	default:
		return models.DispositionSuccess
	}
}
