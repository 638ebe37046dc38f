package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/votingworks/paper-handler/internal/audit"
	"github.com/votingworks/paper-handler/internal/machine"
	"github.com/votingworks/paper-handler/internal/models"
	"github.com/votingworks/paper-handler/pkg/driver"
	srvErrors "github.com/votingworks/paper-handler/pkg/errors"
	"github.com/votingworks/paper-handler/pkg/interpreter"
	"github.com/votingworks/paper-handler/pkg/scheduler"
)

const (
	// connectAttempts bounds the connect calls of one reconnect round.
	connectAttempts = 3
	// recordAttempts bounds the writes of one accepted sheet.
	recordAttempts = 3
)

// Workspace stores what the paper handler produces. It is append-only.
type Workspace interface {
	AddSheet(ctx context.Context, sheet models.AcceptedSheet) error
	RecordEvent(ctx context.Context, event models.ScannerEvent) error
}

type commandRequest struct {
	kind  machine.CommandKind
	pdf   []byte
	reply chan error
}

// PaperHandlerService owns the paper handler driver and runs its state machine.
//
// A single goroutine polls the driver, applies events to the state machine and
// executes the resulting actions. Driver calls go through a scheduler and never
// overlap. Operator commands are queued and applied between transitions.
type PaperHandlerService struct {
	policy    machine.Policy
	driver    driver.Driver
	interp    interpreter.Interpreter
	workspace Workspace
	audit     audit.Logger
	scheduler *scheduler.Scheduler
	log       *zap.SugaredLogger

	mu       sync.Mutex
	state    machine.State
	status   models.Status
	batchID  string
	commands chan commandRequest
	done     chan any
	cancel   context.CancelFunc
}

func NewPaperHandlerService(policy machine.Policy, d driver.Driver, interp interpreter.Interpreter, w Workspace, logger audit.Logger, s *scheduler.Scheduler) *PaperHandlerService {
	state := machine.Disconnected{}
	return &PaperHandlerService{
		policy:    policy,
		driver:    d,
		interp:    interp,
		workspace: w,
		audit:     logger,
		scheduler: s,
		log:       zap.S().Named("paper_handler"),
		state:     state,
		status:    machine.StatusOf(state, time.Now()),
	}
}

// GetStatus returns the current status.
func (p *PaperHandlerService) GetStatus() models.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *PaperHandlerService) GetSimpleStatus() models.SimpleStatus {
	return p.GetStatus().SimpleStatus
}

// BatchID returns the batch of the sheets accepted since the last Start.
func (p *PaperHandlerService) BatchID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.batchID
}

// IsRunning reports whether the polling loop is running.
func (p *PaperHandlerService) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil
}

// Start connects to the device and starts the polling loop. A device that cannot
// be reached is not an error: the machine stays disconnected and keeps trying.
func (p *PaperHandlerService) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.done != nil {
		p.mu.Unlock()
		return srvErrors.NewMachineAlreadyRunningError()
	}

	runCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan any)
	p.commands = make(chan commandRequest)
	p.batchID = uuid.NewString()
	p.state = machine.Disconnected{}
	done, commands, batchID := p.done, p.commands, p.batchID
	p.mu.Unlock()

	p.log.Infow("starting paper handler", "batch_id", batchID, "workflow", p.policy.Workflow, "accept_policy", p.policy.AcceptPolicy)
	p.audit.Log(ctx, audit.EventMachineStarted, audit.RoleSystem, audit.Entry{
		Disposition: models.DispositionSuccess,
		Message:     "paper handler started",
		Fields:      map[string]any{"batch_id": batchID},
	})

	// a zero Since lets the first tick connect right away
	p.apply(runCtx, machine.Tick{Now: time.Now()})

	go p.run(runCtx, done, commands)

	return nil
}

// Stop cancels the polling loop, waits for the in-flight driver call and
// disconnects the device.
func (p *PaperHandlerService) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	ctx, cancelDisconnect := context.WithTimeout(context.Background(), p.policy.Delays.DriverTimeout)
	defer cancelDisconnect()
	if _, err := p.call(ctx, func(ctx context.Context) (any, error) {
		return nil, p.driver.Disconnect(ctx)
	}); err != nil {
		p.log.Warnw("failed to disconnect driver", "error", err)
	}

	p.mu.Lock()
	p.cancel = nil
	p.done = nil
	p.commands = nil
	p.mu.Unlock()

	p.publish(ctx, machine.Disconnected{Since: time.Now()}, machine.Tick{Now: time.Now()})

	p.audit.Log(ctx, audit.EventMachineStopped, audit.RoleSystem, audit.Entry{
		Disposition: models.DispositionSuccess,
		Message:     "paper handler stopped",
	})
	p.log.Info("paper handler stopped")
}

func (p *PaperHandlerService) AcceptBallot(ctx context.Context) error {
	return p.command(ctx, machine.CommandAcceptBallot, nil)
}

func (p *PaperHandlerService) RejectBallot(ctx context.Context) error {
	return p.command(ctx, machine.CommandRejectBallot, nil)
}

func (p *PaperHandlerService) ClearJam(ctx context.Context) error {
	return p.command(ctx, machine.CommandClearJam, nil)
}

func (p *PaperHandlerService) EnableScanning(ctx context.Context) error {
	return p.command(ctx, machine.CommandEnableScanning, nil)
}

func (p *PaperHandlerService) DisableScanning(ctx context.Context) error {
	return p.command(ctx, machine.CommandDisableScanning, nil)
}

func (p *PaperHandlerService) ConfirmInvalidatedBallot(ctx context.Context) error {
	return p.command(ctx, machine.CommandConfirmInvalidatedBallot, nil)
}

func (p *PaperHandlerService) ReloadPaper(ctx context.Context) error {
	return p.command(ctx, machine.CommandReloadPaper, nil)
}

// PrintBallot prints pdf on the loaded sheet (print workflow).
func (p *PaperHandlerService) PrintBallot(ctx context.Context, pdf []byte) error {
	return p.command(ctx, machine.CommandPrintBallot, pdf)
}

// command hands a command to the loop and waits until it was applied.
func (p *PaperHandlerService) command(ctx context.Context, kind machine.CommandKind, pdf []byte) error {
	p.mu.Lock()
	commands, done := p.commands, p.done
	p.mu.Unlock()

	if commands == nil {
		return srvErrors.NewMachineNotRunningError()
	}

	req := commandRequest{kind: kind, pdf: pdf, reply: make(chan error, 1)}
	select {
	case commands <- req:
	case <-done:
		return srvErrors.NewMachineNotRunningError()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.reply:
		return err
	case <-done:
		return srvErrors.NewMachineNotRunningError()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *PaperHandlerService) run(ctx context.Context, done chan any, commands chan commandRequest) {
	defer close(done)

	ticker := time.NewTicker(p.policy.Delays.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-commands:
			err := p.apply(ctx, machine.Command{Now: time.Now(), Kind: req.kind, PDF: req.pdf})
			p.auditCommand(ctx, req.kind, err)
			req.reply <- err
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll reads the paper status, or only advances time while disconnected.
func (p *PaperHandlerService) poll(ctx context.Context) {
	if _, ok := p.currentState().(machine.Disconnected); ok {
		p.apply(ctx, machine.Tick{Now: time.Now()})
		return
	}

	data, err := p.call(ctx, func(ctx context.Context) (any, error) {
		return p.driver.GetPaperStatus(ctx)
	})
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.apply(ctx, machine.PollFailed{Now: time.Now(), Err: err})
		return
	}
	p.apply(ctx, machine.Poll{Now: time.Now(), Status: data.(models.ScannerStatus)})
}

// apply runs e and the events produced by its actions through the state machine.
// It returns the rejection of a command event, if any.
func (p *PaperHandlerService) apply(ctx context.Context, e machine.Event) error {
	var rejected error

	pending := []machine.Event{e}
	for len(pending) > 0 {
		event := pending[0]
		pending = pending[1:]

		next, actions := machine.Transition(p.policy, p.currentState(), event)
		p.publish(ctx, next, event)

		for _, action := range actions {
			if r, ok := action.(machine.RejectCommand); ok {
				rejected = srvErrors.NewCommandRejectedError(string(r.Command), string(p.GetSimpleStatus()))
				continue
			}

			result := p.execute(ctx, action)
			if ctx.Err() != nil {
				return rejected
			}
			if result != nil {
				pending = append(pending, result)
			}
		}
	}
	return rejected
}

// execute performs an action and returns its result as an event.
func (p *PaperHandlerService) execute(ctx context.Context, action machine.Action) machine.Event {
	p.log.Debugw("executing action", "action", machine.ActionName(action))

	switch a := action.(type) {
	case machine.Connect:
		if err := p.connect(ctx); err != nil {
			return machine.ConnectFailed{Now: time.Now(), Err: err}
		}
		return machine.Connected{Now: time.Now()}

	case machine.Move:
		_, err := p.call(ctx, func(ctx context.Context) (any, error) {
			return nil, p.driver.MoveTo(ctx, a.Position)
		})
		return machine.MoveCompleted{Now: time.Now(), Err: err}

	case machine.Scan:
		data, err := p.call(ctx, func(ctx context.Context) (any, error) {
			return p.driver.Scan(ctx)
		})
		if err != nil {
			return machine.ScanCompleted{Now: time.Now(), Err: err}
		}
		return machine.ScanCompleted{Now: time.Now(), Images: data.(models.SheetImages)}

	case machine.Interpret:
		result, err := p.interpret(ctx, a.Images)
		if err != nil {
			p.log.Warnw("interpretation failed", "front", a.Images.FrontPath, "error", err)
		}
		return machine.InterpretCompleted{Now: time.Now(), Result: result, Err: err}

	case machine.Eject:
		_, err := p.call(ctx, func(ctx context.Context) (any, error) {
			return nil, p.driver.Eject(ctx, a.Direction)
		})
		return machine.EjectCompleted{Now: time.Now(), Err: err}

	case machine.Print:
		_, err := p.call(ctx, func(ctx context.Context) (any, error) {
			return nil, p.driver.Print(ctx, a.PDF)
		})
		if err != nil {
			p.log.Warnw("print failed", "error", err)
		}
		return machine.PrintCompleted{Now: time.Now(), Err: err}

	case machine.RecordSheet:
		return machine.SheetRecorded{Now: time.Now(), Err: p.recordSheet(ctx, a.Sheet)}

	case machine.ResetHardware:
		if _, err := p.call(ctx, func(ctx context.Context) (any, error) {
			return nil, p.driver.Disconnect(ctx)
		}); err != nil {
			p.log.Warnw("failed to disconnect during reset", "error", err)
		}
		return machine.ResetCompleted{Now: time.Now(), Err: p.connect(ctx)}
	}

	return nil
}

// call runs fn on the scheduler, bounded by the driver timeout. When ctx is
// cancelled the call is aborted and awaited before returning.
// interpret bounds the interpreter by DriverTimeout, even when it ignores ctx.
func (p *PaperHandlerService) interpret(ctx context.Context, images models.SheetImages) (models.InterpretationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.policy.Delays.DriverTimeout)
	defer cancel()

	type outcome struct {
		result models.InterpretationResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := p.interp.Interpret(ctx, images)
		done <- outcome{result, err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return models.InterpretationResult{}, fmt.Errorf("interpreting %s: %w", images.FrontPath, ctx.Err())
	}
}

func (p *PaperHandlerService) call(ctx context.Context, fn scheduler.Work[any]) (any, error) {
	future := p.scheduler.AddWork(func(workCtx context.Context) (any, error) {
		callCtx, cancel := context.WithTimeout(workCtx, p.policy.Delays.DriverTimeout)
		defer cancel()
		return fn(callCtx)
	})

	select {
	case result := <-future.C():
		return result.Data, result.Err
	case <-ctx.Done():
		future.Stop()
		<-future.C()
		return nil, ctx.Err()
	}
}

// connect runs one reconnect round.
func (p *PaperHandlerService) connect(ctx context.Context) error {
	return retry.Do(
		func() error {
			_, err := p.call(ctx, func(ctx context.Context) (any, error) {
				return nil, p.driver.Connect(ctx)
			})
			return err
		},
		retry.Context(ctx),
		retry.Attempts(connectAttempts),
		retry.Delay(p.policy.Delays.PollingInterval),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled)
		}),
		retry.OnRetry(func(n uint, err error) {
			p.log.Debugw("connect failed, retrying", "attempt", n+1, "error", err)
		}),
	)
}

// recordSheet stores an accepted sheet, retrying transient store errors.
func (p *PaperHandlerService) recordSheet(ctx context.Context, sheet models.Sheet) error {
	accepted := models.AcceptedSheet{
		ID:                  uuid.NewString(),
		BatchID:             p.BatchID(),
		FrontImagePath:      sheet.Images.FrontPath,
		BackImagePath:       sheet.Images.BackPath,
		FrontInterpretation: sheet.Interpretation.Front,
		BackInterpretation:  sheet.Interpretation.Back,
		AcceptedAt:          time.Now(),
	}

	err := retry.Do(
		func() error {
			return p.workspace.AddSheet(ctx, accepted)
		},
		retry.Context(ctx),
		retry.Attempts(recordAttempts),
		retry.Delay(p.policy.Delays.PollingInterval),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.log.Warnw("failed to record sheet, retrying", "sheet_id", accepted.ID, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		p.log.Errorw("failed to record accepted sheet", "sheet_id", accepted.ID, "error", err)
		p.audit.Log(ctx, audit.EventSheetRecordFailed, audit.RoleSystem, audit.Entry{
			Disposition: models.DispositionFailure,
			Message:     "accepted sheet could not be recorded",
			Fields:      map[string]any{"sheet_id": accepted.ID, "error": err.Error()},
		})
		return fmt.Errorf("recording sheet %s: %w", accepted.ID, err)
	}

	p.log.Infow("sheet accepted", "sheet_id", accepted.ID, "batch_id", accepted.BatchID)
	p.audit.Log(ctx, audit.EventSheetAccepted, audit.RoleVoter, audit.Entry{
		Disposition: models.DispositionSuccess,
		Message:     "sheet accepted",
		Fields:      map[string]any{"sheet_id": accepted.ID, "batch_id": accepted.BatchID},
	})
	return nil
}

func (p *PaperHandlerService) currentState() machine.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
