package services_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/votingworks/paper-handler/internal/audit"
	"github.com/votingworks/paper-handler/internal/machine"
	"github.com/votingworks/paper-handler/internal/models"
	"github.com/votingworks/paper-handler/internal/services"
	"github.com/votingworks/paper-handler/pkg/driver"
	srvErrors "github.com/votingworks/paper-handler/pkg/errors"
	"github.com/votingworks/paper-handler/pkg/scheduler"
)

func testPolicy() machine.Policy {
	p := machine.DefaultPolicy()
	p.Delays = models.Delays{
		Reconnect:              30 * time.Millisecond,
		AcceptedReady:          20 * time.Millisecond,
		AcceptedResetToNoPaper: 20 * time.Millisecond,
		PollingInterval:        5 * time.Millisecond,
		EjectTimeout:           500 * time.Millisecond,
		PaperReloaded:          10 * time.Millisecond,
		DriverTimeout:          time.Second,
	}
	return p
}

var _ = Describe("PaperHandlerService", func() {
	var (
		ctx    context.Context
		policy machine.Policy
		drv    *driver.MockDriver
		interp *mockInterpreter
		ws     *mockWorkspace
		logger *mockAuditLogger
		sched  *scheduler.Scheduler
		srv    *services.PaperHandlerService
	)

	status := func() models.SimpleStatus {
		return srv.GetSimpleStatus()
	}

	start := func() {
		srv = services.NewPaperHandlerService(policy, drv, interp, ws, logger, sched)
		Expect(srv.Start(ctx)).To(Succeed())
		Eventually(status).Should(Equal(models.SimpleStatusNotAcceptingPaper))
	}

	BeforeEach(func() {
		ctx = context.Background()
		policy = testPolicy()
		drv = driver.NewMockDriver()
		interp = newMockInterpreter(pages(models.PageTypeBallot, models.PageTypeBallot))
		ws = &mockWorkspace{}
		logger = &mockAuditLogger{}
		sched = scheduler.NewScheduler(1)
	})

	AfterEach(func() {
		if srv != nil {
			srv.Stop()
		}
		sched.Close()
	})

	Describe("Start", func() {
		It("should report no hardware before it is started", func() {
			srv = services.NewPaperHandlerService(policy, drv, interp, ws, logger, sched)

			Expect(status()).To(Equal(models.SimpleStatusNoHardware))
			Expect(srv.IsRunning()).To(BeFalse())
		})

		It("should connect and stop accepting paper", func() {
			start()

			Expect(drv.IsConnected()).To(BeTrue())
			Expect(srv.IsRunning()).To(BeTrue())
			Expect(srv.BatchID()).NotTo(BeEmpty())
			Expect(logger.Count(audit.EventHardwareConnected, models.DispositionSuccess)).To(Equal(1))
		})

		It("should return an error when already running", func() {
			start()

			err := srv.Start(ctx)

			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsMachineAlreadyRunningError(err)).To(BeTrue())
		})

		It("should keep reconnecting when the device is unreachable", func() {
			unreachable := srvErrors.NewDriverError("connect", srvErrors.DriverErrorDisconnected, errors.New("no such device"))
			for range 3 {
				drv.FailNext(driver.OpConnect, unreachable)
			}

			srv = services.NewPaperHandlerService(policy, drv, interp, ws, logger, sched)
			Expect(srv.Start(ctx)).To(Succeed())

			Expect(srv.GetStatus().SimpleStatus).To(Equal(models.SimpleStatusNoHardware))
			Expect(srv.GetStatus().Reason).To(ContainSubstring("no such device"))

			Eventually(status).Should(Equal(models.SimpleStatusNotAcceptingPaper))
			Expect(drv.CallCount(driver.OpConnect)).To(Equal(4))
		})
	})

	Describe("Stop", func() {
		It("should disconnect the device and refuse further commands", func() {
			start()

			srv.Stop()

			Expect(drv.IsConnected()).To(BeFalse())
			Expect(status()).To(Equal(models.SimpleStatusNoHardware))
			err := srv.EnableScanning(ctx)
			Expect(srvErrors.IsMachineNotRunningError(err)).To(BeTrue())
		})

		It("should be restartable with a new batch", func() {
			start()
			first := srv.BatchID()
			srv.Stop()

			Expect(srv.Start(ctx)).To(Succeed())
			Eventually(status).Should(Equal(models.SimpleStatusNotAcceptingPaper))
			Expect(srv.BatchID()).NotTo(Equal(first))
		})
	})

	Describe("commands", func() {
		It("should reject commands before start", func() {
			srv = services.NewPaperHandlerService(policy, drv, interp, ws, logger, sched)

			err := srv.AcceptBallot(ctx)

			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsMachineNotRunningError(err)).To(BeTrue())
		})

		// Given a machine that is not accepting paper
		// When the operator accepts a ballot
		// Then the command is rejected and the state does not change
		It("should reject accept while not accepting paper", func() {
			start()

			err := srv.AcceptBallot(ctx)

			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsCommandRejectedError(err)).To(BeTrue())
			var rejected *srvErrors.CommandRejectedError
			Expect(errors.As(err, &rejected)).To(BeTrue())
			Expect(rejected.Command).To(Equal(string(machine.CommandAcceptBallot)))
			Expect(rejected.Status).To(Equal(string(models.SimpleStatusNotAcceptingPaper)))
			Expect(status()).To(Equal(models.SimpleStatusNotAcceptingPaper))
			Expect(logger.Count(audit.EventScannerCommand, models.DispositionFailure)).To(Equal(1))
		})

		It("should toggle scanning", func() {
			start()

			Expect(srv.EnableScanning(ctx)).To(Succeed())
			Expect(status()).To(Equal(models.SimpleStatusAcceptingPaper))

			Expect(srv.DisableScanning(ctx)).To(Succeed())
			Expect(status()).To(Equal(models.SimpleStatusNotAcceptingPaper))
		})
	})

	Describe("scan workflow", func() {
		BeforeEach(func() {
			start()
			Expect(srv.EnableScanning(ctx)).To(Succeed())
		})

		// Given a machine accepting paper
		// When a valid ballot is inserted, presented and accepted
		// Then exactly one sheet is recorded and the machine accepts paper again
		It("should accept and record a valid ballot", func() {
			// Arrange
			images := models.SheetImages{FrontPath: "/images/a-front.jpg", BackPath: "/images/a-back.jpg"}
			drv.QueueScanImages(images)

			// Act
			drv.InsertSheet()
			Eventually(status).Should(Equal(models.SimpleStatusPresentingBallot))
			Expect(srv.AcceptBallot(ctx)).To(Succeed())

			// Assert
			Eventually(ws.Sheets).Should(HaveLen(1))
			Eventually(status).Should(Equal(models.SimpleStatusAcceptingPaper))

			sheet := ws.Sheets()[0]
			Expect(sheet.ID).NotTo(BeEmpty())
			Expect(sheet.BatchID).To(Equal(srv.BatchID()))
			Expect(sheet.FrontImagePath).To(Equal(images.FrontPath))
			Expect(sheet.BackImagePath).To(Equal(images.BackPath))
			Expect(sheet.FrontInterpretation.Type).To(Equal(models.PageTypeBallot))
			Expect(sheet.BackInterpretation.Type).To(Equal(models.PageTypeBallot))

			Expect(ws.Statuses()).To(ContainElements(
				models.SimpleStatusScanning,
				models.SimpleStatusPresentingBallot,
				models.SimpleStatusEjectingToRear,
				models.SimpleStatusResettingStateMachineAfterSuccess,
			))
			Expect(logger.Count(audit.EventSheetAccepted, models.DispositionSuccess)).To(Equal(1))
			Expect(drv.Overlaps()).To(BeZero())
		})

		It("should accept valid ballots without review when the policy is auto", func() {
			srv.Stop()
			policy.AcceptPolicy = machine.AcceptPolicyAuto
			start()
			Expect(srv.EnableScanning(ctx)).To(Succeed())

			drv.InsertSheet()

			Eventually(ws.Sheets).Should(HaveLen(1))
			Eventually(status).Should(Equal(models.SimpleStatusAcceptingPaper))
			Expect(ws.Statuses()).NotTo(ContainElement(models.SimpleStatusPresentingBallot))
		})

		It("should never record a rejected ballot", func() {
			drv.InsertSheet()
			Eventually(status).Should(Equal(models.SimpleStatusPresentingBallot))

			Expect(srv.RejectBallot(ctx)).To(Succeed())
			Expect(status()).To(Equal(models.SimpleStatusWaitingForInvalidatedBallotConfirmation))
			Expect(srv.GetStatus().Reason).To(Equal(machine.ReasonRejected))

			Expect(srv.ConfirmInvalidatedBallot(ctx)).To(Succeed())
			Eventually(status).Should(Equal(models.SimpleStatusEjectingToFront))

			drv.RemoveSheet()
			Eventually(status).Should(Equal(models.SimpleStatusAcceptingPaper))
			Expect(ws.Sheets()).To(BeEmpty())
			Expect(ws.AddCalls()).To(BeZero())
		})

		It("should escalate after the bounded number of unreadable scans", func() {
			interp.SetFallback(pages(models.PageTypeUnreadable, models.PageTypeUnreadable))

			drv.InsertSheet()

			Eventually(status).Should(Equal(models.SimpleStatusWaitingForInvalidatedBallotConfirmation))
			Expect(srv.GetStatus().Reason).To(Equal(machine.ReasonUnreadable))
			Expect(drv.CallCount(driver.OpScan)).To(Equal(policy.MaxInterpretationRetries + 1))
			Expect(interp.Calls()).To(Equal(policy.MaxInterpretationRetries + 1))
		})

		It("should wait for the operator after a blank page, then reload", func() {
			interp.Queue(pages(models.PageTypeBlank, models.PageTypeBlank))

			drv.InsertSheet()
			Eventually(status).Should(Equal(models.SimpleStatusBlankPageInterpretation))
			Consistently(status, 100*time.Millisecond).Should(Equal(models.SimpleStatusBlankPageInterpretation))

			Expect(srv.ReloadPaper(ctx)).To(Succeed())
			drv.RemoveSheet()
			Eventually(status).Should(Equal(models.SimpleStatusAcceptingPaper))

			drv.InsertSheet()
			Eventually(status).Should(Equal(models.SimpleStatusPresentingBallot))
			Expect(ws.Statuses()).To(ContainElement(models.SimpleStatusPaperReloaded))
		})

		It("should keep the state when recording a sheet fails", func() {
			ws.addErr = errors.New("disk full")

			drv.InsertSheet()
			Eventually(status).Should(Equal(models.SimpleStatusPresentingBallot))
			Expect(srv.AcceptBallot(ctx)).To(Succeed())

			Eventually(status).Should(Equal(models.SimpleStatusAcceptingPaper))
			Expect(ws.AddCalls()).To(Equal(3))
			Expect(logger.Count(audit.EventSheetRecordFailed, models.DispositionFailure)).To(Equal(1))
		})
	})

	Describe("jams", func() {
		BeforeEach(func() {
			start()
			Expect(srv.EnableScanning(ctx)).To(Succeed())
		})

		// Given a sheet being scanned
		// When the driver reports a jam
		// Then the machine is jammed until cleared and passes through jam cleared
		It("should recover from a jam during scan through clear jam", func() {
			drv.FailNext(driver.OpScan, srvErrors.NewDriverError("scan", srvErrors.DriverErrorJammed, nil))

			drv.InsertSheet()
			Eventually(status).Should(Equal(models.SimpleStatusJammed))

			err := srv.AcceptBallot(ctx)
			Expect(srvErrors.IsCommandRejectedError(err)).To(BeTrue())
			Consistently(status, 50*time.Millisecond).Should(Equal(models.SimpleStatusJammed))

			drv.RemoveSheet()
			Expect(srv.ClearJam(ctx)).To(Succeed())
			Expect(status()).To(Equal(models.SimpleStatusResettingStateMachineAfterJam))

			Eventually(status).Should(Equal(models.SimpleStatusNotAcceptingPaper))

			statuses := ws.Statuses()
			Expect(statuses).To(ContainElements(
				models.SimpleStatusJammed,
				models.SimpleStatusResettingStateMachineAfterJam,
				models.SimpleStatusJamCleared,
			))
			Expect(drv.CallCount(driver.OpDisconnect)).To(Equal(1))
		})

		It("should jam when the sensors report a jam", func() {
			drv.SetJammed(true)

			Eventually(status).Should(Equal(models.SimpleStatusJammed))
			Expect(srv.GetStatus().Reason).To(Equal(machine.ReasonPaperJam))
		})

		It("should surface repeated print failures as a jam", func() {
			srv.Stop()
			policy.Workflow = machine.WorkflowPrint
			start()
			Expect(srv.EnableScanning(ctx)).To(Succeed())
			for range policy.MaxPrintAttempts {
				drv.FailNext(driver.OpPrint, srvErrors.NewDriverError("print", srvErrors.DriverErrorHardware, errors.New("out of toner")))
			}

			drv.InsertSheet()
			Eventually(status).Should(Equal(models.SimpleStatusWaitingForBallotData))
			Expect(srv.PrintBallot(ctx, []byte("%PDF-1.7"))).To(Succeed())

			Expect(status()).To(Equal(models.SimpleStatusJammed))
			Expect(srv.GetStatus().Reason).To(Equal(machine.ReasonPrintFailed))
			Expect(drv.CallCount(driver.OpPrint)).To(Equal(policy.MaxPrintAttempts))
		})
	})

	Describe("print workflow", func() {
		BeforeEach(func() {
			policy.Workflow = machine.WorkflowPrint
			start()
			Expect(srv.EnableScanning(ctx)).To(Succeed())
		})

		It("should print, verify and accept a ballot", func() {
			pdf := []byte("%PDF-1.7 ballot")

			drv.InsertSheet()
			Eventually(status).Should(Equal(models.SimpleStatusWaitingForBallotData))

			Expect(srv.PrintBallot(ctx, pdf)).To(Succeed())
			Eventually(status).Should(Equal(models.SimpleStatusPresentingBallot))
			Expect(drv.Printed()).To(Equal([][]byte{pdf}))

			Expect(srv.AcceptBallot(ctx)).To(Succeed())
			Eventually(ws.Sheets).Should(HaveLen(1))
			Eventually(status).Should(Equal(models.SimpleStatusNotAcceptingPaper))
		})
	})

	Describe("interpretation", func() {
		// Given an interpreter that never returns
		// When a sheet is inserted
		// Then each attempt times out and the ballot ends up invalidated as unreadable
		It("should bound a hung interpreter by the driver timeout", func() {
			// Arrange
			policy.Delays.DriverTimeout = 50 * time.Millisecond
			hung := &hungInterpreter{release: make(chan struct{})}
			DeferCleanup(func() { close(hung.release) })
			srv = services.NewPaperHandlerService(policy, drv, hung, ws, logger, sched)
			Expect(srv.Start(ctx)).To(Succeed())
			Eventually(status).Should(Equal(models.SimpleStatusNotAcceptingPaper))
			Expect(srv.EnableScanning(ctx)).To(Succeed())

			// Act
			drv.InsertSheet()

			// Assert
			Eventually(status, 2*time.Second).Should(Equal(models.SimpleStatusWaitingForInvalidatedBallotConfirmation))
			Expect(srv.GetStatus().Reason).To(Equal(machine.ReasonUnreadable))
			Eventually(hung.Calls).Should(Equal(policy.MaxInterpretationRetries + 1))
			Expect(ws.Sheets()).To(BeEmpty())
		})
	})

	Describe("file driver", func() {
		// Given two sheets dropped into the inbox at once
		// When each presented ballot is accepted
		// Then both are recorded even though the second waits at the front slot
		It("should record a ballot while the next sheet waits at the front slot", func() {
			// Arrange
			fs := afero.NewMemMapFs()
			for _, name := range []string{"a-front.png", "a-back.png", "b-front.png", "b-back.png"} {
				Expect(afero.WriteFile(fs, filepath.Join("/inbox", name), []byte(name), 0o644)).To(Succeed())
			}
			fileDriver := driver.NewFileDriver(fs, "/inbox", "/images")
			srv = services.NewPaperHandlerService(policy, fileDriver, interp, ws, logger, sched)
			Expect(srv.Start(ctx)).To(Succeed())
			Eventually(status).Should(Equal(models.SimpleStatusNotAcceptingPaper))
			Expect(srv.EnableScanning(ctx)).To(Succeed())

			// Act
			Eventually(status).Should(Equal(models.SimpleStatusPresentingBallot))
			Expect(srv.AcceptBallot(ctx)).To(Succeed())
			Eventually(ws.Sheets).Should(HaveLen(1))

			Eventually(status).Should(Equal(models.SimpleStatusPresentingBallot))
			Expect(srv.AcceptBallot(ctx)).To(Succeed())

			// Assert
			Eventually(ws.Sheets).Should(HaveLen(2))
			Eventually(status).Should(Equal(models.SimpleStatusAcceptingPaper))
			Expect(ws.Statuses()).NotTo(ContainElement(models.SimpleStatusJammed))
			for _, name := range []string{"a-front.png", "b-back.png"} {
				ok, err := afero.Exists(fs, filepath.Join("/inbox", "accepted", name))
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
			}
		})
	})

	Describe("hardware loss", func() {
		It("should reconnect after a failed poll", func() {
			start()
			drv.FailNext(driver.OpGetPaperStatus, srvErrors.NewDriverError("get_paper_status", srvErrors.DriverErrorDisconnected, nil))

			Eventually(ws.Statuses).Should(ContainElement(models.SimpleStatusNoHardware))
			Eventually(status).Should(Equal(models.SimpleStatusNotAcceptingPaper))
			Expect(logger.Count(audit.EventHardwareDisconnected, models.DispositionFailure)).To(Equal(1))
		})
	})

	Describe("concurrency", func() {
		// Given a slow driver
		// When operators send commands while the machine polls and scans
		// Then no driver call overlaps another
		It("should never overlap driver calls", func() {
			drv = drv.WithCallDelay(2 * time.Millisecond)
			start()

			var wg sync.WaitGroup
			for range 4 {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					for range 10 {
						_ = srv.EnableScanning(ctx)
						_ = srv.AcceptBallot(ctx)
						_ = srv.DisableScanning(ctx)
						_ = srv.EnableScanning(ctx)
					}
				}()
			}
			drv.InsertSheet()
			wg.Wait()

			Eventually(func() int { return drv.CallCount(driver.OpGetPaperStatus) }).Should(BeNumerically(">", 5))
			Expect(drv.Overlaps()).To(BeZero())
		})
	})
})
