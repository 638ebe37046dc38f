package scheduler_test

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/votingworks/paper-handler/pkg/scheduler"
)

var _ = Describe("Scheduler", func() {
	var s *scheduler.Scheduler

	AfterEach(func() {
		if s != nil {
			s.Close()
		}
	})

	Context("AddWork", func() {
		// Given a scheduler with one worker
		// When we add a hardware call
		// Then the future should eventually receive its result
		It("should resolve the future with the work result", func() {
			// Arrange
			s = scheduler.NewScheduler(1)

			// Act
			future := s.AddWork(func(ctx context.Context) (any, error) {
				return "scanned", nil
			})

			// Assert
			var result scheduler.Result[any]
			Eventually(future.C(), 2*time.Second).Should(Receive(&result))
			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Data).To(Equal("scanned"))
		})

		// Given a scheduler that runs one call per poll
		// When a call has returned its result
		// Then its context should already be released
		It("should cancel the work context once the result is delivered", func() {
			// Arrange
			s = scheduler.NewScheduler(1)
			var workCtx context.Context

			// Act
			future := s.AddWork(func(ctx context.Context) (any, error) {
				workCtx = ctx
				return nil, nil
			})
			var result scheduler.Result[any]
			Eventually(future.C(), 2*time.Second).Should(Receive(&result))

			// Assert
			Expect(result.Err).NotTo(HaveOccurred())
			Expect(workCtx).NotTo(BeNil())
			Expect(workCtx.Err()).To(MatchError(context.Canceled))
		})
	})

	Context("Single worker", func() {
		// Given a scheduler with one worker
		// When many calls are submitted concurrently
		// Then no two calls should ever run at the same time
		It("should never run two work items concurrently", func() {
			// Arrange
			s = scheduler.NewScheduler(1)
			var inFlight, maxInFlight atomic.Int32
			futures := make([]*scheduler.Future, 0, 20)

			// Act
			for range 20 {
				futures = append(futures, s.AddWork(func(ctx context.Context) (any, error) {
					n := inFlight.Add(1)
					for {
						m := maxInFlight.Load()
						if n <= m || maxInFlight.CompareAndSwap(m, n) {
							break
						}
					}
					time.Sleep(2 * time.Millisecond)
					inFlight.Add(-1)
					return nil, nil
				}))
			}

			// Assert
			for _, f := range futures {
				Eventually(f.C(), 2*time.Second).Should(Receive())
			}
			Expect(maxInFlight.Load()).To(Equal(int32(1)))
		})

		// Given a busy worker
		// When several items are queued behind it
		// Then they should run in submission order
		It("should execute work in FIFO order", func() {
			// Arrange
			s = scheduler.NewScheduler(1)
			blocker := make(chan struct{})
			s.AddWork(func(ctx context.Context) (any, error) {
				<-blocker
				return nil, nil
			})

			order := make(chan int, 3)
			for i := 1; i <= 3; i++ {
				idx := i
				s.AddWork(func(ctx context.Context) (any, error) {
					order <- idx
					return nil, nil
				})
			}

			// Act
			close(blocker)

			// Assert
			var results []int
			for range 3 {
				var v int
				Eventually(order, 2*time.Second).Should(Receive(&v))
				results = append(results, v)
			}
			Expect(results).To(Equal([]int{1, 2, 3}))
		})
	})

	Context("Cancel work", func() {
		// Given a running work item
		// When we call future.Stop()
		// Then the work context should be cancelled
		It("should cancel work via future.Stop()", func() {
			// Arrange
			s = scheduler.NewScheduler(1)
			cancelled := make(chan bool, 1)
			started := make(chan struct{})
			future := s.AddWork(func(ctx context.Context) (any, error) {
				close(started)
				<-ctx.Done()
				cancelled <- true
				return nil, ctx.Err()
			})
			Eventually(started, time.Second).Should(BeClosed())

			// Act
			future.Stop()

			// Assert
			Eventually(cancelled, 2*time.Second).Should(Receive(BeTrue()))
			var result scheduler.Result[any]
			Eventually(future.C(), time.Second).Should(Receive(&result))
			Expect(result.Err).To(MatchError(context.Canceled))
		})

		// Given a closed scheduler
		// When we try to add work
		// Then the future should resolve with context.Canceled
		It("should return canceled when AddWork is called after Close", func() {
			// Arrange
			s = scheduler.NewScheduler(1)
			s.Close()

			// Act
			future := s.AddWork(func(ctx context.Context) (any, error) {
				return "done", nil
			})

			// Assert
			var result scheduler.Result[any]
			Eventually(future.C(), time.Second).Should(Receive(&result))
			Expect(result.Err).To(MatchError(context.Canceled))
		})

		// Given work in flight
		// When we call Close
		// Then Close should wait until the in-flight call returns
		It("should wait for in-flight work to finish on Close", func() {
			// Arrange
			s = scheduler.NewScheduler(1)
			started := make(chan struct{})
			unblock := make(chan struct{})
			s.AddWork(func(ctx context.Context) (any, error) {
				close(started)
				<-unblock
				return nil, nil
			})
			Eventually(started, time.Second).Should(BeClosed())

			// Act
			closeDone := make(chan struct{})
			go func() {
				s.Close()
				close(closeDone)
			}()

			// Assert
			Consistently(closeDone, 100*time.Millisecond).ShouldNot(BeClosed())
			close(unblock)
			Eventually(closeDone, time.Second).Should(BeClosed())
			s = nil
		})
	})

	Context("Panic recovery", func() {
		// Given a work function that panics
		// When the scheduler executes it
		// Then the future should receive an error and later work should still run
		It("should recover from panics and keep working", func() {
			// Arrange
			s = scheduler.NewScheduler(1)

			// Act
			future := s.AddWork(func(ctx context.Context) (any, error) {
				panic("driver exploded")
			})
			var result scheduler.Result[any]
			Eventually(future.C(), 2*time.Second).Should(Receive(&result))

			future2 := s.AddWork(func(ctx context.Context) (any, error) {
				return "recovered", nil
			})

			// Assert
			Expect(result.Err).To(MatchError(ContainSubstring("worker panicked")))
			var result2 scheduler.Result[any]
			Eventually(future2.C(), 2*time.Second).Should(Receive(&result2))
			Expect(result2.Data).To(Equal("recovered"))
		})
	})
})
