package scheduler

import (
	"context"
	"fmt"
	"sync"
)

type Work[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Data T
	Err  error
}

type workRequest struct {
	fn     Work[any]
	c      chan Result[any]
	ctx    context.Context
	cancel context.CancelFunc
}

type worker struct {
	done   chan any
	closed chan any
}

// Work runs r and releases its context before the result is delivered.
func (w worker) Work(r workRequest) {
	res := w.call(r)
	r.cancel()
	r.c <- res
	select {
	case w.done <- struct{}{}:
	case <-w.closed:
	}
}

func (w worker) call(r workRequest) (res Result[any]) {
	defer func() {
		if p := recover(); p != nil {
			res = Result[any]{Err: fmt.Errorf("worker panicked: %v", p)}
		}
	}()
	v, err := r.fn(r.ctx)
	return Result[any]{Data: v, Err: err}
}

func newWorker(done, closed chan any) worker {
	return worker{done: done, closed: closed}
}

// Scheduler runs work on a fixed pool of workers. Pending work is dispatched in
// submission order, so a scheduler with a single worker serializes every call.
type Scheduler struct {
	workers    *queue[worker]
	workQueue  *queue[workRequest]
	close      chan any
	closed     chan any
	done       chan any
	work       chan workRequest
	running    sync.WaitGroup
	closeOnce  sync.Once
	mainCtx    context.Context
	mainCancel context.CancelFunc
}

func NewScheduler(nbWorkers int) *Scheduler {
	done := make(chan any)
	closed := make(chan any)
	wq := &queue[worker]{}
	for range nbWorkers {
		wq.Push(newWorker(done, closed))
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		workers:    wq,
		workQueue:  &queue[workRequest]{},
		close:      make(chan any),
		closed:     closed,
		done:       done,
		work:       make(chan workRequest),
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	go s.run()
	return s
}

// AddWork queues w and returns a future resolved with its result.
// Work added after Close resolves immediately with context.Canceled.
func (s *Scheduler) AddWork(w Work[any]) *Future {
	c := make(chan Result[any], 1)
	ctx, cancel := context.WithCancel(s.mainCtx)

	select {
	case s.work <- workRequest{fn: w, c: c, ctx: ctx, cancel: cancel}:
	case <-s.closed:
		cancel()
		c <- Result[any]{Err: context.Canceled}
	}

	return newFuture(c, cancel)
}

// Close cancels all work and waits for running workers to return.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		s.mainCancel()
		s.close <- struct{}{}
		<-s.closed
		s.running.Wait()
	})
}

func (s *Scheduler) run() {
	defer close(s.closed)
	for {
		select {
		case w := <-s.work:
			s.workQueue.Push(w)
			if s.workers.Len() == 0 {
				continue
			}
			s.dispatch(s.workQueue.Pop())
		case <-s.done:
			s.workers.Push(newWorker(s.done, s.closed))

			if s.workQueue.Len() == 0 {
				continue
			}
			s.dispatch(s.workQueue.Pop())
		case <-s.close:
			for s.workQueue.Len() > 0 {
				r := s.workQueue.Pop()
				r.cancel()
				r.c <- Result[any]{Err: context.Canceled}
			}
			return
		}
	}
}

func (s *Scheduler) dispatch(r workRequest) {
	worker := s.workers.Pop()
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		worker.Work(r)
	}()
}
