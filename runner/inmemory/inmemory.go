//
// Tencent is pleased to support the open source community by making trpc-agui-runtime available.
//
// Copyright (C) 2025 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the trpc-agui-runtime source code from Tencent,
// please note that trpc-agui-runtime source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

// Package inmemory provides the default in-process runner. Runs execute on a
// worker pool inside the serving process; per-thread event history is kept in
// memory so reconnecting clients can replay it.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-agui-runtime/log"
	"trpc.group/trpc-go/trpc-agui-runtime/runner"
)

// stoppedRunMessage is the terminal error message emitted when a run is
// stopped through Stop rather than finishing on its own.
const stoppedRunMessage = "Run stopped by user"

// subscriber is one connected client bridged to a thread's live run.
type subscriber struct {
	ch   chan aguievents.Event
	done chan struct{}
}

// threadStore is the per-thread bookkeeping. All fields are guarded by the
// runner mutex; event sends happen outside the lock.
type threadStore struct {
	threadID string

	running       bool
	stopRequested bool
	cancel        context.CancelFunc
	runID         string

	// history holds the compacted events of completed runs, live the events
	// of the current run so far. Connect replays history+live before
	// bridging.
	history []aguievents.Event
	live    []aguievents.Event

	subs map[string]*subscriber
}

// Runner is the in-process runner.Runner implementation.
type Runner struct {
	mu      sync.Mutex
	threads map[string]*threadStore
	pool    *ants.Pool
}

var _ runner.Runner = (*Runner)(nil)

// New creates an in-process runner. The worker pool bounds the number of
// concurrently executing runs.
func New(opt ...Option) (*Runner, error) {
	opts := newOptions(opt...)
	pool, err := ants.NewPool(opts.poolSize)
	if err != nil {
		return nil, fmt.Errorf("inmemory: create worker pool: %w", err)
	}
	return &Runner{
		threads: make(map[string]*threadStore),
		pool:    pool,
	}, nil
}

// Close releases the worker pool. Pending runs finish; new runs fail.
func (r *Runner) Close() {
	r.pool.Release()
}

// Run executes the agent clone on the worker pool and returns its event
// stream. The run is detached from the caller's context: cancelling the HTTP
// request does not stop the run, only Stop does.
func (r *Runner) Run(ctx context.Context, req *runner.RunRequest) (<-chan aguievents.Event, error) {
	if req == nil || req.Agent == nil || req.Input == nil {
		return nil, errors.New("inmemory: run request is incomplete")
	}
	threadID := req.ThreadID
	if threadID == "" {
		threadID = req.Input.ThreadID
	}
	runID := req.Input.RunID

	out := make(chan aguievents.Event)

	r.mu.Lock()
	st := r.store(threadID)
	if st.running {
		r.mu.Unlock()
		go func() {
			out <- aguievents.NewRunErrorEvent("thread already running", aguievents.WithRunID(runID))
			close(out)
		}()
		return out, nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	st.running = true
	st.stopRequested = false
	st.runID = runID
	st.live = nil
	st.cancel = cancel
	r.mu.Unlock()

	if err := r.pool.Submit(func() { r.execute(runCtx, req, st, out) }); err != nil {
		go func() {
			r.emit(st, out, aguievents.NewRunErrorEvent(
				fmt.Sprintf("submit run: %v", err), aguievents.WithRunID(runID)))
			r.finalize(st, threadID, runID, out, true)
		}()
	}
	return out, nil
}

// execute drives one run to completion and finalizes the thread store.
func (r *Runner) execute(ctx context.Context, req *runner.RunRequest, st *threadStore, out chan aguievents.Event) {
	threadID := st.threadID
	runID := req.Input.RunID

	events, err := req.Agent.Run(ctx, req.Input)
	if err != nil {
		r.emit(st, out, aguievents.NewRunErrorEvent(
			fmt.Sprintf("run agent: %v", err), aguievents.WithRunID(runID)))
		r.finalize(st, threadID, runID, out, true)
		return
	}

	terminal := false
	for event := range events {
		r.emit(st, out, event)
		if isTerminal(event) {
			terminal = true
		}
	}
	r.finalize(st, threadID, runID, out, terminal)
}

// emit records the event and delivers it to the run stream and every
// connected subscriber. Each send is awaited before the next event is
// processed so a slow consumer exerts backpressure instead of forcing
// unbounded buffering.
func (r *Runner) emit(st *threadStore, out chan aguievents.Event, event aguievents.Event) {
	r.mu.Lock()
	st.live = append(st.live, event)
	subs := make([]*subscriber, 0, len(st.subs))
	for _, sub := range st.subs {
		subs = append(subs, sub)
	}
	r.mu.Unlock()

	out <- event
	for _, sub := range subs {
		select {
		case sub.ch <- event:
		case <-sub.done:
		}
	}
}

// finalize appends the terminal event when the agent did not emit one,
// compacts the live events into history and tears the run down. The stream
// and every subscriber channel are closed exactly here, once.
func (r *Runner) finalize(st *threadStore, threadID, runID string, out chan aguievents.Event, terminalSeen bool) {
	r.mu.Lock()
	stopped := st.stopRequested
	r.mu.Unlock()

	if !terminalSeen {
		if stopped {
			r.emit(st, out, aguievents.NewRunErrorEvent(stoppedRunMessage, aguievents.WithRunID(runID)))
		} else {
			r.emit(st, out, aguievents.NewRunFinishedEvent(threadID, runID))
		}
	}

	r.mu.Lock()
	st.history = append(st.history, compactEvents(st.live)...)
	st.live = nil
	st.running = false
	st.stopRequested = false
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	subs := st.subs
	st.subs = make(map[string]*subscriber)
	r.mu.Unlock()

	close(out)
	for _, sub := range subs {
		close(sub.ch)
	}
}

// Connect replays the thread's stored events and, when a run is active,
// bridges its live events until the run completes or the client goes away.
func (r *Runner) Connect(ctx context.Context, req *runner.ConnectRequest) (<-chan aguievents.Event, error) {
	if req == nil || req.ThreadID == "" {
		return nil, errors.New("inmemory: connect request needs a thread id")
	}

	out := make(chan aguievents.Event)

	r.mu.Lock()
	st, ok := r.threads[req.ThreadID]
	if !ok {
		r.mu.Unlock()
		close(out)
		return out, nil
	}
	snapshot := make([]aguievents.Event, 0, len(st.history)+len(st.live))
	snapshot = append(snapshot, st.history...)
	snapshot = append(snapshot, st.live...)

	var sub *subscriber
	var subID string
	if st.running {
		sub = &subscriber{
			ch:   make(chan aguievents.Event, subscriberBuffer),
			done: make(chan struct{}),
		}
		subID = uuid.NewString()
		st.subs[subID] = sub
	}
	r.mu.Unlock()

	go r.relay(ctx, st, subID, sub, snapshot, out)
	return out, nil
}

// relay feeds a connect stream: snapshot first, then live events.
func (r *Runner) relay(ctx context.Context, st *threadStore, subID string, sub *subscriber,
	snapshot []aguievents.Event, out chan aguievents.Event) {
	defer close(out)
	if sub != nil {
		defer func() {
			close(sub.done)
			r.mu.Lock()
			delete(st.subs, subID)
			r.mu.Unlock()
		}()
	}

	for _, event := range snapshot {
		select {
		case out <- event:
		case <-ctx.Done():
			return
		}
	}
	if sub == nil {
		return
	}
	for {
		select {
		case event, ok := <-sub.ch:
			if !ok {
				return
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// IsRunning reports whether the thread has an active run.
func (r *Runner) IsRunning(ctx context.Context, req *runner.IsRunningRequest) (bool, error) {
	if req == nil || req.ThreadID == "" {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.threads[req.ThreadID]
	return ok && st.running, nil
}

// Stop cancels the thread's active run. Stopping a thread without an active
// run is a no-op reported as false; a second Stop while the first is still
// winding down is also false.
func (r *Runner) Stop(ctx context.Context, req *runner.StopRequest) (bool, error) {
	if req == nil || req.ThreadID == "" {
		return false, nil
	}
	r.mu.Lock()
	st, ok := r.threads[req.ThreadID]
	if !ok || !st.running || st.stopRequested {
		r.mu.Unlock()
		return false, nil
	}
	st.stopRequested = true
	cancel := st.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	log.Infof("inmemory runner: stop requested for thread %s", req.ThreadID)
	return true, nil
}

// store returns the thread store, creating it on first use. Caller holds the
// runner mutex.
func (r *Runner) store(threadID string) *threadStore {
	st, ok := r.threads[threadID]
	if !ok {
		st = &threadStore{
			threadID: threadID,
			subs:     make(map[string]*subscriber),
		}
		r.threads[threadID] = st
	}
	return st
}

// isTerminal reports whether the event already ends the run.
func isTerminal(event aguievents.Event) bool {
	switch event.(type) {
	case *aguievents.RunFinishedEvent, *aguievents.RunErrorEvent:
		return true
	}
	return false
}
