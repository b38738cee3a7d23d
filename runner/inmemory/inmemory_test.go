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

package inmemory

import (
	"context"
	"testing"
	"time"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agui-runtime/agent"
	"trpc.group/trpc-go/trpc-agui-runtime/agui"
	"trpc.group/trpc-go/trpc-agui-runtime/runner"
)

// stubAgent emits a fixed event sequence. When block is set it keeps the run
// open until the context is cancelled.
type stubAgent struct {
	events  []aguievents.Event
	block   bool
	started chan struct{}
}

func (a *stubAgent) Clone() agent.Agent { return a }

func (a *stubAgent) Run(ctx context.Context, input *agui.RunAgentInput) (<-chan aguievents.Event, error) {
	ch := make(chan aguievents.Event)
	go func() {
		defer close(ch)
		for _, event := range a.events {
			select {
			case ch <- event:
			case <-ctx.Done():
				return
			}
		}
		if a.started != nil {
			close(a.started)
		}
		if a.block {
			<-ctx.Done()
		}
	}()
	return ch, nil
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	r, err := New(WithPoolSize(4))
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func runInput(threadID, runID string) *agui.RunAgentInput {
	return &agui.RunAgentInput{
		ThreadID: threadID,
		RunID:    runID,
		Messages: []agui.Message{{ID: "m1", Role: agui.RoleUser, Content: "hi"}},
	}
}

func collect(t *testing.T, ch <-chan aguievents.Event) []aguievents.Event {
	t.Helper()
	var got []aguievents.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, event)
		case <-timeout:
			t.Error("timed out collecting events")
			return got
		}
	}
}

func TestRunPreservesOrderAndAppendsFinished(t *testing.T) {
	r := newTestRunner(t)
	ag := &stubAgent{events: []aguievents.Event{
		aguievents.NewRunStartedEvent("t1", "r1"),
		aguievents.NewTextMessageContentEvent("m1", "a"),
		aguievents.NewTextMessageContentEvent("m1", "b"),
	}}

	ch, err := r.Run(context.Background(), &runner.RunRequest{
		ThreadID: "t1", Agent: ag, Input: runInput("t1", "r1"),
	})
	require.NoError(t, err)

	evts := collect(t, ch)
	require.Len(t, evts, 4)
	assert.IsType(t, (*aguievents.RunStartedEvent)(nil), evts[0])
	assert.IsType(t, (*aguievents.TextMessageContentEvent)(nil), evts[1])
	assert.IsType(t, (*aguievents.TextMessageContentEvent)(nil), evts[2])
	assert.IsType(t, (*aguievents.RunFinishedEvent)(nil), evts[3])
}

func TestRunKeepsAgentTerminalEvent(t *testing.T) {
	r := newTestRunner(t)
	ag := &stubAgent{events: []aguievents.Event{
		aguievents.NewRunStartedEvent("t1", "r1"),
		aguievents.NewRunFinishedEvent("t1", "r1"),
	}}

	ch, err := r.Run(context.Background(), &runner.RunRequest{
		ThreadID: "t1", Agent: ag, Input: runInput("t1", "r1"),
	})
	require.NoError(t, err)

	evts := collect(t, ch)
	require.Len(t, evts, 2)
	assert.IsType(t, (*aguievents.RunFinishedEvent)(nil), evts[1])
}

func TestRunRejectsConcurrentRunOnThread(t *testing.T) {
	r := newTestRunner(t)
	started := make(chan struct{})
	blocking := &stubAgent{block: true, started: started}

	first, err := r.Run(context.Background(), &runner.RunRequest{
		ThreadID: "t1", Agent: blocking, Input: runInput("t1", "r1"),
	})
	require.NoError(t, err)
	<-started

	second, err := r.Run(context.Background(), &runner.RunRequest{
		ThreadID: "t1", Agent: &stubAgent{}, Input: runInput("t1", "r2"),
	})
	require.NoError(t, err)

	evts := collect(t, second)
	require.Len(t, evts, 1)
	assert.IsType(t, (*aguievents.RunErrorEvent)(nil), evts[0])

	stopped, err := r.Stop(context.Background(), &runner.StopRequest{ThreadID: "t1"})
	require.NoError(t, err)
	assert.True(t, stopped)
	collect(t, first)
}

func TestStop(t *testing.T) {
	r := newTestRunner(t)
	started := make(chan struct{})
	ag := &stubAgent{
		events:  []aguievents.Event{aguievents.NewRunStartedEvent("t1", "r1")},
		block:   true,
		started: started,
	}

	ch, err := r.Run(context.Background(), &runner.RunRequest{
		ThreadID: "t1", Agent: ag, Input: runInput("t1", "r1"),
	})
	require.NoError(t, err)
	<-started

	running, err := r.IsRunning(context.Background(), &runner.IsRunningRequest{ThreadID: "t1"})
	require.NoError(t, err)
	assert.True(t, running)

	stopped, err := r.Stop(context.Background(), &runner.StopRequest{ThreadID: "t1"})
	require.NoError(t, err)
	assert.True(t, stopped)

	// A second stop while the first is still winding down is a no-op.
	stopped, err = r.Stop(context.Background(), &runner.StopRequest{ThreadID: "t1"})
	require.NoError(t, err)
	assert.False(t, stopped)

	evts := collect(t, ch)
	require.NotEmpty(t, evts)
	last, ok := evts[len(evts)-1].(*aguievents.RunErrorEvent)
	require.True(t, ok)
	assert.Equal(t, stoppedRunMessage, last.Message)

	running, err = r.IsRunning(context.Background(), &runner.IsRunningRequest{ThreadID: "t1"})
	require.NoError(t, err)
	assert.False(t, running)
}

func TestStopWithoutActiveRun(t *testing.T) {
	r := newTestRunner(t)
	stopped, err := r.Stop(context.Background(), &runner.StopRequest{ThreadID: "missing"})
	require.NoError(t, err)
	assert.False(t, stopped)
}

func TestConnectUnknownThread(t *testing.T) {
	r := newTestRunner(t)
	ch, err := r.Connect(context.Background(), &runner.ConnectRequest{ThreadID: "missing"})
	require.NoError(t, err)
	assert.Empty(t, collect(t, ch))
}

func TestConnectReplaysHistory(t *testing.T) {
	r := newTestRunner(t)
	ag := &stubAgent{events: []aguievents.Event{
		aguievents.NewRunStartedEvent("t1", "r1"),
		aguievents.NewTextMessageStartEvent("m1"),
		aguievents.NewTextMessageContentEvent("m1", "hello"),
		aguievents.NewTextMessageEndEvent("m1"),
	}}

	ch, err := r.Run(context.Background(), &runner.RunRequest{
		ThreadID: "t1", Agent: ag, Input: runInput("t1", "r1"),
	})
	require.NoError(t, err)
	ran := collect(t, ch)

	replayed, err := r.Connect(context.Background(), &runner.ConnectRequest{ThreadID: "t1"})
	require.NoError(t, err)
	evts := collect(t, replayed)
	assert.Equal(t, len(ran), len(evts))
	for i := range ran {
		assert.IsType(t, ran[i], evts[i])
	}
}

func TestConnectReplaysCompactedHistory(t *testing.T) {
	r := newTestRunner(t)
	ag := &stubAgent{events: []aguievents.Event{
		aguievents.NewRunStartedEvent("t1", "r1"),
		aguievents.NewTextMessageStartEvent("m1"),
		aguievents.NewTextMessageContentEvent("m1", "one "),
		aguievents.NewTextMessageContentEvent("m1", "two "),
		aguievents.NewTextMessageContentEvent("m1", "three"),
		aguievents.NewTextMessageEndEvent("m1"),
	}}

	ch, err := r.Run(context.Background(), &runner.RunRequest{
		ThreadID: "t1", Agent: ag, Input: runInput("t1", "r1"),
	})
	require.NoError(t, err)
	live := collect(t, ch)
	require.Len(t, live, 7)

	replayed, err := r.Connect(context.Background(), &runner.ConnectRequest{ThreadID: "t1"})
	require.NoError(t, err)
	evts := collect(t, replayed)

	// The live stream carried three deltas; the replay carries one merged one.
	require.Len(t, evts, 5)
	content, ok := evts[2].(*aguievents.TextMessageContentEvent)
	require.True(t, ok)
	assert.Equal(t, "m1", content.MessageID)
	assert.Equal(t, "one two three", content.Delta)
	assert.IsType(t, (*aguievents.TextMessageEndEvent)(nil), evts[3])
	assert.IsType(t, (*aguievents.RunFinishedEvent)(nil), evts[4])
}

func TestStopAfterAgentTerminalKeepsSingleTerminal(t *testing.T) {
	r := newTestRunner(t)
	started := make(chan struct{})
	ag := &stubAgent{
		events: []aguievents.Event{
			aguievents.NewRunStartedEvent("t1", "r1"),
			aguievents.NewRunFinishedEvent("t1", "r1"),
		},
		block:   true,
		started: started,
	}

	ch, err := r.Run(context.Background(), &runner.RunRequest{
		ThreadID: "t1", Agent: ag, Input: runInput("t1", "r1"),
	})
	require.NoError(t, err)

	first := <-ch
	assert.IsType(t, (*aguievents.RunStartedEvent)(nil), first)
	second := <-ch
	assert.IsType(t, (*aguievents.RunFinishedEvent)(nil), second)
	<-started

	// The run already finished from the agent's point of view; a stop landing
	// now must not append a second terminal event.
	stopped, err := r.Stop(context.Background(), &runner.StopRequest{ThreadID: "t1"})
	require.NoError(t, err)
	assert.True(t, stopped)

	rest := collect(t, ch)
	assert.Empty(t, rest)
}

func TestConnectBridgesLiveRun(t *testing.T) {
	r := newTestRunner(t)
	started := make(chan struct{})
	ag := &stubAgent{
		events:  []aguievents.Event{aguievents.NewRunStartedEvent("t1", "r1")},
		block:   true,
		started: started,
	}

	runCh, err := r.Run(context.Background(), &runner.RunRequest{
		ThreadID: "t1", Agent: ag, Input: runInput("t1", "r1"),
	})
	require.NoError(t, err)
	// Drain the run stream so the runner is never blocked on it.
	go collect(t, runCh)
	<-started

	connectCh, err := r.Connect(context.Background(), &runner.ConnectRequest{ThreadID: "t1"})
	require.NoError(t, err)

	// The snapshot replay carries the already-emitted RUN_STARTED.
	first := <-connectCh
	assert.IsType(t, (*aguievents.RunStartedEvent)(nil), first)

	stopped, err := r.Stop(context.Background(), &runner.StopRequest{ThreadID: "t1"})
	require.NoError(t, err)
	require.True(t, stopped)

	evts := collect(t, connectCh)
	require.NotEmpty(t, evts)
	assert.IsType(t, (*aguievents.RunErrorEvent)(nil), evts[len(evts)-1])
}

func TestConnectHonorsContextCancel(t *testing.T) {
	r := newTestRunner(t)
	started := make(chan struct{})
	ag := &stubAgent{block: true, started: started}

	runCh, err := r.Run(context.Background(), &runner.RunRequest{
		ThreadID: "t1", Agent: ag, Input: runInput("t1", "r1"),
	})
	require.NoError(t, err)
	go collect(t, runCh)
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	connectCh, err := r.Connect(ctx, &runner.ConnectRequest{ThreadID: "t1"})
	require.NoError(t, err)
	cancel()
	collect(t, connectCh)

	stopped, err := r.Stop(context.Background(), &runner.StopRequest{ThreadID: "t1"})
	require.NoError(t, err)
	assert.True(t, stopped)
}
