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

// Package runner defines the pluggable execution strategy behind the HTTP
// layer. A Runner decides how agent runs are executed (in-process, queued,
// remote) while the handlers stay transport-only.
package runner

import (
	"context"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"trpc.group/trpc-go/trpc-agui-runtime/agent"
	"trpc.group/trpc-go/trpc-agui-runtime/agui"
)

// RunRequest starts one run of an already-configured agent clone.
type RunRequest struct {
	// ThreadID is the conversation thread the run belongs to.
	ThreadID string
	// Agent is the per-request execution context, never the registry template.
	Agent agent.Agent
	// Input is the validated run input.
	Input *agui.RunAgentInput
}

// ConnectRequest attaches to an existing or resumable thread without starting
// a new run, so it carries no full run input.
type ConnectRequest struct {
	ThreadID string
	// Headers is the forwardable subset of the inbound request headers.
	Headers map[string]string
}

// IsRunningRequest queries whether a thread has an active run.
type IsRunningRequest struct {
	ThreadID string
}

// StopRequest signals the active run of a thread to stop.
type StopRequest struct {
	ThreadID string
}

// Runner executes, reconnects to and stops agent runs.
//
// Event channels are closed exactly once by the runner when the stream ends.
// Events are delivered in emission order; execution failures surface as a
// terminal RunErrorEvent on the channel, not as an error return.
type Runner interface {
	// Run executes the given agent clone and streams its events.
	Run(ctx context.Context, req *RunRequest) (<-chan aguievents.Event, error)
	// Connect replays a thread's history and bridges its live events, if any.
	Connect(ctx context.Context, req *ConnectRequest) (<-chan aguievents.Event, error)
	// IsRunning reports whether the thread currently has an active run.
	IsRunning(ctx context.Context, req *IsRunningRequest) (bool, error)
	// Stop signals the thread's active run to stop and reports whether an
	// active run was found.
	Stop(ctx context.Context, req *StopRequest) (bool, error)
}
