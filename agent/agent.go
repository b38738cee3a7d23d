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

// Package agent defines the contract an agent implementation must satisfy to
// be served by the runtime. Agents are black boxes to this layer: the runtime
// clones them, optionally injects forwardable headers, and relays the events
// they emit.
package agent

import (
	"context"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"trpc.group/trpc-go/trpc-agui-runtime/agui"
)

// Agent is an externally supplied unit of conversational or task execution.
//
// The registered instance is a template: the runtime never runs it directly.
// Clone returns an independent execution context sharing no mutable state with
// the template, and exactly one clone is used per run or connect request.
type Agent interface {
	// Clone returns a fresh execution context for one request.
	Clone() Agent
	// Run executes the agent against the given input and returns a channel of
	// AG-UI events. The channel is closed when the run finishes; execution
	// errors surface as a terminal RunErrorEvent on the channel. A non-nil
	// error return is reserved for unusable arguments.
	Run(ctx context.Context, input *agui.RunAgentInput) (<-chan aguievents.Event, error)
}

// HeaderInjectable is an optional capability: agents implementing it receive
// the forwardable subset of the inbound request headers before Run is called.
type HeaderInjectable interface {
	// InjectHeaders merges the given headers into the agent's own. Injected
	// names win on collision; existing names stay otherwise.
	InjectHeaders(headers map[string]string)
}

// Descriptor is an optional capability consumed by the info endpoint. Agents
// without it are reported with empty name and description.
type Descriptor interface {
	Name() string
	Description() string
}

// MergeHeaders merges forwarded headers into existing ones. Forwarded names
// win on collision; existing entries are never deleted. The inputs are left
// untouched.
func MergeHeaders(existing, forwarded map[string]string) map[string]string {
	merged := make(map[string]string, len(existing)+len(forwarded))
	for name, value := range existing {
		merged[name] = value
	}
	for name, value := range forwarded {
		merged[name] = value
	}
	return merged
}
