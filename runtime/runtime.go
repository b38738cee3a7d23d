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

// Package runtime assembles agents, a runner and an optional transcription
// service into one unit the HTTP layer serves.
package runtime

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-agui-runtime/agent"
	"trpc.group/trpc-go/trpc-agui-runtime/runner"
	"trpc.group/trpc-go/trpc-agui-runtime/runner/inmemory"
	"trpc.group/trpc-go/trpc-agui-runtime/transcription"
)

// Version is the runtime protocol version reported by the info endpoint.
const Version = "0.1.0"

// AgentResolver produces the agent registry for one request. It runs on
// every lookup, so implementations caching between calls should do so
// internally.
type AgentResolver func(ctx context.Context) (map[string]agent.Agent, error)

// Runtime holds the wiring shared by every request: the agent registry, the
// runner executing them, the transcription service and the request hooks.
type Runtime struct {
	agents        map[string]agent.Agent
	resolver      AgentResolver
	runner        runner.Runner
	transcription transcription.Service
	beforeHooks   []BeforeRequestHook
	afterHooks    []AfterRequestHook
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithAgents sets a static agent registry keyed by agent id.
func WithAgents(agents map[string]agent.Agent) Option {
	return func(r *Runtime) {
		r.agents = agents
	}
}

// WithAgentResolver sets a lazy agent registry. It takes precedence over
// WithAgents when both are given.
func WithAgentResolver(resolver AgentResolver) Option {
	return func(r *Runtime) {
		r.resolver = resolver
	}
}

// WithRunner sets the runner executing agent runs. Defaults to the in-memory
// runner.
func WithRunner(rn runner.Runner) Option {
	return func(r *Runtime) {
		r.runner = rn
	}
}

// WithTranscriptionService enables the transcribe endpoint.
func WithTranscriptionService(svc transcription.Service) Option {
	return func(r *Runtime) {
		r.transcription = svc
	}
}

// WithBeforeRequestHook appends a hook that runs before each request is
// handled. Hooks run in registration order.
func WithBeforeRequestHook(hooks ...BeforeRequestHook) Option {
	return func(r *Runtime) {
		r.beforeHooks = append(r.beforeHooks, hooks...)
	}
}

// WithAfterRequestHook appends a hook that runs after each response is
// written.
func WithAfterRequestHook(hooks ...AfterRequestHook) Option {
	return func(r *Runtime) {
		r.afterHooks = append(r.afterHooks, hooks...)
	}
}

// New creates a Runtime.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	if r.runner == nil {
		rn, err := inmemory.New()
		if err != nil {
			return nil, fmt.Errorf("create default runner: %w", err)
		}
		r.runner = rn
	}
	return r, nil
}

// Agents returns the agent registry for this request. With a resolver
// configured the static map is ignored; a resolver failure is surfaced to
// the caller so the handler can turn it into a server error instead of a
// missing-agent response.
func (r *Runtime) Agents(ctx context.Context) (map[string]agent.Agent, error) {
	if r.resolver != nil {
		agents, err := r.resolver(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve agents: %w", err)
		}
		if agents == nil {
			agents = map[string]agent.Agent{}
		}
		return agents, nil
	}
	if r.agents == nil {
		return map[string]agent.Agent{}, nil
	}
	return r.agents, nil
}

// Agent looks up one agent by id. The bool reports whether it exists; the
// error reports registry resolution failure only.
func (r *Runtime) Agent(ctx context.Context, id string) (agent.Agent, bool, error) {
	agents, err := r.Agents(ctx)
	if err != nil {
		return nil, false, err
	}
	ag, ok := agents[id]
	return ag, ok, nil
}

// Runner returns the configured runner.
func (r *Runtime) Runner() runner.Runner {
	return r.runner
}

// TranscriptionService returns the configured transcription service, nil when
// transcription is disabled.
func (r *Runtime) TranscriptionService() transcription.Service {
	return r.transcription
}

// BeforeHooks returns the registered before-request hooks.
func (r *Runtime) BeforeHooks() []BeforeRequestHook {
	return r.beforeHooks
}

// AfterHooks returns the registered after-request hooks.
func (r *Runtime) AfterHooks() []AfterRequestHook {
	return r.afterHooks
}

// AgentInfo describes one agent in the info response.
type AgentInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ClassName   string `json:"className"`
}

// Info is the capability document served by the info endpoint.
type Info struct {
	Version                       string               `json:"version"`
	Agents                        map[string]AgentInfo `json:"agents"`
	AudioFileTranscriptionEnabled bool                 `json:"audioFileTranscriptionEnabled"`
}

// Info reports the runtime version, the registered agents and whether audio
// transcription is available.
func (r *Runtime) Info(ctx context.Context) (*Info, error) {
	agents, err := r.Agents(ctx)
	if err != nil {
		return nil, err
	}
	infos := make(map[string]AgentInfo, len(agents))
	for id, ag := range agents {
		infos[id] = describeAgent(id, ag)
	}
	return &Info{
		Version:                       Version,
		Agents:                        infos,
		AudioFileTranscriptionEnabled: r.transcription != nil,
	}, nil
}

func describeAgent(id string, ag agent.Agent) AgentInfo {
	info := AgentInfo{
		Name:      id,
		ClassName: fmt.Sprintf("%T", ag),
	}
	if desc, ok := ag.(agent.Descriptor); ok {
		if name := desc.Name(); name != "" {
			info.Name = name
		}
		info.Description = desc.Description()
	}
	return info
}
