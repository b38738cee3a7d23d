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

// Package agui defines the wire types of the AG-UI run protocol.
package agui

import (
	"encoding/json"
	"fmt"
)

// Message roles accepted by the protocol.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleDeveloper = "developer"
	RoleTool      = "tool"
)

var validRoles = map[string]struct{}{
	RoleUser:      {},
	RoleAssistant: {},
	RoleSystem:    {},
	RoleDeveloper: {},
	RoleTool:      {},
}

// Message is one conversation message inside a run request. Tool call payloads
// are kept opaque; this layer only routes them.
type Message struct {
	// ID identifies the message within the thread.
	ID string `json:"id"`
	// Role is the author role of the message.
	Role string `json:"role"`
	// Content is the textual content, if any.
	Content string `json:"content,omitempty"`
	// Name is an optional author name.
	Name string `json:"name,omitempty"`
	// ToolCalls carries assistant tool invocations verbatim.
	ToolCalls json.RawMessage `json:"toolCalls,omitempty"`
	// ToolCallID links a tool result message to its invocation.
	ToolCallID string `json:"toolCallId,omitempty"`
}

// Tool describes a frontend-provided tool. The schema is forwarded to the
// agent untouched.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ContextItem is one piece of frontend context forwarded to the agent.
type ContextItem struct {
	Description string `json:"description,omitempty"`
	Value       string `json:"value"`
}

// RunAgentInput represents the parameters for an AG-UI run request.
type RunAgentInput struct {
	// ThreadID is the ID of the conversation thread.
	ThreadID string `json:"threadId"`
	// RunID is the ID of the current run.
	RunID string `json:"runId"`
	// Messages is the list of messages in the conversation.
	Messages []Message `json:"messages"`
	// State is the shared agent state.
	State map[string]any `json:"state"`
	// Tools is the list of frontend tools available to the agent.
	Tools []Tool `json:"tools"`
	// Context is the list of frontend context items.
	Context []ContextItem `json:"context"`
	// ForwardedProps is the custom properties forwarded to the agent.
	ForwardedProps map[string]any `json:"forwardedProps"`
}

// Validate reports whether the input satisfies the protocol schema. A failure
// is a per-request error and never fatal to the process.
func (in *RunAgentInput) Validate() error {
	if in == nil {
		return fmt.Errorf("agui: input is nil")
	}
	if in.ThreadID == "" {
		return fmt.Errorf("agui: threadId is required")
	}
	if in.RunID == "" {
		return fmt.Errorf("agui: runId is required")
	}
	for i, msg := range in.Messages {
		if msg.ID == "" {
			return fmt.Errorf("agui: message %d is missing an id", i)
		}
		if _, ok := validRoles[msg.Role]; !ok {
			return fmt.Errorf("agui: message %d has invalid role %q", i, msg.Role)
		}
	}
	return nil
}

// ParseRunAgentInput decodes and validates a run request payload.
func ParseRunAgentInput(data []byte) (*RunAgentInput, error) {
	var input RunAgentInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("agui: decode run input: %w", err)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return &input, nil
}
