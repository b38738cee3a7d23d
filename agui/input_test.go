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

package agui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRunAgentInput(t *testing.T) {
	payload := `{
		"threadId": "thread-1",
		"runId": "run-1",
		"messages": [{"id": "m1", "role": "user", "content": "hi"}],
		"state": {"counter": 1},
		"tools": [{"name": "search", "parameters": {"type": "object"}}],
		"context": [{"description": "page", "value": "pricing"}],
		"forwardedProps": {"locale": "en"}
	}`

	input, err := ParseRunAgentInput([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "thread-1", input.ThreadID)
	assert.Equal(t, "run-1", input.RunID)
	require.Len(t, input.Messages, 1)
	assert.Equal(t, RoleUser, input.Messages[0].Role)
	assert.Equal(t, "search", input.Tools[0].Name)
	assert.Equal(t, "pricing", input.Context[0].Value)
	assert.Equal(t, "en", input.ForwardedProps["locale"])
}

func TestParseRunAgentInputInvalidJSON(t *testing.T) {
	_, err := ParseRunAgentInput([]byte("{invalid"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		input   RunAgentInput
		wantErr string
	}{
		{
			name:    "missing thread id",
			input:   RunAgentInput{RunID: "run"},
			wantErr: "threadId is required",
		},
		{
			name:    "missing run id",
			input:   RunAgentInput{ThreadID: "thread"},
			wantErr: "runId is required",
		},
		{
			name: "message without id",
			input: RunAgentInput{
				ThreadID: "thread",
				RunID:    "run",
				Messages: []Message{{Role: RoleUser}},
			},
			wantErr: "missing an id",
		},
		{
			name: "message with unknown role",
			input: RunAgentInput{
				ThreadID: "thread",
				RunID:    "run",
				Messages: []Message{{ID: "m1", Role: "robot"}},
			},
			wantErr: "invalid role",
		},
		{
			name: "valid",
			input: RunAgentInput{
				ThreadID: "thread",
				RunID:    "run",
				Messages: []Message{{ID: "m1", Role: RoleTool, ToolCallID: "t1"}},
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.input.Validate()
			if c.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.wantErr)
		})
	}
}
