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
	"testing"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactEventsMergesTextDeltas(t *testing.T) {
	got := compactEvents([]aguievents.Event{
		aguievents.NewRunStartedEvent("t1", "r1"),
		aguievents.NewTextMessageStartEvent("m1"),
		aguievents.NewTextMessageContentEvent("m1", "a"),
		aguievents.NewTextMessageContentEvent("m1", "b"),
		aguievents.NewTextMessageContentEvent("m1", "c"),
		aguievents.NewTextMessageEndEvent("m1"),
		aguievents.NewRunFinishedEvent("t1", "r1"),
	})

	require.Len(t, got, 5)
	assert.IsType(t, (*aguievents.RunStartedEvent)(nil), got[0])
	assert.IsType(t, (*aguievents.TextMessageStartEvent)(nil), got[1])
	content, ok := got[2].(*aguievents.TextMessageContentEvent)
	require.True(t, ok)
	assert.Equal(t, "m1", content.MessageID)
	assert.Equal(t, "abc", content.Delta)
	assert.IsType(t, (*aguievents.TextMessageEndEvent)(nil), got[3])
	assert.IsType(t, (*aguievents.RunFinishedEvent)(nil), got[4])
}

func TestCompactEventsMergesToolCallArgs(t *testing.T) {
	got := compactEvents([]aguievents.Event{
		aguievents.NewToolCallStartEvent("c1", "lookup"),
		aguievents.NewToolCallArgsEvent("c1", "{\"foo\":"),
		aguievents.NewToolCallArgsEvent("c1", "\"bar\"}"),
		aguievents.NewToolCallEndEvent("c1"),
	})

	require.Len(t, got, 3)
	assert.IsType(t, (*aguievents.ToolCallStartEvent)(nil), got[0])
	args, ok := got[1].(*aguievents.ToolCallArgsEvent)
	require.True(t, ok)
	assert.Equal(t, "c1", args.ToolCallID)
	assert.Equal(t, "{\"foo\":\"bar\"}", args.Delta)
	assert.IsType(t, (*aguievents.ToolCallEndEvent)(nil), got[2])
}

func TestCompactEventsKeepsIndependentMessagesSeparate(t *testing.T) {
	got := compactEvents([]aguievents.Event{
		aguievents.NewTextMessageStartEvent("m1"),
		aguievents.NewTextMessageContentEvent("m1", "first"),
		aguievents.NewTextMessageEndEvent("m1"),
		aguievents.NewTextMessageStartEvent("m2"),
		aguievents.NewTextMessageContentEvent("m2", "second"),
		aguievents.NewTextMessageEndEvent("m2"),
	})

	require.Len(t, got, 6)
	first, ok := got[1].(*aguievents.TextMessageContentEvent)
	require.True(t, ok)
	assert.Equal(t, "first", first.Delta)
	second, ok := got[4].(*aguievents.TextMessageContentEvent)
	require.True(t, ok)
	assert.Equal(t, "m2", second.MessageID)
	assert.Equal(t, "second", second.Delta)
}

func TestCompactEventsReordersEventInsideOpenMessage(t *testing.T) {
	got := compactEvents([]aguievents.Event{
		aguievents.NewTextMessageStartEvent("m1"),
		aguievents.NewTextMessageContentEvent("m1", "a"),
		aguievents.NewRunStartedEvent("t1", "r1"),
		aguievents.NewTextMessageContentEvent("m1", "b"),
		aguievents.NewTextMessageEndEvent("m1"),
	})

	// The unrelated event trails the message so the streaming sequence
	// replays contiguously.
	require.Len(t, got, 4)
	assert.IsType(t, (*aguievents.TextMessageStartEvent)(nil), got[0])
	content, ok := got[1].(*aguievents.TextMessageContentEvent)
	require.True(t, ok)
	assert.Equal(t, "ab", content.Delta)
	assert.IsType(t, (*aguievents.TextMessageEndEvent)(nil), got[2])
	assert.IsType(t, (*aguievents.RunStartedEvent)(nil), got[3])
}

func TestCompactEventsFlushesUnclosedMessage(t *testing.T) {
	got := compactEvents([]aguievents.Event{
		aguievents.NewTextMessageStartEvent("m1"),
		aguievents.NewTextMessageContentEvent("m1", "partial "),
		aguievents.NewTextMessageContentEvent("m1", "answer"),
		aguievents.NewRunErrorEvent("boom"),
	})

	require.Len(t, got, 3)
	assert.IsType(t, (*aguievents.TextMessageStartEvent)(nil), got[0])
	content, ok := got[1].(*aguievents.TextMessageContentEvent)
	require.True(t, ok)
	assert.Equal(t, "partial answer", content.Delta)
	assert.IsType(t, (*aguievents.RunErrorEvent)(nil), got[2])
}

func TestCompactEventsPassesThroughNonStreamingEvents(t *testing.T) {
	in := []aguievents.Event{
		aguievents.NewRunStartedEvent("t1", "r1"),
		aguievents.NewRunFinishedEvent("t1", "r1"),
	}
	got := compactEvents(in)
	require.Len(t, got, 2)
	assert.Equal(t, in[0], got[0])
	assert.Equal(t, in[1], got[1])
}
