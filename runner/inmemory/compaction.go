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
	"strings"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
)

// pendingMessage accumulates one text message's streaming events until its
// end event arrives.
type pendingMessage struct {
	start    *aguievents.TextMessageStartEvent
	deltas   []string
	end      *aguievents.TextMessageEndEvent
	trailing []aguievents.Event
}

// pendingToolCall accumulates one tool call's streaming events until its end
// event arrives.
type pendingToolCall struct {
	start    *aguievents.ToolCallStartEvent
	args     []string
	end      *aguievents.ToolCallEndEvent
	trailing []aguievents.Event
}

// compactor groups streaming deltas by message/tool-call id, in arrival
// order, so each group can be flushed as one consolidated sequence.
type compactor struct {
	out []aguievents.Event

	messages     map[string]*pendingMessage
	messageOrder []string
	toolCalls    map[string]*pendingToolCall
	toolOrder    []string
}

// compactEvents consolidates a finished run's streaming deltas: the content
// deltas of one message collapse into a single content event, the argument
// deltas of one tool call into a single args event. Non-streaming events
// arriving inside an open message or tool call are kept and reordered after
// it so the streaming sequence replays contiguously. Relative order of
// everything else is preserved.
func compactEvents(events []aguievents.Event) []aguievents.Event {
	c := &compactor{
		out:       make([]aguievents.Event, 0, len(events)),
		messages:  make(map[string]*pendingMessage),
		toolCalls: make(map[string]*pendingToolCall),
	}
	for _, event := range events {
		c.add(event)
	}
	c.flushRemaining()
	return c.out
}

func (c *compactor) add(event aguievents.Event) {
	switch e := event.(type) {
	case *aguievents.TextMessageStartEvent:
		c.message(e.MessageID).start = e
	case *aguievents.TextMessageContentEvent:
		p := c.message(e.MessageID)
		p.deltas = append(p.deltas, e.Delta)
	case *aguievents.TextMessageEndEvent:
		p := c.message(e.MessageID)
		p.end = e
		c.flushMessage(e.MessageID, p)
	case *aguievents.ToolCallStartEvent:
		c.toolCall(e.ToolCallID).start = e
	case *aguievents.ToolCallArgsEvent:
		p := c.toolCall(e.ToolCallID)
		p.args = append(p.args, e.Delta)
	case *aguievents.ToolCallEndEvent:
		p := c.toolCall(e.ToolCallID)
		p.end = e
		c.flushToolCall(e.ToolCallID, p)
	default:
		c.buffer(event)
	}
}

// buffer attaches a non-streaming event to the oldest still-open message or
// tool call, so it trails that sequence in the compacted output. With no
// open sequence the event passes straight through.
func (c *compactor) buffer(event aguievents.Event) {
	for _, id := range c.messageOrder {
		if p, ok := c.messages[id]; ok && p.start != nil && p.end == nil {
			p.trailing = append(p.trailing, event)
			return
		}
	}
	for _, id := range c.toolOrder {
		if p, ok := c.toolCalls[id]; ok && p.start != nil && p.end == nil {
			p.trailing = append(p.trailing, event)
			return
		}
	}
	c.out = append(c.out, event)
}

func (c *compactor) message(id string) *pendingMessage {
	p, ok := c.messages[id]
	if !ok {
		p = &pendingMessage{}
		c.messages[id] = p
		c.messageOrder = append(c.messageOrder, id)
	}
	return p
}

func (c *compactor) toolCall(id string) *pendingToolCall {
	p, ok := c.toolCalls[id]
	if !ok {
		p = &pendingToolCall{}
		c.toolCalls[id] = p
		c.toolOrder = append(c.toolOrder, id)
	}
	return p
}

func (c *compactor) flushMessage(id string, p *pendingMessage) {
	if p.start != nil {
		c.out = append(c.out, p.start)
	}
	if len(p.deltas) > 0 {
		c.out = append(c.out, aguievents.NewTextMessageContentEvent(id, strings.Join(p.deltas, "")))
	}
	if p.end != nil {
		c.out = append(c.out, p.end)
	}
	c.out = append(c.out, p.trailing...)
	delete(c.messages, id)
}

func (c *compactor) flushToolCall(id string, p *pendingToolCall) {
	if p.start != nil {
		c.out = append(c.out, p.start)
	}
	if len(p.args) > 0 {
		c.out = append(c.out, aguievents.NewToolCallArgsEvent(id, strings.Join(p.args, "")))
	}
	if p.end != nil {
		c.out = append(c.out, p.end)
	}
	c.out = append(c.out, p.trailing...)
	delete(c.toolCalls, id)
}

// flushRemaining drains sequences the run never closed, messages first, in
// arrival order.
func (c *compactor) flushRemaining() {
	for _, id := range c.messageOrder {
		if p, ok := c.messages[id]; ok {
			c.flushMessage(id, p)
		}
	}
	for _, id := range c.toolOrder {
		if p, ok := c.toolCalls[id]; ok {
			c.flushToolCall(id, p)
		}
	}
}
