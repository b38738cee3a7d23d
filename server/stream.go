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

package server

import (
	"context"
	"net/http"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	aguisse "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/encoding/sse"

	"trpc.group/trpc-go/trpc-agui-runtime/log"
)

// eventStream owns one SSE response. Exactly one of the run/connect handlers
// writes to it; once committed the status code cannot change, so later
// failures are delivered as terminal events on the stream itself.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	writer  *aguisse.SSEWriter

	committed bool
	closed    bool
	aborted   bool
}

func newEventStream(w http.ResponseWriter) *eventStream {
	flusher, _ := w.(http.Flusher)
	return &eventStream{
		w:       w,
		flusher: flusher,
		writer:  aguisse.NewSSEWriter(),
	}
}

// commit writes the SSE response headers and flushes them to the client so
// streaming starts before the body has been processed.
func (s *eventStream) commit() {
	if s.committed {
		return
	}
	s.committed = true
	s.w.Header().Set("Content-Type", "text/event-stream")
	s.w.Header().Set("Cache-Control", "no-cache")
	s.w.Header().Set("Connection", "keep-alive")
	s.w.WriteHeader(http.StatusOK)
	s.flush()
}

// send encodes one event as an SSE frame. Writes after the client went away
// are dropped rather than escalated; the caller keeps draining its event
// source either way.
func (s *eventStream) send(ctx context.Context, event aguievents.Event) {
	if s.closed || s.aborted {
		return
	}
	if err := ctx.Err(); err != nil {
		s.aborted = true
		return
	}
	if err := s.writer.WriteEvent(ctx, s.w, event); err != nil {
		log.Debugf("sse write failed, dropping remaining frames: %v", err)
		s.aborted = true
		return
	}
	s.flush()
}

// close marks the stream finished. Closing twice is a no-op.
func (s *eventStream) close() {
	if s.closed {
		return
	}
	s.closed = true
	s.flush()
}

func (s *eventStream) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
