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
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"trpc.group/trpc-go/trpc-agui-runtime/runtime"
)

// Envelope methods accepted by the single-route server.
const (
	MethodAgentRun     = "agent/run"
	MethodAgentConnect = "agent/connect"
	MethodAgentStop    = "agent/stop"
	MethodInfo         = "info"
	MethodTranscribe   = "transcribe"
)

// envelope is the request wrapper of the single-route binding: the method
// selects the operation, params carry routing values the multi-route
// binding would take from the path, and body is the operation payload.
type envelope struct {
	Method string          `json:"method"`
	Params envelopeParams  `json:"params"`
	Body   json.RawMessage `json:"body"`
}

type envelopeParams struct {
	AgentID  string `json:"agentId"`
	ThreadID string `json:"threadId"`
}

// SingleRouteServer serves every runtime operation on one POST endpoint.
type SingleRouteServer struct {
	rt       *runtime.Runtime
	basePath string
	handler  http.Handler
	handlers *handlers
}

// NewSingleRoute creates a single-route server mounted at the configured
// base path.
func NewSingleRoute(rt *runtime.Runtime, opt ...Option) *SingleRouteServer {
	opts := newOptions(opt...)
	s := &SingleRouteServer{
		rt:       rt,
		basePath: opts.basePath,
		handlers: &handlers{rt: rt},
	}
	inner := withHooks(rt, "rpc", s.dispatch)
	s.handler = opts.corsMiddleware()(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if !s.matchesBasePath(r.URL.Path) {
				writeJSONError(w, http.StatusNotFound, "Not found",
					"No handler registered for this path")
				return
			}
			if r.Method != http.MethodPost {
				w.Header().Set("Allow", http.MethodPost)
				writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed",
					"Only POST is supported")
				return
			}
			inner(w, r)
		}))
	return s
}

// Handler returns the http.Handler for the server.
func (s *SingleRouteServer) Handler() http.Handler { return s.handler }

func (s *SingleRouteServer) matchesBasePath(path string) bool {
	return path == s.basePath ||
		strings.TrimSuffix(path, "/") == strings.TrimSuffix(s.basePath, "/")
}

func (s *SingleRouteServer) dispatch(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Unsupported content type",
			"Request body must be application/json")
		return
	}

	var env envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	switch env.Method {
	case MethodAgentRun:
		if env.Params.AgentID == "" {
			writeJSONError(w, http.StatusBadRequest, "Invalid params",
				"Method 'agent/run' requires params.agentId")
			return
		}
		s.handlers.handleRun(w, withBody(r, env.Body), env.Params.AgentID)
	case MethodAgentConnect:
		if env.Params.AgentID == "" {
			writeJSONError(w, http.StatusBadRequest, "Invalid params",
				"Method 'agent/connect' requires params.agentId")
			return
		}
		s.handlers.handleConnect(w, withBody(r, env.Body), env.Params.AgentID)
	case MethodAgentStop:
		if env.Params.AgentID == "" || env.Params.ThreadID == "" {
			writeJSONError(w, http.StatusBadRequest, "Invalid params",
				"Method 'agent/stop' requires params.agentId and params.threadId")
			return
		}
		s.handlers.handleStop(w, r, env.Params.AgentID, env.Params.ThreadID)
	case MethodInfo:
		s.handlers.handleInfo(w, r)
	case MethodTranscribe:
		s.handlers.handleTranscribe(w, withBody(r, env.Body))
	case "":
		writeJSONError(w, http.StatusBadRequest, "Invalid method",
			"Request body must include a 'method' field")
	default:
		writeJSONError(w, http.StatusBadRequest, "Invalid method",
			"Unknown method '"+env.Method+"'")
	}
}

// withBody rebuilds the request around the envelope body so the shared
// handlers can consume it like a direct request.
func withBody(r *http.Request, body json.RawMessage) *http.Request {
	clone := r.Clone(r.Context())
	clone.Body = io.NopCloser(bytes.NewReader(body))
	clone.ContentLength = int64(len(body))
	clone.Header = r.Header.Clone()
	clone.Header.Set("Content-Type", "application/json")
	return clone
}
