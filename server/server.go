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

// Package server exposes an agent runtime over HTTP, as a REST-style
// multi-route surface and as a single-route envelope endpoint.
package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"trpc.group/trpc-go/trpc-agui-runtime/runtime"
)

// Server serves the runtime on separate routes per operation.
type Server struct {
	rt       *runtime.Runtime
	router   *mux.Router
	handlers *handlers
}

// New creates a multi-route server for the runtime.
func New(rt *runtime.Runtime, opt ...Option) *Server {
	opts := newOptions(opt...)
	s := &Server{
		rt:       rt,
		router:   mux.NewRouter(),
		handlers: &handlers{rt: rt},
	}
	s.router.Use(opts.corsMiddleware())
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/agent/{agentId}/run",
		withHooks(s.rt, "agent.run", func(w http.ResponseWriter, r *http.Request) {
			s.handlers.handleRun(w, r, mux.Vars(r)["agentId"])
		})).Methods(http.MethodPost)
	s.router.HandleFunc("/agent/{agentId}/connect",
		withHooks(s.rt, "agent.connect", func(w http.ResponseWriter, r *http.Request) {
			s.handlers.handleConnect(w, r, mux.Vars(r)["agentId"])
		})).Methods(http.MethodPost)
	s.router.HandleFunc("/agent/{agentId}/stop/{threadId}",
		withHooks(s.rt, "agent.stop", func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			s.handlers.handleStop(w, r, vars["agentId"], vars["threadId"])
		})).Methods(http.MethodPost)
	s.router.HandleFunc("/info",
		withHooks(s.rt, "info", s.handlers.handleInfo)).Methods(http.MethodGet)
	s.router.HandleFunc("/transcribe",
		withHooks(s.rt, "transcribe", s.handlers.handleTranscribe)).Methods(http.MethodPost)
}
