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
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-agui-runtime/log"
	"trpc.group/trpc-go/trpc-agui-runtime/runtime"
)

var tracer = otel.Tracer("trpc.group/trpc-go/trpc-agui-runtime/server")

// withHooks wraps a handler with the runtime's request hooks. A before hook
// may rewrite the request or abort it; after hooks observe the written
// response off the request goroutine and can no longer influence it.
func withHooks(rt *runtime.Runtime, name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), name,
			trace.WithAttributes(attribute.String("http.route", r.URL.Path)))
		defer span.End()
		r = r.WithContext(ctx)

		path := r.URL.Path
		for _, hook := range rt.BeforeHooks() {
			replacement, err := hook(ctx, &runtime.BeforeRequestContext{
				Runtime: rt,
				Request: r,
				Path:    path,
			})
			if err != nil {
				writeHookError(w, err)
				return
			}
			if replacement != nil {
				r = replacement
			}
		}

		rec := newRecordingWriter(w)
		h(rec, r)

		afterHooks := rt.AfterHooks()
		if len(afterHooks) == 0 {
			return
		}
		info := rec.responseInfo()
		afterCtx := context.WithoutCancel(ctx)
		req := r
		go func() {
			for _, hook := range afterHooks {
				if err := hook(afterCtx, &runtime.AfterRequestContext{
					Runtime:  rt,
					Request:  req,
					Response: info,
					Path:     path,
				}); err != nil {
					log.Errorf("after request hook failed: %v", err)
				}
			}
		}()
	}
}

// writeHookError translates a before-hook failure into a client response. A
// *runtime.ResponseError is sent verbatim; anything else is an opaque 500.
func writeHookError(w http.ResponseWriter, err error) {
	var respErr *runtime.ResponseError
	if errors.As(err, &respErr) {
		for name, values := range respErr.Header {
			for _, v := range values {
				w.Header().Add(name, v)
			}
		}
		status := respErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		w.WriteHeader(status)
		_, _ = w.Write(respErr.Body)
		return
	}
	log.Errorf("before request hook failed: %v", err)
	writeJSONError(w, http.StatusInternalServerError, "Internal server error", err.Error())
}

// recordingWriter captures the status and header snapshot for after hooks
// while passing everything through to the real writer.
type recordingWriter struct {
	http.ResponseWriter
	status int
	header http.Header
}

func newRecordingWriter(w http.ResponseWriter) *recordingWriter {
	return &recordingWriter{ResponseWriter: w}
}

func (r *recordingWriter) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
		r.header = r.Header().Clone()
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *recordingWriter) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
		r.header = r.Header().Clone()
	}
	return r.ResponseWriter.Write(p)
}

// Flush forwards to the underlying writer so SSE streaming keeps working
// through the recorder.
func (r *recordingWriter) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (r *recordingWriter) responseInfo() *runtime.ResponseInfo {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	header := r.header
	if header == nil {
		header = r.Header().Clone()
	}
	return &runtime.ResponseInfo{Status: status, Header: header}
}
