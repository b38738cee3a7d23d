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

package runtime

import (
	"context"
	"net/http"
)

// BeforeRequestContext is handed to before-request hooks.
type BeforeRequestContext struct {
	// Runtime serving the request.
	Runtime *Runtime
	// Request as received, or as rewritten by an earlier hook.
	Request *http.Request
	// Path is the request path relative to the mount point.
	Path string
}

// BeforeRequestHook runs before a request reaches its handler. Returning a
// non-nil request replaces the request for subsequent hooks and the handler.
// Returning an error aborts the request: a *ResponseError is written to the
// client verbatim, any other error becomes a plain 500.
type BeforeRequestHook func(ctx context.Context, req *BeforeRequestContext) (*http.Request, error)

// ResponseInfo is the response summary passed to after-request hooks.
type ResponseInfo struct {
	// Status code written by the handler.
	Status int
	// Header snapshot at the time the status was written.
	Header http.Header
}

// AfterRequestContext is handed to after-request hooks.
type AfterRequestContext struct {
	Runtime  *Runtime
	Request  *http.Request
	Response *ResponseInfo
	Path     string
}

// AfterRequestHook runs after the handler finished writing its response.
// It executes off the request goroutine and cannot alter the response;
// returned errors are logged and discarded.
type AfterRequestHook func(ctx context.Context, req *AfterRequestContext) error

// ResponseError aborts request handling with a caller-controlled response.
// Before-request hooks return it to short-circuit: the status, headers and
// body are written exactly as given.
type ResponseError struct {
	Status int
	Header http.Header
	Body   []byte
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return http.StatusText(e.Status)
}

// NewResponseError builds a short-circuit response with a JSON content type.
func NewResponseError(status int, body []byte) *ResponseError {
	return &ResponseError{
		Status: status,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	}
}
