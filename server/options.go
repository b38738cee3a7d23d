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
	"net/http"

	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-agui-runtime/log"
)

const defaultBasePath = "/"

// CORSOptions controls the CORS headers emitted by the server.
type CORSOptions struct {
	// Origins lists the allowed origins. Empty means "*".
	Origins []string
	// OriginFunc decides per-origin when set; it takes precedence over
	// Origins.
	OriginFunc func(origin string) bool
	// Credentials enables Access-Control-Allow-Credentials.
	Credentials bool
}

type options struct {
	cors     CORSOptions
	basePath string
}

// Option configures a server.
type Option func(*options)

func newOptions(opt ...Option) *options {
	opts := &options{basePath: defaultBasePath}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// WithCORS overrides the default permissive CORS policy.
func WithCORS(c CORSOptions) Option {
	return func(o *options) {
		o.cors = c
	}
}

// WithBasePath sets the mount path of the single-route server.
// Defaults to "/".
func WithBasePath(path string) Option {
	return func(o *options) {
		o.basePath = path
	}
}

// corsMiddleware builds the rs/cors handler for the configured policy.
// Credentials are only advertised when explicitly enabled. Credentialed
// responses need an origin-specific Access-Control-Allow-Origin, so
// credentials with no origin configuration reflect the request origin
// instead of the wildcard browsers would reject.
func (o *options) corsMiddleware() func(http.Handler) http.Handler {
	copts := cors.Options{
		AllowedOrigins:   o.cors.Origins,
		AllowOriginFunc:  o.cors.OriginFunc,
		AllowCredentials: o.cors.Credentials,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	}
	if len(copts.AllowedOrigins) == 0 && copts.AllowOriginFunc == nil {
		if copts.AllowCredentials {
			log.Warnf("server: credentials enabled without allowed origins, reflecting request origins")
			copts.AllowOriginFunc = func(string) bool { return true }
		} else {
			copts.AllowedOrigins = []string{"*"}
		}
	}
	return cors.New(copts).Handler
}
