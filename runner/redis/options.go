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

package redis

import "time"

const (
	defaultPrefix = "agui"
	// defaultRunTTL bounds how long a crashed replica can leave a thread
	// marked active.
	defaultRunTTL = 30 * time.Minute
)

// options holds the options for the redis-coordinated runner.
type options struct {
	prefix string
	runTTL time.Duration
}

// newOptions creates a new options instance.
func newOptions(opt ...Option) *options {
	opts := &options{
		prefix: defaultPrefix,
		runTTL: defaultRunTTL,
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option is a function that configures the options.
type Option func(*options)

// WithKeyPrefix sets the key prefix for run bookkeeping.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithRunTTL sets the expiry applied to the active-run mark.
func WithRunTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.runTTL = ttl
		}
	}
}
