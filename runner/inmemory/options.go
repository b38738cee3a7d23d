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

const (
	// defaultPoolSize bounds the number of concurrently executing runs.
	defaultPoolSize = 128
	// subscriberBuffer is the per-subscriber bridge capacity. When it fills
	// up the run blocks on the subscriber rather than dropping events.
	subscriberBuffer = 64
)

// options holds the options for the in-process runner.
type options struct {
	poolSize int
}

// newOptions creates a new options instance.
func newOptions(opt ...Option) *options {
	opts := &options{poolSize: defaultPoolSize}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option is a function that configures the options.
type Option func(*options)

// WithPoolSize sets the worker pool size for run execution.
func WithPoolSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.poolSize = size
		}
	}
}
