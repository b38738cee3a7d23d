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

package agui

import (
	"net/http"
	"strings"
)

// ShouldForwardHeader reports whether an inbound header may be relayed to an
// agent or runner. The allow list is `authorization` plus every `x-` prefixed
// header, matched case-insensitively; everything else is stripped.
func ShouldForwardHeader(name string) bool {
	lower := strings.ToLower(name)
	return lower == "authorization" || strings.HasPrefix(lower, "x-")
}

// ExtractForwardableHeaders applies ShouldForwardHeader to every request
// header and returns the allowed subset keyed by lowercased name. Repeated
// headers are combined into one comma separated value. The result is always
// non-nil and is never mutated afterwards by this layer.
func ExtractForwardableHeaders(h http.Header) map[string]string {
	forwarded := make(map[string]string)
	for name, values := range h {
		if !ShouldForwardHeader(name) || len(values) == 0 {
			continue
		}
		forwarded[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	return forwarded
}
