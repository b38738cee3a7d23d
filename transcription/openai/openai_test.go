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

package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openaiopt "github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agui-runtime/transcription"
)

func TestTranscribeFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/audio/transcriptions"))
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"hello world"}`))
	}))
	defer server.Close()

	svc := New(WithAPIKey("test-key"), WithBaseURL(server.URL))
	text, err := svc.TranscribeFile(context.Background(), &transcription.FileRequest{
		Filename: "clip.wav",
		MimeType: "audio/wav",
		Size:     4,
		Data:     []byte("RIFF"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestTranscribeFileEmptyPayload(t *testing.T) {
	svc := New(WithAPIKey("test-key"))

	for _, req := range []*transcription.FileRequest{nil, {Filename: "clip.wav"}} {
		_, err := svc.TranscribeFile(context.Background(), req)
		var terr *transcription.Error
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, transcription.CodeAudioTooShort, terr.Code)
	}
}

func TestTranscribeFileAPIErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode transcription.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, transcription.CodeAuthFailed},
		{"rate limited", http.StatusTooManyRequests, transcription.CodeRateLimited},
		{"payload too large", http.StatusRequestEntityTooLarge, transcription.CodeAudioTooLong},
		{"bad request", http.StatusBadRequest, transcription.CodeInvalidAudioFormat},
		{"server error", http.StatusInternalServerError, transcription.CodeProviderError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
			}))
			defer server.Close()

			svc := New(
				WithAPIKey("test-key"),
				WithBaseURL(server.URL),
				WithOpenAIOptions(openaiopt.WithMaxRetries(0)),
			)
			_, err := svc.TranscribeFile(context.Background(), &transcription.FileRequest{
				Filename: "clip.wav",
				MimeType: "audio/wav",
				Data:     []byte("RIFF"),
			})
			var terr *transcription.Error
			require.ErrorAs(t, err, &terr, "status %d", tt.status)
			assert.Equal(t, tt.wantCode, terr.Code)
		})
	}
}

func TestClassifyAPIErrorPassthrough(t *testing.T) {
	plain := errors.New("dial tcp: connection refused")
	assert.Equal(t, plain, classifyAPIError(plain))
}
