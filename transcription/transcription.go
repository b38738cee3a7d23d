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

// Package transcription defines the pluggable audio-to-text service and its
// error taxonomy.
package transcription

import (
	"context"
	"errors"
	"strings"
)

// FileRequest carries one audio file to transcribe.
type FileRequest struct {
	// Filename is the client-provided name, used for provider hints only.
	Filename string
	// MimeType is the declared audio MIME type, possibly with parameters.
	MimeType string
	// Size is the payload size in bytes.
	Size int64
	// Data is the raw audio payload.
	Data []byte
}

// Service converts an audio file to text. Implementations wrap a concrete
// provider; failures should be *Error values so the HTTP layer can map them
// to precise status codes without string matching.
type Service interface {
	TranscribeFile(ctx context.Context, req *FileRequest) (string, error)
}

// ErrorCode classifies a transcription failure.
type ErrorCode string

// Transcription error codes.
const (
	CodeServiceNotConfigured ErrorCode = "service_not_configured"
	CodeInvalidAudioFormat   ErrorCode = "invalid_audio_format"
	CodeAudioTooLong         ErrorCode = "audio_too_long"
	CodeAudioTooShort        ErrorCode = "audio_too_short"
	CodeRateLimited          ErrorCode = "rate_limited"
	CodeAuthFailed           ErrorCode = "auth_failed"
	CodeProviderError        ErrorCode = "provider_error"
	CodeNetworkError         ErrorCode = "network_error"
	CodeInvalidRequest       ErrorCode = "invalid_request"
)

// statusCodes maps error codes to HTTP statuses.
var statusCodes = map[ErrorCode]int{
	CodeServiceNotConfigured: 503,
	CodeInvalidAudioFormat:   400,
	CodeAudioTooLong:         400,
	CodeAudioTooShort:        400,
	CodeRateLimited:          429,
	CodeAuthFailed:           401,
	CodeProviderError:        500,
	CodeNetworkError:         502,
	CodeInvalidRequest:       400,
}

// StatusCode returns the HTTP status for an error code, 500 for unknown ones.
func StatusCode(code ErrorCode) int {
	if status, ok := statusCodes[code]; ok {
		return status
	}
	return 500
}

// ErrorResponse is the JSON error body returned by the transcribe endpoint.
type ErrorResponse struct {
	Error     ErrorCode `json:"error"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

// Error is a structured provider failure. Providers that can classify their
// own failures should return it; the HTTP layer then skips the message
// heuristics entirely.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// NewError creates a structured transcription error.
func NewError(code ErrorCode, message string) *Error {
	retryable := code == CodeProviderError || code == CodeNetworkError || code == CodeRateLimited
	return &Error{Code: code, Message: message, Retryable: retryable}
}

// ValidAudioTypes is the accepted audio MIME type allow list.
var ValidAudioTypes = []string{
	"audio/mpeg",
	"audio/mp3",
	"audio/mp4",
	"audio/wav",
	"audio/webm",
	"audio/ogg",
	"audio/flac",
	"audio/aac",
}

// IsValidAudioType reports whether the MIME type is accepted. The base type
// before any ";" parameter is what counts; the empty string and
// application/octet-stream are tolerated because browsers report recorded
// blobs inconsistently.
func IsValidAudioType(mimeType string) bool {
	baseType := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	if baseType == "" || baseType == "application/octet-stream" {
		return true
	}
	for _, valid := range ValidAudioTypes {
		if baseType == valid {
			return true
		}
	}
	return false
}

// Classify converts a provider failure into an error response. A structured
// *Error is used as-is. Anything else falls back to substring heuristics over
// the lower-cased message; that mapping is best effort, not a contract the
// provider has to honor.
func Classify(err error) *ErrorResponse {
	var terr *Error
	if errors.As(err, &terr) {
		return &ErrorResponse{Error: terr.Code, Message: terr.Message, Retryable: terr.Retryable}
	}

	message := "Unknown error occurred"
	if err != nil {
		message = err.Error()
	}
	lowered := strings.ToLower(message)

	switch {
	case strings.Contains(lowered, "rate"),
		strings.Contains(lowered, "429"),
		strings.Contains(lowered, "too many"):
		return &ErrorResponse{
			Error:     CodeRateLimited,
			Message:   "Too many transcription requests. Please try again later.",
			Retryable: true,
		}
	case strings.Contains(lowered, "auth"),
		strings.Contains(lowered, "401"),
		strings.Contains(lowered, "api key"),
		strings.Contains(lowered, "unauthorized"):
		return &ErrorResponse{
			Error:   CodeAuthFailed,
			Message: "Transcription service authentication failed.",
		}
	case strings.Contains(lowered, "too long"),
		strings.Contains(lowered, "duration"),
		strings.Contains(lowered, "length"):
		return &ErrorResponse{
			Error:   CodeAudioTooLong,
			Message: "Audio recording is too long to transcribe.",
		}
	default:
		return &ErrorResponse{Error: CodeProviderError, Message: message, Retryable: true}
	}
}

// NewErrorResponse builds an error response with the given code and message,
// with the retryable flag implied by the code.
func NewErrorResponse(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:     code,
		Message:   message,
		Retryable: code == CodeProviderError || code == CodeNetworkError || code == CodeRateLimited,
	}
}
