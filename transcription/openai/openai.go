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

// Package openai implements the transcription service on top of the OpenAI
// audio API.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"

	"trpc.group/trpc-go/trpc-agui-runtime/transcription"
)

// DefaultModel is the transcription model used when none is configured.
const DefaultModel = openai.AudioModelWhisper1

const defaultFilename = "audio.webm"

type options struct {
	apiKey        string
	baseURL       string
	model         openai.AudioModel
	openaiOptions []openaiopt.RequestOption
}

// Option configures the transcription service.
type Option func(*options)

// WithAPIKey sets the API key. Defaults to the OPENAI_API_KEY environment
// variable.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

// WithBaseURL sets the API base URL for OpenAI-compatible endpoints.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithModel overrides the transcription model.
func WithModel(model openai.AudioModel) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithOpenAIOptions appends extra request options passed through to the
// underlying OpenAI client.
func WithOpenAIOptions(opts ...openaiopt.RequestOption) Option {
	return func(o *options) {
		o.openaiOptions = append(o.openaiOptions, opts...)
	}
}

// Service transcribes audio through the OpenAI audio transcription API.
type Service struct {
	client openai.Client
	model  openai.AudioModel
}

// New creates an OpenAI-backed transcription service.
func New(opts ...Option) *Service {
	o := &options{
		apiKey: os.Getenv("OPENAI_API_KEY"),
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(o)
	}

	var clientOpts []openaiopt.RequestOption
	if o.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.apiKey))
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.baseURL))
	}
	clientOpts = append(clientOpts, o.openaiOptions...)

	return &Service{
		client: openai.NewClient(clientOpts...),
		model:  o.model,
	}
}

// TranscribeFile sends the audio payload to the transcription API and
// returns the recognized text. API failures with a known status code come
// back as *transcription.Error; anything else is returned as-is for the
// caller to classify.
func (s *Service) TranscribeFile(ctx context.Context, req *transcription.FileRequest) (string, error) {
	if req == nil || len(req.Data) == 0 {
		return "", transcription.NewError(
			transcription.CodeAudioTooShort,
			"Audio recording is empty",
		)
	}

	filename := req.Filename
	if filename == "" {
		filename = defaultFilename
	}

	resp, err := s.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(req.Data), filename, req.MimeType),
		Model: s.model,
	})
	if err != nil {
		return "", classifyAPIError(err)
	}
	return resp.Text, nil
}

// classifyAPIError maps OpenAI API errors with a recognizable status code to
// structured transcription errors.
func classifyAPIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	message := fmt.Sprintf("OpenAI transcription failed with status %d", apiErr.StatusCode)
	switch apiErr.StatusCode {
	case 401, 403:
		return transcription.NewError(transcription.CodeAuthFailed, message)
	case 429:
		return transcription.NewError(transcription.CodeRateLimited, message)
	case 413:
		return transcription.NewError(transcription.CodeAudioTooLong, message)
	case 400:
		return transcription.NewError(transcription.CodeInvalidAudioFormat, message)
	default:
		return transcription.NewError(transcription.CodeProviderError, message)
	}
}
