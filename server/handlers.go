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
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"trpc.group/trpc-go/trpc-agui-runtime/agent"
	"trpc.group/trpc-go/trpc-agui-runtime/agui"
	"trpc.group/trpc-go/trpc-agui-runtime/log"
	"trpc.group/trpc-go/trpc-agui-runtime/runner"
	"trpc.group/trpc-go/trpc-agui-runtime/runtime"
	"trpc.group/trpc-go/trpc-agui-runtime/transcription"
)

// handlers implements the protocol operations shared by the multi-route and
// single-route servers.
type handlers struct {
	rt *runtime.Runtime
}

// lookupAgent resolves an agent id to its registry template. It writes the
// error response itself when the agent cannot be served.
func (h *handlers) lookupAgent(w http.ResponseWriter, r *http.Request, agentID, failure string) (agent.Agent, bool) {
	ag, ok, err := h.rt.Agent(r.Context(), agentID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, failure, err.Error())
		return nil, false
	}
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Agent not found",
			fmt.Sprintf("Agent '%s' does not exist", agentID))
		return nil, false
	}
	return ag, true
}

// handleRun starts a new agent run and streams its events. The SSE response
// is committed before the body is parsed, so body errors arrive as a
// terminal error event on an otherwise successful stream.
func (h *handlers) handleRun(w http.ResponseWriter, r *http.Request, agentID string) {
	ag, ok := h.lookupAgent(w, r, agentID, "Failed to run agent")
	if !ok {
		return
	}

	clone := ag.Clone()
	forwarded := agui.ExtractForwardableHeaders(r.Header)
	if injectable, ok := clone.(agent.HeaderInjectable); ok {
		injectable.InjectHeaders(forwarded)
	}

	stream := newEventStream(w)
	stream.commit()
	defer stream.close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		stream.send(r.Context(), aguievents.NewRunErrorEvent(
			fmt.Sprintf("failed to read request body: %v", err)))
		return
	}
	input, err := agui.ParseRunAgentInput(body)
	if err != nil {
		stream.send(r.Context(), aguievents.NewRunErrorEvent(
			fmt.Sprintf("invalid run agent input: %v", err)))
		return
	}

	ch, err := h.rt.Runner().Run(r.Context(), &runner.RunRequest{
		ThreadID: input.ThreadID,
		Agent:    clone,
		Input:    input,
	})
	if err != nil {
		stream.send(r.Context(), aguievents.NewRunErrorEvent(err.Error(),
			aguievents.WithRunID(input.RunID)))
		return
	}
	h.relay(r, stream, ch)
}

// handleConnect attaches to the event stream of an existing run. Unlike run,
// the body is validated before the stream is committed so the client gets a
// synchronous 400 on a bad reconnect.
func (h *handlers) handleConnect(w http.ResponseWriter, r *http.Request, agentID string) {
	if _, ok := h.lookupAgent(w, r, agentID, "Failed to connect to agent"); !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	input, err := agui.ParseRunAgentInput(body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	ch, err := h.rt.Runner().Connect(r.Context(), &runner.ConnectRequest{
		ThreadID: input.ThreadID,
		Headers:  agui.ExtractForwardableHeaders(r.Header),
	})
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to connect to agent", err.Error())
		return
	}

	stream := newEventStream(w)
	stream.commit()
	defer stream.close()
	h.relay(r, stream, ch)
}

// relay forwards runner events to the SSE stream in order, one write per
// event. The channel is always drained to completion so the runner never
// blocks on a departed client.
func (h *handlers) relay(r *http.Request, stream *eventStream, ch <-chan aguievents.Event) {
	for event := range ch {
		stream.send(r.Context(), event)
	}
}

// stopInterrupt mirrors the terminal error a stopped run emits on its
// stream.
type stopInterrupt struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type stopResponse struct {
	Stopped   bool           `json:"stopped"`
	Message   string         `json:"message,omitempty"`
	Interrupt *stopInterrupt `json:"interrupt,omitempty"`
}

// handleStop requests a stop of the active run on a thread. Stopping a
// thread without an active run is a benign no-op, not an error.
func (h *handlers) handleStop(w http.ResponseWriter, r *http.Request, agentID, threadID string) {
	if _, ok := h.lookupAgent(w, r, agentID, "Failed to stop agent"); !ok {
		return
	}

	stopped, err := h.rt.Runner().Stop(r.Context(), &runner.StopRequest{ThreadID: threadID})
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to stop agent", err.Error())
		return
	}
	if !stopped {
		writeJSON(w, http.StatusOK, stopResponse{
			Stopped: false,
			Message: fmt.Sprintf("No active run found for thread '%s'", threadID),
		})
		return
	}
	writeJSON(w, http.StatusOK, stopResponse{
		Stopped: true,
		Interrupt: &stopInterrupt{
			Type:    "RUN_ERROR",
			Message: "Run stopped by user",
			Code:    "STOPPED",
		},
	})
}

// handleInfo serves the runtime capability document.
func (h *handlers) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.rt.Info(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to get runtime info", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type transcribeResponse struct {
	Text string `json:"text"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

type base64AudioInput struct {
	Audio    string `json:"audio"`
	MimeType string `json:"mimeType"`
	Filename string `json:"filename"`
}

// handleTranscribe converts an uploaded audio blob to text. Audio arrives
// either as a multipart form with an "audio" file or as JSON carrying
// base64 data.
func (h *handlers) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	svc := h.rt.TranscriptionService()
	if svc == nil {
		writeTranscriptionError(w, transcription.NewErrorResponse(
			transcription.CodeServiceNotConfigured,
			"Transcription service is not configured"))
		return
	}

	contentType := r.Header.Get("Content-Type")
	var (
		req     *transcription.FileRequest
		errResp *transcription.ErrorResponse
	)
	switch {
	case strings.Contains(contentType, "multipart/form-data"):
		req, errResp = audioFromForm(r)
	case strings.Contains(contentType, "application/json"):
		req, errResp = audioFromJSON(r)
	default:
		errResp = transcription.NewErrorResponse(
			transcription.CodeInvalidRequest,
			"Request must be multipart/form-data or application/json with base64 audio")
	}
	if errResp != nil {
		writeTranscriptionError(w, errResp)
		return
	}

	if !transcription.IsValidAudioType(req.MimeType) {
		writeTranscriptionError(w, transcription.NewErrorResponse(
			transcription.CodeInvalidAudioFormat,
			fmt.Sprintf("Unsupported audio format: %s", req.MimeType)))
		return
	}

	text, err := svc.TranscribeFile(r.Context(), req)
	if err != nil {
		log.Errorf("transcription failed: %v", err)
		writeTranscriptionError(w, transcription.Classify(err))
		return
	}
	writeJSON(w, http.StatusOK, transcribeResponse{
		Text: text,
		Size: req.Size,
		Type: req.MimeType,
	})
}

// audioFromForm extracts the audio file from a multipart form.
func audioFromForm(r *http.Request) (*transcription.FileRequest, *transcription.ErrorResponse) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, transcription.NewErrorResponse(
				transcription.CodeInvalidRequest,
				"No audio file found in form data. Please include an 'audio' field.")
		}
		return nil, transcription.Classify(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, transcription.Classify(err)
	}
	return &transcription.FileRequest{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     int64(len(data)),
		Data:     data,
	}, nil
}

// audioFromJSON extracts base64 audio from a JSON body. A data URL prefix
// ("data:audio/webm;base64,") is tolerated.
func audioFromJSON(r *http.Request) (*transcription.FileRequest, *transcription.ErrorResponse) {
	var input base64AudioInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Audio == "" {
		return nil, transcription.NewErrorResponse(
			transcription.CodeInvalidRequest,
			"Request must include 'audio' field with base64-encoded audio data")
	}
	if input.MimeType == "" {
		return nil, transcription.NewErrorResponse(
			transcription.CodeInvalidRequest,
			"Request must include 'mimeType' field")
	}

	encoded := input.Audio
	if idx := strings.Index(encoded, ","); idx >= 0 {
		encoded = encoded[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, transcription.NewErrorResponse(
			transcription.CodeInvalidRequest,
			"Invalid base64 audio data")
	}

	filename := input.Filename
	if filename == "" {
		filename = "audio"
	}
	return &transcription.FileRequest{
		Filename: filename,
		MimeType: input.MimeType,
		Size:     int64(len(data)),
		Data:     data,
	}, nil
}

func writeTranscriptionError(w http.ResponseWriter, resp *transcription.ErrorResponse) {
	writeJSON(w, transcription.StatusCode(resp.Error), resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSONError(w http.ResponseWriter, status int, errText, message string) {
	writeJSON(w, status, errorBody{Error: errText, Message: message})
}
