package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gethub-app/gethub/internal/flows"
	"github.com/gethub-app/gethub/internal/llm"
)

type coachReplyRequest struct {
	Message        string        `json:"message"`
	History        []llm.Message `json:"history,omitempty"`
	NativeLanguage string        `json:"nativeLanguage,omitempty"`
	Scenario       string        `json:"scenario,omitempty"`
}

func (h *Handler) handleCoachReply(w http.ResponseWriter, r *http.Request) {
	var req coachReplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := flows.GenerateCommunicationFeedback(r.Context(), h.provider, flows.CommunicationInput{
		Message:        req.Message,
		History:        req.History,
		NativeLanguage: req.NativeLanguage,
		Scenario:       req.Scenario,
	})
	if err != nil {
		respondFlowError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

type coachSpeechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

func (h *Handler) handleCoachSpeech(w http.ResponseWriter, r *http.Request) {
	var req coachSpeechRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if h.speech == nil {
		respondJSON(w, http.StatusOK, flows.TextToSpeechOutput{
			AudioDataURI: flows.FallbackAudioDataURI(),
		})
		return
	}

	out, err := flows.TextToSpeech(r.Context(), h.speech, flows.TextToSpeechInput{
		Text:  req.Text,
		Voice: req.Voice,
	})
	if err != nil {
		var verr *flows.ValidationError
		if errors.As(err, &verr) {
			respondError(w, r, http.StatusBadRequest, "InvalidRequest")
			return
		}
		// Synthesis failures, including rate limiting, degrade to a
		// canned clip instead of failing the conversation turn.
		slog.Warn("speech synthesis failed, serving fallback audio", "error", err)
		respondJSON(w, http.StatusOK, flows.TextToSpeechOutput{
			AudioDataURI: flows.FallbackAudioDataURI(),
		})
		return
	}
	respondJSON(w, http.StatusOK, out)
}
