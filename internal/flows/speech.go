package flows

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gethub-app/gethub/internal/llm"
)

// Speech voices offered to the student. Unknown voices fall back to
// the male voice rather than erroring.
const (
	VoiceMale   = "Algenib"
	VoiceFemale = "Schedar"
)

const (
	speechSampleRate    = 24000
	speechChannels      = 1
	speechBitsPerSample = 16
)

// TextToSpeechInput is a request to speak a piece of text aloud.
type TextToSpeechInput struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// TextToSpeechOutput carries the synthesized audio as a WAV data URI
// ready for an HTML audio element.
type TextToSpeechOutput struct {
	AudioDataURI string `json:"audioDataUri"`
}

// TextToSpeech synthesizes speech for the given text and returns it as
// a data URI. The provider emits raw mono 24kHz 16-bit PCM; this wraps
// it in a WAV container. Failures return a GenerationError so callers
// can substitute fallback audio.
func TextToSpeech(ctx context.Context, sp llm.SpeechProvider, in TextToSpeechInput) (*TextToSpeechOutput, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, validationErr("text", "must not be empty")
	}

	voice := in.Voice
	if voice != VoiceMale && voice != VoiceFemale {
		voice = VoiceMale
	}

	pcm, err := sp.GenerateSpeech(ctx, llm.SpeechRequest{Text: in.Text, Voice: voice})
	if err != nil {
		return nil, &GenerationError{Op: "text to speech", Err: err}
	}
	if len(pcm) == 0 {
		return nil, &GenerationError{Op: "text to speech", Err: errors.New("provider returned no audio")}
	}

	wav := EncodeWAV(pcm, speechChannels, speechSampleRate, speechBitsPerSample)
	return &TextToSpeechOutput{AudioDataURI: PCMToWAVDataURI(wav)}, nil
}

// PCMToWAVDataURI base64-encodes an already-containered WAV file as a
// browser-playable data URI.
func PCMToWAVDataURI(wav []byte) string {
	return "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wav)
}
