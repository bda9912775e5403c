package flows

import (
	"encoding/binary"
	"math"
	"sync"
)

var fallbackOnce struct {
	sync.Once
	uri string
}

// FallbackAudioDataURI returns a short synthesized chime used in place
// of real speech when synthesis fails, typically under rate limiting.
// The clip is generated once and cached for the process lifetime.
func FallbackAudioDataURI() string {
	fallbackOnce.Do(func() {
		fallbackOnce.uri = PCMToWAVDataURI(EncodeWAV(fallbackChime(), speechChannels, speechSampleRate, speechBitsPerSample))
	})
	return fallbackOnce.uri
}

// fallbackChime renders two soft descending tones, about 0.4s total,
// as mono 24kHz 16-bit PCM.
func fallbackChime() []byte {
	const (
		toneDur = 0.2
		volume  = 0.25
	)
	freqs := []float64{660, 440}

	samplesPerTone := int(toneDur * speechSampleRate)
	pcm := make([]byte, 0, len(freqs)*samplesPerTone*2)
	for _, freq := range freqs {
		for i := 0; i < samplesPerTone; i++ {
			t := float64(i) / speechSampleRate
			// Linear fade-out per tone to avoid clicks at boundaries.
			env := 1 - float64(i)/float64(samplesPerTone)
			sample := volume * env * math.Sin(2*math.Pi*freq*t)
			pcm = binary.LittleEndian.AppendUint16(pcm, uint16(int16(sample*math.MaxInt16)))
		}
	}
	return pcm
}
