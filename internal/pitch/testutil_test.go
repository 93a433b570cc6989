package pitch

import (
	"math"

	"github.com/linuxmatters/jivepitch/internal/audio"
)

// makeSine generates a sine tone as normalized float samples.
func makeSine(freq float64, sampleRate int, seconds, amplitude float64) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = amplitude * math.Sin(2.0*math.Pi*freq*t)
	}
	return out
}

// toneBuffer wraps a sine tone in a sample buffer.
func toneBuffer(freq float64, sampleRate int, seconds, amplitude float64) audio.Buffer {
	return audio.Buffer{Samples: makeSine(freq, sampleRate, seconds, amplitude), SampleRate: sampleRate}
}

// silenceBuffer returns an all-zero sample buffer.
func silenceBuffer(sampleRate int, seconds float64) audio.Buffer {
	return audio.Buffer{Samples: make([]float64, int(seconds*float64(sampleRate))), SampleRate: sampleRate}
}
