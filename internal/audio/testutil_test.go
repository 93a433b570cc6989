package audio

import (
	"encoding/binary"
	"math"
	"testing"
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

// buildWAV assembles a RIFF/WAVE byte stream around raw sample data.
// A fmtTag of formatExtensible writes the 40-byte extensible fmt chunk with
// subFormat as the effective tag.
func buildWAV(t *testing.T, fmtTag, subFormat uint16, bits, channels, rate int, data []byte) []byte {
	t.Helper()

	fmtSize := 16
	if fmtTag == formatExtensible {
		fmtSize = 40
	}
	fileSize := 4 + (8 + fmtSize) + (8 + len(data))

	buf := make([]byte, 0, 12+8+fmtSize+8+len(data))
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(fileSize))
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(fmtSize))
	buf = binary.LittleEndian.AppendUint16(buf, fmtTag)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(channels))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(rate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(rate*channels*bits/8))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(channels*bits/8))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(bits))
	if fmtTag == formatExtensible {
		buf = binary.LittleEndian.AppendUint16(buf, 22)           // cbSize
		buf = binary.LittleEndian.AppendUint16(buf, uint16(bits)) // valid bits
		buf = binary.LittleEndian.AppendUint32(buf, 0)            // channel mask
		buf = binary.LittleEndian.AppendUint16(buf, subFormat)
		// Remainder of the KSDATAFORMAT GUID.
		buf = append(buf, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71)
	}

	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(data)))
	buf = append(buf, data...)
	return buf
}

// pcm16Bytes interleaves per-channel float samples as 16-bit PCM.
func pcm16Bytes(channels ...[]float64) []byte {
	frames := len(channels[0])
	out := make([]byte, 0, frames*len(channels)*2)
	for i := 0; i < frames; i++ {
		for _, ch := range channels {
			v := int16(math.Round(clampUnit(ch[i]) * 32767.0))
			out = binary.LittleEndian.AppendUint16(out, uint16(v))
		}
	}
	return out
}

// pcm24Bytes interleaves per-channel float samples as 24-bit PCM.
func pcm24Bytes(channels ...[]float64) []byte {
	frames := len(channels[0])
	out := make([]byte, 0, frames*len(channels)*3)
	for i := 0; i < frames; i++ {
		for _, ch := range channels {
			v := int32(math.Round(clampUnit(ch[i]) * 8388607.0))
			out = append(out, byte(v), byte(v>>8), byte(v>>16))
		}
	}
	return out
}

// int32Bytes writes raw int32 samples little-endian.
func int32Bytes(samples []int32) []byte {
	out := make([]byte, 0, len(samples)*4)
	for _, v := range samples {
		out = binary.LittleEndian.AppendUint32(out, uint32(v))
	}
	return out
}

// float32Bytes writes float samples as little-endian IEEE float32.
func float32Bytes(samples []float64) []byte {
	out := make([]byte, 0, len(samples)*4)
	for _, v := range samples {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(float32(v)))
	}
	return out
}

func clampUnit(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}
