// Package audio provides WAV decoding, encoding and sample rate conversion
// for the pitch analysis pipeline.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// ErrDecode is wrapped by every decoding failure so callers can classify
// malformed or unsupported containers with errors.Is.
var ErrDecode = errors.New("wav decode failed")

// WAV format tags from the fmt chunk.
const (
	formatPCM        = 0x0001
	formatIEEEFloat  = 0x0003
	formatExtensible = 0xFFFE
)

// Sample normalization divisors per bit depth.
const (
	scale16 = 32768.0
	scale24 = 8388608.0
	scale32 = 2147483648.0

	// floatSanityLimit bounds plausible normalized float PCM. Decoded 32-bit
	// values beyond it (or non-finite) mean the stream is integer PCM that
	// was labelled ambiguously.
	floatSanityLimit = 32.0
)

// Buffer holds normalized mono samples in [-1, 1] with their sample rate.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Empty reports whether the buffer contains no samples.
func (b Buffer) Empty() bool { return len(b.Samples) == 0 }

// Metadata describes the decoded container.
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	SampleFmt  string // "pcm" or "float"
	BitDepth   int
	Frames     int
}

// DecodeFile decodes a WAV file into a mono sample buffer.
// Multi-channel streams yield channel 0; channels are never averaged.
func DecodeFile(path string) (Buffer, *Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	buf, meta, err := Decode(f)
	if err != nil {
		return Buffer{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf, meta, nil
}

// wavFormat is the parsed fmt chunk.
type wavFormat struct {
	tag        uint16
	channels   int
	sampleRate int
	bitDepth   int
	subFormat  uint16 // extensible sub-format tag, 0 when absent/unknown
	extensible bool
}

// Decode reads a RIFF/WAVE stream and returns channel 0 as normalized floats.
//
// Supported sample encodings: 16/24/32-bit signed integer PCM and 32-bit
// IEEE float. The explicit format tag decides integer vs float; 32-bit
// streams with an ambiguous header are probed as float first and fall back
// to integer when the decoded values are clearly out of range.
func Decode(r io.Reader) (Buffer, *Metadata, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Buffer{}, nil, fmt.Errorf("%w: short RIFF header", ErrDecode)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Buffer{}, nil, fmt.Errorf("%w: not a RIFF/WAVE stream", ErrDecode)
	}

	var (
		format  *wavFormat
		data    []byte
		hasData bool
	)
	for !hasData {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return Buffer{}, nil, fmt.Errorf("%w: reading chunk header: %v", ErrDecode, err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			raw := make([]byte, size)
			if _, err := io.ReadFull(r, raw); err != nil {
				return Buffer{}, nil, fmt.Errorf("%w: truncated fmt chunk", ErrDecode)
			}
			f, err := parseFormat(raw)
			if err != nil {
				return Buffer{}, nil, err
			}
			format = f
		case "data":
			if format == nil {
				return Buffer{}, nil, fmt.Errorf("%w: data chunk before fmt chunk", ErrDecode)
			}
			data = make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return Buffer{}, nil, fmt.Errorf("%w: truncated data chunk (%d bytes declared)", ErrDecode, size)
			}
			hasData = true
		default:
			if err := skipChunk(r, size); err != nil {
				return Buffer{}, nil, err
			}
		}
		// RIFF chunks are word aligned; odd sizes carry one pad byte.
		if size%2 == 1 && !hasData {
			var pad [1]byte
			if _, err := io.ReadFull(r, pad[:]); err != nil && !errors.Is(err, io.EOF) {
				return Buffer{}, nil, fmt.Errorf("%w: reading chunk padding: %v", ErrDecode, err)
			}
		}
	}

	if format == nil {
		return Buffer{}, nil, fmt.Errorf("%w: missing fmt chunk", ErrDecode)
	}
	if !hasData {
		return Buffer{}, nil, fmt.Errorf("%w: missing data chunk", ErrDecode)
	}

	samples, sampleFmt, err := decodeSamples(format, data)
	if err != nil {
		return Buffer{}, nil, err
	}

	buf := Buffer{Samples: samples, SampleRate: format.sampleRate}
	meta := &Metadata{
		Duration:   buf.Duration(),
		SampleRate: format.sampleRate,
		Channels:   format.channels,
		SampleFmt:  sampleFmt,
		BitDepth:   format.bitDepth,
		Frames:     len(samples),
	}
	return buf, meta, nil
}

func skipChunk(r io.Reader, size uint32) error {
	if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
		return fmt.Errorf("%w: truncated %d-byte chunk", ErrDecode, size)
	}
	return nil
}

func parseFormat(raw []byte) (*wavFormat, error) {
	if len(raw) < 16 {
		return nil, fmt.Errorf("%w: fmt chunk too small (%d bytes)", ErrDecode, len(raw))
	}
	f := &wavFormat{
		tag:        binary.LittleEndian.Uint16(raw[0:2]),
		channels:   int(binary.LittleEndian.Uint16(raw[2:4])),
		sampleRate: int(binary.LittleEndian.Uint32(raw[4:8])),
		bitDepth:   int(binary.LittleEndian.Uint16(raw[14:16])),
	}
	if f.channels < 1 {
		return nil, fmt.Errorf("%w: no channels", ErrDecode)
	}
	if f.sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrDecode, f.sampleRate)
	}
	if f.tag == formatExtensible {
		f.extensible = true
		// cbSize(2) + validBits(2) + channelMask(4) + GUID(16); the first two
		// GUID bytes carry the effective format tag.
		if len(raw) >= 26 {
			f.subFormat = binary.LittleEndian.Uint16(raw[24:26])
		}
	}
	return f, nil
}

// effectiveTag resolves the sample encoding declared by the header.
// Returns 0 when the header does not settle integer vs float.
func (f *wavFormat) effectiveTag() uint16 {
	if f.extensible {
		switch f.subFormat {
		case formatPCM, formatIEEEFloat:
			return f.subFormat
		default:
			return 0
		}
	}
	return f.tag
}

func decodeSamples(f *wavFormat, data []byte) ([]float64, string, error) {
	bytesPerSample := f.bitDepth / 8
	if f.bitDepth%8 != 0 || bytesPerSample < 1 {
		return nil, "", fmt.Errorf("%w: unsupported bit depth %d", ErrDecode, f.bitDepth)
	}
	frameSize := bytesPerSample * f.channels
	frames := len(data) / frameSize // trailing partial frame bytes are ignored

	tag := f.effectiveTag()
	switch {
	case tag == formatIEEEFloat:
		if f.bitDepth != 32 {
			return nil, "", fmt.Errorf("%w: unsupported float bit depth %d", ErrDecode, f.bitDepth)
		}
		return decodeFloat32(data, frames, frameSize), "float", nil

	case tag == formatPCM || tag == 0:
		switch f.bitDepth {
		case 16:
			return decodeInt16(data, frames, frameSize), "pcm", nil
		case 24:
			return decodeInt24(data, frames, frameSize), "pcm", nil
		case 32:
			if tag == formatPCM && f.extensible {
				// Extensible sub-format GUID is explicit; no probing.
				return decodeInt32(data, frames, frameSize), "pcm", nil
			}
			// Plain 32-bit PCM labels are unreliable in the wild: many
			// writers store IEEE float under tag 1. Probe float first and
			// fall back to integer when values are clearly out of range.
			floats := decodeFloat32(data, frames, frameSize)
			if floatsPlausible(floats) {
				return floats, "float", nil
			}
			return decodeInt32(data, frames, frameSize), "pcm", nil
		default:
			return nil, "", fmt.Errorf("%w: unsupported sample width %d bits", ErrDecode, f.bitDepth)
		}

	default:
		return nil, "", fmt.Errorf("%w: unsupported format tag 0x%04X", ErrDecode, f.tag)
	}
}

func decodeInt16(data []byte, frames, frameSize int) []float64 {
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		v := int16(binary.LittleEndian.Uint16(data[i*frameSize:]))
		out[i] = float64(v) / scale16
	}
	return out
}

func decodeInt24(data []byte, frames, frameSize int) []float64 {
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		p := data[i*frameSize:]
		v := int32(p[0]) | int32(p[1])<<8 | int32(p[2])<<16
		if v&0x800000 != 0 {
			v -= 0x1000000 // sign extend
		}
		out[i] = float64(v) / scale24
	}
	return out
}

func decodeInt32(data []byte, frames, frameSize int) []float64 {
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		v := int32(binary.LittleEndian.Uint32(data[i*frameSize:]))
		out[i] = float64(v) / scale32
	}
	return out
}

func decodeFloat32(data []byte, frames, frameSize int) []float64 {
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		bits := binary.LittleEndian.Uint32(data[i*frameSize:])
		out[i] = float64(math.Float32frombits(bits))
	}
	return out
}

// floatsPlausible reports whether every value looks like normalized float
// PCM. Integer samples reinterpreted as float32 produce non-finite values or
// magnitudes far outside any sane signal range.
func floatsPlausible(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > floatSanityLimit {
			return false
		}
	}
	return true
}
