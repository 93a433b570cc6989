package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// EncodeWAV writes samples as a mono 16-bit PCM WAV stream.
// Samples are clamped to [-1, 1] before quantization.
func EncodeWAV(w io.Writer, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("encode wav: invalid sample rate %d", sampleRate)
	}

	const (
		numChannels   = 1
		bitsPerSample = 16
	)
	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8
	dataSize := len(samples) * 2
	fileSize := 36 + dataSize

	hdr := make([]byte, 0, 44)
	hdr = append(hdr, "RIFF"...)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(fileSize))
	hdr = append(hdr, "WAVE"...)
	hdr = append(hdr, "fmt "...)
	hdr = binary.LittleEndian.AppendUint32(hdr, 16)
	hdr = binary.LittleEndian.AppendUint16(hdr, formatPCM)
	hdr = binary.LittleEndian.AppendUint16(hdr, numChannels)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(sampleRate))
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(byteRate))
	hdr = binary.LittleEndian.AppendUint16(hdr, uint16(blockAlign))
	hdr = binary.LittleEndian.AppendUint16(hdr, bitsPerSample)
	hdr = append(hdr, "data"...)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(dataSize))
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("encode wav: writing header: %w", err)
	}

	pcm := make([]byte, dataSize)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(math.Round(s*32767.0))))
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("encode wav: writing samples: %w", err)
	}
	return nil
}

// EncodeFile writes samples as a mono 16-bit PCM WAV file.
func EncodeFile(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := EncodeWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
