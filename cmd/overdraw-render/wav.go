package main

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// Frames per chunk read from the input file.
	bufferSize = 65536

	monoChannels   = 1
	stereoChannels = 2

	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	wavFormatPCM = 1
)

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file         *os.File
	decoder      *wav.Decoder
	rate         int
	channels     int
	bitDepth     int
	totalSamples int64
	format       *audio.Format
}

// openWAVInput opens a WAV file and checks that it holds mono or stereo
// signed integer PCM.
func openWAVInput(path string, verbose bool) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		_ = inputFile.Close()
		return nil, fmt.Errorf("unsupported WAV encoding %d: only integer PCM is supported", decoder.WavAudioFormat)
	}

	format := decoder.Format()
	channels := format.NumChannels
	if channels != monoChannels && channels != stereoChannels {
		_ = inputFile.Close()
		return nil, fmt.Errorf("unsupported channel count %d: want mono or stereo", channels)
	}
	bitDepth := int(decoder.BitDepth)
	if bitDepth != bitsPerSample16 && bitDepth != bitsPerSample24 && bitDepth != bitsPerSample32 {
		_ = inputFile.Close()
		return nil, fmt.Errorf("unsupported bit depth %d: want 16, 24 or 32", bitDepth)
	}

	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", format.SampleRate, channels, bitDepth)
	}

	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}

	return &wavInputInfo{
		file:         inputFile,
		decoder:      decoder,
		rate:         format.SampleRate,
		channels:     channels,
		bitDepth:     bitDepth,
		totalSamples: int64(duration.Seconds() * float64(format.SampleRate)),
		format:       format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// wavOutputWriter wraps the output file and its encoder.
type wavOutputWriter struct {
	file    *os.File
	encoder *wav.Encoder
}

// createWAVOutput creates the output file and a PCM encoder for it.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutputWriter{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitDepth, channels, wavFormatPCM),
	}, nil
}

// Write encodes one interleaved PCM buffer.
func (w *wavOutputWriter) Write(buf *audio.IntBuffer) error {
	if err := w.encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return w.file.Close()
}

// getMaxValue returns the full-scale integer for a bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// renderBuffers holds the preallocated conversion buffers for one chunk.
type renderBuffers struct {
	in        *audio.IntBuffer
	out       *audio.IntBuffer
	outData   []int
	left      []float64
	right     []float64
	maxVal    float64
	invMaxVal float64
}

func newRenderBuffers(channels, bitDepth int, format *audio.Format) *renderBuffers {
	maxVal := getMaxValue(bitDepth)
	outData := make([]int, bufferSize*channels)
	return &renderBuffers{
		in: &audio.IntBuffer{
			Data:           make([]int, bufferSize*channels),
			Format:         format,
			SourceBitDepth: bitDepth,
		},
		out: &audio.IntBuffer{
			Data:           outData,
			Format:         format,
			SourceBitDepth: bitDepth,
		},
		outData:   outData,
		left:      make([]float64, bufferSize),
		right:     make([]float64, bufferSize),
		maxVal:    maxVal,
		invMaxVal: 1 / maxVal,
	}
}

// deinterleaveInto converts interleaved PCM to the two float channels and
// returns the frame count. Mono input feeds both channels.
func deinterleaveInto(data []int, left, right []float64, channels int, invMaxVal float64) int {
	if channels == monoChannels {
		for i, s := range data {
			v := float64(s) * invMaxVal
			left[i], right[i] = v, v
		}
		return len(data)
	}

	frames := len(data) / stereoChannels
	for i := range frames {
		left[i] = float64(data[2*i]) * invMaxVal
		right[i] = float64(data[2*i+1]) * invMaxVal
	}
	return frames
}

// interleaveInto converts float channels back to PCM, clipping at full
// scale, and returns the number of ints written. Mono output keeps the
// left channel.
func interleaveInto(left, right []float64, dst []int, channels int, maxVal float64) int {
	if channels == monoChannels {
		for i, v := range left {
			dst[i] = toPCM(v, maxVal)
		}
		return len(left)
	}

	for i := range left {
		dst[2*i] = toPCM(left[i], maxVal)
		dst[2*i+1] = toPCM(right[i], maxVal)
	}
	return 2 * len(left)
}

func toPCM(v, maxVal float64) int {
	v = math.Max(-1, math.Min(v, 1))
	return int(math.Round(v * maxVal))
}

// peak returns the largest absolute value in s, or running if larger.
func peak(s []float64, running float64) float64 {
	for _, v := range s {
		running = math.Max(running, math.Abs(v))
	}
	return running
}
