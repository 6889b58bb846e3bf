package audioio

import (
	"encoding/binary"
	"time"
)

// AudioChunk is a block of interleaved PCM16 samples.
type AudioChunk struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// NewChunk decodes little-endian PCM16 bytes into a chunk.
func NewChunk(data []byte, sampleRate, channels int) AudioChunk {
	return AudioChunk{
		Samples:    BytesToSamples(data),
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// Bytes encodes the samples as little-endian PCM16.
func (c *AudioChunk) Bytes() []byte {
	return SamplesToBytes(c.Samples)
}

// Silence returns a zeroed chunk shaped like c.
func (c *AudioChunk) Silence() AudioChunk {
	return AudioChunk{
		Samples:    make([]int16, len(c.Samples)),
		SampleRate: c.SampleRate,
		Channels:   c.Channels,
	}
}

// Duration is the playback length of the chunk.
func (c *AudioChunk) Duration() time.Duration {
	frames := c.Frames()
	if frames == 0 || c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// Frames is the number of samples per channel.
func (c *AudioChunk) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// BytesToSamples decodes little-endian PCM16. A trailing odd byte is ignored.
func BytesToSamples(data []byte) []int16 {
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return out
}

// SamplesToBytes encodes samples as little-endian PCM16.
func SamplesToBytes(samples []int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

// Resample converts mono samples between rates by linear interpolation,
// which is adequate for speech.
func Resample(samples []int16, fromRate, toRate int) []int16 {
	if fromRate == toRate || len(samples) == 0 || fromRate <= 0 || toRate <= 0 {
		return samples
	}

	n := len(samples) * toRate / fromRate
	out := make([]int16, n)
	last := len(samples) - 1
	step := float64(fromRate) / float64(toRate)

	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out[i] = samples[last]
			continue
		}
		a, b := float64(samples[j]), float64(samples[j+1])
		out[i] = int16(a + (pos-float64(j))*(b-a))
	}
	return out
}

// ResampleBytes is Resample over PCM16 bytes.
func ResampleBytes(data []byte, fromRate, toRate int) []byte {
	if fromRate == toRate {
		return data
	}
	return SamplesToBytes(Resample(BytesToSamples(data), fromRate, toRate))
}

// StereoToMono averages each left/right pair.
func StereoToMono(samples []int16) []int16 {
	out := make([]int16, len(samples)/2)
	for i := range out {
		out[i] = int16((int32(samples[2*i]) + int32(samples[2*i+1])) / 2)
	}
	return out
}

// CalculateRMS returns the mean signal power normalized to 0..1, where
// 1 is a full-scale square wave.
func CalculateRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	const full = 32767.0 * 32767.0
	var power float64
	for _, s := range samples {
		v := float64(s)
		power += v * v
	}
	return power / float64(len(samples)) / full
}
