// Package audio serializes everything the kiosk says.
//
// A Coordinator owns one FIFO queue and one worker, so fillers, canned
// phrases and synthesized replies never overlap. Voice layers the phrase
// library and text-to-speech on top of it.
package audio

import "time"

// Clip is mono PCM16 little-endian audio ready to play.
type Clip struct {
	Name       string
	PCM        []byte
	SampleRate int
}

// Duration returns the playback time of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	samples := len(c.PCM) / 2
	return time.Duration(samples) * time.Second / time.Duration(c.SampleRate)
}

// Empty reports whether the clip has no audio.
func (c Clip) Empty() bool {
	return len(c.PCM) < 2
}

// Silence returns a clip of d zeroed audio at rate.
func Silence(d time.Duration, rate int) Clip {
	samples := int(d.Seconds() * float64(rate))
	return Clip{Name: "silence", PCM: make([]byte, samples*2), SampleRate: rate}
}
