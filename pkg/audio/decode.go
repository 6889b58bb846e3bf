package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/hraban/opus.v2"

	"github.com/teslashibe/go-kiosk/pkg/audioio"
)

// ClipRate is the sample rate of stored .pcm clips.
const ClipRate = 24000

// opusRate is the rate libopusfile always decodes to.
const opusRate = 48000

// Normalize resamples clip to ClipRate.
func Normalize(clip Clip) Clip {
	if clip.SampleRate == ClipRate || clip.SampleRate <= 0 {
		return clip
	}
	return Clip{
		Name:       clip.Name,
		PCM:        audioio.ResampleBytes(clip.PCM, clip.SampleRate, ClipRate),
		SampleRate: ClipRate,
	}
}

// LoadClip reads a .opus (Ogg Opus, mono) or .pcm (raw PCM16 at ClipRate) file.
func LoadClip(path string) (Clip, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pcm":
		data, err := os.ReadFile(path)
		if err != nil {
			return Clip{}, fmt.Errorf("audio: read clip: %w", err)
		}
		if len(data) < 2 {
			return Clip{}, fmt.Errorf("%w: %s", ErrEmptyClip, path)
		}
		return Clip{Name: name, PCM: data, SampleRate: ClipRate}, nil

	case ".opus", ".ogg":
		f, err := os.Open(path)
		if err != nil {
			return Clip{}, fmt.Errorf("audio: open clip: %w", err)
		}
		defer f.Close()
		clip, err := DecodeOpus(f)
		if err != nil {
			return Clip{}, fmt.Errorf("audio: decode %s: %w", path, err)
		}
		clip.Name = name
		return Normalize(clip), nil
	}

	return Clip{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// DecodeOpus decodes a mono Ogg Opus stream to 48 kHz PCM16.
func DecodeOpus(r io.Reader) (Clip, error) {
	stream, err := opus.NewStream(r)
	if err != nil {
		return Clip{}, err
	}
	defer stream.Close()

	var samples []int16
	buf := make([]int16, opusRate/50)
	for {
		n, err := stream.Read(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Clip{}, err
		}
		samples = append(samples, buf[:n]...)
	}
	if len(samples) == 0 {
		return Clip{}, ErrEmptyClip
	}

	return Clip{PCM: audioio.SamplesToBytes(samples), SampleRate: opusRate}, nil
}

// SavePCM writes clip as raw PCM16 at ClipRate, replacing path atomically.
func SavePCM(path string, clip Clip) error {
	clip = Normalize(clip)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("audio: create phrase dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, clip.PCM, 0o644); err != nil {
		return fmt.Errorf("audio: write clip: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("audio: rename clip: %w", err)
	}
	return nil
}
