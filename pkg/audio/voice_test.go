package audio_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teslashibe/go-kiosk/pkg/audio"
	"github.com/teslashibe/go-kiosk/pkg/audioio"
	"github.com/teslashibe/go-kiosk/pkg/tts"
)

func newVoice(t *testing.T, synth tts.Provider, opts ...audio.VoiceOption) (*audio.Voice, *audio.MockPlayer) {
	t.Helper()
	player := audio.NewMockPlayer()
	coord := audio.NewCoordinator(player)
	t.Cleanup(func() { coord.Close() })

	lib := audio.NewLibrary(audio.DefaultPhrases(), audio.WithSynthesizer(tts.NewMock()))
	return audio.NewVoice(coord, lib, synth, opts...), player
}

func TestVoice_SpeakQueuesReply(t *testing.T) {
	v, player := newVoice(t, tts.NewMock())

	ctx := context.Background()
	if err := v.Speak(ctx, "Your order has been confirmed."); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if !v.WaitUntilIdle(ctx) {
		t.Fatal("expected queue to drain")
	}

	names := player.Names()
	if len(names) != 1 || names[0] != "reply" {
		t.Errorf("expected one reply clip, got %v", names)
	}
}

func TestVoice_SpeakFailureIsSkipped(t *testing.T) {
	v, player := newVoice(t, tts.WithError(errors.New("tts down")))

	ctx := context.Background()
	if err := v.Speak(ctx, "hello"); err == nil {
		t.Error("expected the synthesis error to be returned")
	}
	v.WaitUntilIdle(ctx)
	if n := len(player.Clips()); n != 0 {
		t.Errorf("expected nothing played, got %d clips", n)
	}
}

func TestVoice_FillerDelay(t *testing.T) {
	v, player := newVoice(t, tts.NewMock(), audio.WithFillerDelay(25*time.Millisecond))

	ctx := context.Background()
	start := time.Now()
	v.Filler(ctx, 0)
	v.WaitUntilIdle(ctx)

	if time.Since(start) < 25*time.Millisecond {
		t.Error("filler played before its delay")
	}
	names := player.Names()
	if len(names) != 1 || names[0] != audio.Slug(audio.DefaultPhrases().Fillers[0]) {
		t.Errorf("expected first filler, got %v", names)
	}
}

func TestVoice_GreetThenIntermediateOrder(t *testing.T) {
	v, player := newVoice(t, tts.NewMock())

	ctx := context.Background()
	v.Greet(ctx)
	v.Intermediate(ctx, "confirm_order")
	v.Intermediate(ctx, "")
	v.Speak(ctx, "Done.")
	v.WaitUntilIdle(ctx)

	names := player.Names()
	if len(names) != 3 {
		t.Fatalf("expected greeting, phrase and reply, got %v", names)
	}
	if names[2] != "reply" {
		t.Errorf("expected reply last, got %v", names)
	}
}

func TestSpeaker_PlaysThroughSink(t *testing.T) {
	sink := audioio.NewMockSink(audioio.SpeakerConfig(), nil)
	ctx := context.Background()
	if err := sink.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer sink.Close()

	var started, ended int
	sp := audio.NewSpeaker(sink)
	sp.OnPlaybackStart = func(audio.Clip) { started++ }
	sp.OnPlaybackEnd = func(audio.Clip) { ended++ }

	clip := audio.Silence(20*time.Millisecond, 24000)
	if err := sp.Play(ctx, clip); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if started != 1 || ended != 1 {
		t.Errorf("callbacks: started=%d ended=%d", started, ended)
	}
	if sp.IsSpeaking() {
		t.Error("expected IsSpeaking false after Play returns")
	}

	written := sink.Written()
	if len(written) != 1 || len(written[0].Samples) != 480 {
		t.Errorf("unexpected sink writes: %d", len(written))
	}

	if err := sp.Play(ctx, audio.Clip{}); !errors.Is(err, audio.ErrEmptyClip) {
		t.Errorf("expected ErrEmptyClip, got %v", err)
	}
}
