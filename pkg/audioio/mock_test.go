package audioio

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestMockSource_Tone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferDuration = 5 * time.Millisecond

	src := NewMockSource(cfg, nil, WithTone(440, 0.5))
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	chunk, err := src.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rms := CalculateRMS(chunk.Samples); rms < 0.05 {
		t.Errorf("expected an audible tone, rms = %v", rms)
	}
	if st := src.Stats(); !st.Running || st.Chunks == 0 || st.Backend != "mock" {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestMockSource_StopThenEOF(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferDuration = 5 * time.Millisecond
	src := NewMockSource(cfg, nil)

	ctx := context.Background()
	if _, err := src.Read(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("Read before Start: expected EOF, got %v", err)
	}

	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := src.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := src.Stop(); err != nil {
		t.Fatalf("second Stop should be a no-op, got %v", err)
	}

	deadline, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	for {
		_, err := src.Read(deadline)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("expected EOF after Stop, got %v", err)
		}
	}

	if err := src.Start(ctx); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	src.Close()
	if err := src.Start(ctx); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Start after Close: expected ErrClosedPipe, got %v", err)
	}
}

func TestMockSource_ContextCancelStops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferDuration = 5 * time.Millisecond
	src := NewMockSource(cfg, nil)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	cancel()

	deadline := time.Now().Add(time.Second)
	for src.Stats().Running {
		if time.Now().After(deadline) {
			t.Fatal("source still running after context cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMockSink_RequiresStart(t *testing.T) {
	sink := NewMockSink(SpeakerConfig(), nil)
	ctx := context.Background()

	chunk := AudioChunk{Samples: []int16{1, 2}, SampleRate: 24000, Channels: 1}
	if err := sink.Write(ctx, chunk); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("Write before Start: expected ErrClosedPipe, got %v", err)
	}

	if err := sink.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sink.Write(ctx, chunk); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if st := sink.Stats(); st.Chunks != 1 || st.Samples != 2 {
		t.Errorf("unexpected stats %+v", st)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := sink.Flush(canceled); !errors.Is(err, context.Canceled) {
		t.Errorf("Flush with canceled ctx: expected Canceled, got %v", err)
	}

	sink.Close()
	if err := sink.Write(ctx, chunk); err == nil {
		t.Error("expected Write after Close to fail")
	}
	if len(sink.Written()) != 1 {
		t.Errorf("expected 1 recorded chunk, got %d", len(sink.Written()))
	}
}
