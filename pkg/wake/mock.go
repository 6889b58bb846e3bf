package wake

import (
	"context"
	"sync"
)

// MockRecognizer returns scripted transcripts in order, repeating the last.
type MockRecognizer struct {
	TranscribeFunc func(ctx context.Context, pcm []byte, sampleRate int) (string, error)

	mu          sync.Mutex
	transcripts []string
	calls       int
}

// NewMockRecognizer returns a recognizer that yields transcripts in order.
func NewMockRecognizer(transcripts ...string) *MockRecognizer {
	return &MockRecognizer{transcripts: transcripts}
}

// Transcribe returns the next scripted transcript.
func (m *MockRecognizer) Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error) {
	m.mu.Lock()
	i := m.calls
	m.calls++
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, pcm, sampleRate)
	}
	if len(m.transcripts) == 0 {
		return "", nil
	}
	if i >= len(m.transcripts) {
		i = len(m.transcripts) - 1
	}
	return m.transcripts[i], nil
}

// CallCount returns how many windows were transcribed.
func (m *MockRecognizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ Recognizer = (*MockRecognizer)(nil)
