package transcribe

import (
	"context"
	"sync"
)

// MockTranscriber is a scriptable Transcriber for tests. Use Emit to
// deliver events to the connected session.
type MockTranscriber struct {
	// ConnectFunc, when set, replaces the default Connect behaviour.
	ConnectFunc func(ctx context.Context) error

	mu        sync.Mutex
	events    chan Event
	connected bool
	connects  int
	closes    int
	audio     int
}

// NewMockTranscriber creates a disconnected mock.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// Connect opens a new event channel.
func (m *MockTranscriber) Connect(ctx context.Context) error {
	if m.ConnectFunc != nil {
		if err := m.ConnectFunc(ctx); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connected {
		return ErrAlreadyConnected
	}
	m.connected = true
	m.connects++
	m.events = make(chan Event, 64)
	return nil
}

// SendAudio counts the bytes sent.
func (m *MockTranscriber) SendAudio(pcm []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}
	m.audio += len(pcm)
	return nil
}

// Events returns the current event channel.
func (m *MockTranscriber) Events() <-chan Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

// Close closes the event channel.
func (m *MockTranscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return nil
	}
	m.connected = false
	m.closes++
	close(m.events)
	return nil
}

// Emit delivers ev to the connected session. It reports false when not connected.
func (m *MockTranscriber) Emit(ev Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return false
	}
	m.events <- ev
	return true
}

// Final emits a finalized utterance.
func (m *MockTranscriber) Final(text string) bool {
	return m.Emit(Event{Kind: EventFinal, Text: text, SpeechFinal: true})
}

// Connected reports whether a connection is open.
func (m *MockTranscriber) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Connects returns how many times Connect succeeded.
func (m *MockTranscriber) Connects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connects
}

// Closes returns how many connections were closed.
func (m *MockTranscriber) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// AudioBytes returns the total audio bytes sent.
func (m *MockTranscriber) AudioBytes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.audio
}

var _ Transcriber = (*MockTranscriber)(nil)
