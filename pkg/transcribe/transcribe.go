// Package transcribe runs live speech-to-text sessions for the kiosk.
//
// A Transcriber is one streaming connection to the service. A Controller
// drives a Transcriber and a pausable microphone through the session
// lifecycle:
//
//	Idle -> SessionOpen -> Listening <-> Paused -> Closed
//
// Every finalized utterance pauses capture and is handed to OnData; capture
// resumes when OnData says the session should continue.
package transcribe

import "context"

// EventKind identifies a transcription event.
type EventKind int

const (
	// EventPartial is interim text that may still change.
	EventPartial EventKind = iota
	// EventFinal is a finalized fragment. SpeechFinal marks an end of utterance.
	EventFinal
	// EventUtteranceEnd marks silence after speech with no pending final.
	EventUtteranceEnd
	// EventError carries a ServiceError. The connection stays open.
	EventError
	// EventClosed is sent once when the connection ends.
	EventClosed
)

var eventNames = [...]string{"partial", "final", "utterance_end", "error", "closed"}

// String returns the event kind name.
func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is one message from the transcription service.
type Event struct {
	Kind        EventKind
	Text        string
	SpeechFinal bool
	Err         error
}

// Transcriber is a live transcription connection.
type Transcriber interface {
	// Connect opens the connection and returns once the service accepts it.
	Connect(ctx context.Context) error

	// SendAudio streams PCM16 audio.
	SendAudio(pcm []byte) error

	// Events delivers service events until the connection closes. A new
	// channel is created on every Connect.
	Events() <-chan Event

	// Close ends the stream and the connection. It is safe to call twice.
	Close() error
}
