// Package hub fans display updates out to websocket clients. A single
// goroutine owns the client set; connections join, leave and receive
// broadcasts through its channels.
package hub

// MessageType selects the websocket frame type a Message is written as.
type MessageType int

const (
	JSONMessage   MessageType = iota // text frame
	BinaryMessage                    // binary frame
)

// Message is one pre-encoded frame.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps already-encoded JSON.
func NewJSONMessage(data []byte) Message { return Message{Type: JSONMessage, Data: data} }
