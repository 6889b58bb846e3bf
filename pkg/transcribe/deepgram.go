package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Deepgram is a live transcription connection to Deepgram.
type Deepgram struct {
	config *Config
	logger *slog.Logger

	mu      sync.Mutex // guards conn, events, cancel
	writeMu sync.Mutex // gorilla allows one concurrent writer
	conn    *websocket.Conn
	events  chan Event
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewDeepgram creates a Deepgram live client.
func NewDeepgram(opts ...Option) (*Deepgram, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Deepgram{
		config: cfg,
		logger: cfg.Logger.With("component", "transcribe.deepgram"),
	}, nil
}

// URL returns the streaming URL with the session query.
func (d *Deepgram) URL() string {
	q := url.Values{}
	q.Set("model", d.config.Model)
	q.Set("language", d.config.Language)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(d.config.SampleRate))
	q.Set("channels", strconv.Itoa(d.config.Channels))
	q.Set("endpointing", strconv.FormatInt(d.config.Endpointing.Milliseconds(), 10))
	q.Set("interim_results", "true")
	q.Set("smart_format", "true")
	if d.config.UtteranceEnd > 0 {
		q.Set("utterance_end_ms", strconv.FormatInt(d.config.UtteranceEnd.Milliseconds(), 10))
	}
	return d.config.BaseURL + "?" + q.Encode()
}

// Connect dials the streaming endpoint and starts the reader and KeepAlive loops.
func (d *Deepgram) Connect(ctx context.Context) error {
	d.mu.Lock()
	if d.conn != nil {
		d.mu.Unlock()
		return ErrAlreadyConnected
	}
	d.mu.Unlock()

	headers := http.Header{}
	headers.Set("Authorization", "Token "+d.config.APIKey)

	dialer := websocket.Dialer{HandshakeTimeout: d.config.Timeout}

	d.logger.Info("connecting to Deepgram live",
		"model", d.config.Model,
		"sample_rate", d.config.SampleRate,
	)

	conn, resp, err := dialer.DialContext(ctx, d.URL(), headers)
	if err != nil {
		if resp != nil {
			msg := ""
			if resp.Body != nil {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
				msg = string(body)
			}
			return &APIError{StatusCode: resp.StatusCode, Message: msg, Provider: providerDeepgram}
		}
		return fmt.Errorf("transcribe: dial: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	events := make(chan Event, 64)

	d.mu.Lock()
	d.conn = conn
	d.events = events
	d.cancel = cancel
	d.mu.Unlock()

	d.wg.Add(2)
	go d.readLoop(loopCtx, conn, events)
	go d.keepAlive(loopCtx, conn)

	d.logger.Info("connected to Deepgram live")
	return nil
}

// SendAudio writes a binary audio frame.
func (d *Deepgram) SendAudio(pcm []byte) error {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	return conn.WriteMessage(websocket.BinaryMessage, pcm)
}

// Events returns the event channel of the current connection.
func (d *Deepgram) Events() <-chan Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.events
}

// Close sends CloseStream, waits briefly for the service to flush, and
// closes the socket.
func (d *Deepgram) Close() error {
	d.mu.Lock()
	conn := d.conn
	cancel := d.cancel
	d.conn = nil
	d.cancel = nil
	d.mu.Unlock()

	if conn == nil {
		return nil
	}
	cancel()

	d.writeMu.Lock()
	_ = conn.WriteJSON(map[string]string{"type": "CloseStream"})
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	d.writeMu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		conn.Close()
		<-done
	}
	conn.Close()

	d.logger.Info("disconnected from Deepgram live")
	return nil
}

func (d *Deepgram) keepAlive(ctx context.Context, conn *websocket.Conn) {
	defer d.wg.Done()
	if d.config.KeepAlive <= 0 {
		return
	}

	ticker := time.NewTicker(d.config.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.writeMu.Lock()
			err := conn.WriteJSON(map[string]string{"type": "KeepAlive"})
			d.writeMu.Unlock()
			if err != nil {
				d.logger.Debug("keepalive failed", "error", err)
				return
			}
		}
	}
}

// liveMessage covers the Deepgram live message types we consume.
type liveMessage struct {
	Type        string `json:"type"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`
	Channel     struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
	Description string `json:"description"`
	Message     string `json:"message"`
	ErrCode     string `json:"err_code"`
	ErrMsg      string `json:"err_msg"`
}

// readLoop forwards events until the socket fails. After Close cancels
// ctx, pending events are dropped.
func (d *Deepgram) readLoop(ctx context.Context, conn *websocket.Conn, events chan<- Event) {
	defer d.wg.Done()
	defer close(events)

	send := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			ev := Event{Kind: EventClosed}
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				ev.Err = fmt.Errorf("%w: %v", ErrConnectionClosed, err)
			}
			send(ev)
			return
		}

		if ev, ok := d.parse(data); ok {
			if !send(ev) {
				return
			}
		}
	}
}

func (d *Deepgram) parse(data []byte) (Event, bool) {
	var msg liveMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return Event{Kind: EventError, Err: &ServiceError{Provider: providerDeepgram, Message: "invalid message", Err: err}}, true
	}

	switch msg.Type {
	case "Results":
		text := ""
		if len(msg.Channel.Alternatives) > 0 {
			text = msg.Channel.Alternatives[0].Transcript
		}
		if !msg.IsFinal {
			return Event{Kind: EventPartial, Text: text}, true
		}
		return Event{Kind: EventFinal, Text: text, SpeechFinal: msg.SpeechFinal}, true

	case "UtteranceEnd":
		return Event{Kind: EventUtteranceEnd}, true

	case "Error":
		text := msg.Description
		if text == "" {
			text = msg.Message
		}
		if text == "" {
			text = msg.ErrMsg
		}
		return Event{Kind: EventError, Err: &ServiceError{Provider: providerDeepgram, Message: text}}, true

	case "Metadata", "SpeechStarted":
		d.logger.Debug("deepgram message", "type", msg.Type)
		return Event{}, false
	}

	if msg.ErrCode != "" {
		return Event{Kind: EventError, Err: &ServiceError{Provider: providerDeepgram, Message: msg.ErrCode + ": " + msg.ErrMsg}}, true
	}
	return Event{}, false
}

var _ Transcriber = (*Deepgram)(nil)
