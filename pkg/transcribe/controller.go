package transcribe

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/teslashibe/go-kiosk/pkg/audioio"
)

// State is the lifecycle state of a Controller.
type State int

const (
	StateIdle State = iota
	StateSessionOpen
	StateListening
	StatePaused
	StateClosed
)

var stateNames = [...]string{"idle", "session_open", "listening", "paused", "closed"}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Handlers are the session callbacks. OnData is required.
type Handlers struct {
	// OnOpen runs once the service accepts the connection.
	OnOpen func()

	// OnData receives each finalized utterance while capture is paused and
	// reports whether the session should close.
	OnData func(ctx context.Context, text string) (shouldClose bool)

	// OnStream receives interim text.
	OnStream func(text string)

	// OnError receives service errors. The session stays open.
	OnError func(err error)
}

// Observer counts transcript events by kind.
type Observer interface {
	TranscriptObserved(kind string)
}

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	// Buffered joins final fragments until the service marks the end of
	// speech, instead of treating every final fragment as an utterance.
	Buffered bool

	// Async runs OnData on a worker goroutine. The controller keeps
	// draining events and resumes capture only after the worker reports
	// through Done.
	Async bool

	Observer Observer
	Logger   *slog.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*ControllerConfig)

// WithBuffering enables fragment buffering.
func WithBuffering() ControllerOption {
	return func(c *ControllerConfig) { c.Buffered = true }
}

// WithAsyncHandler runs OnData off the event loop.
func WithAsyncHandler() ControllerOption {
	return func(c *ControllerConfig) { c.Async = true }
}

// WithObserver sets the transcript observer.
func WithObserver(o Observer) ControllerOption {
	return func(c *ControllerConfig) { c.Observer = o }
}

// WithControllerLogger sets the logger.
func WithControllerLogger(l *slog.Logger) ControllerOption {
	return func(c *ControllerConfig) { c.Logger = l }
}

// Controller owns one live session at a time: the transcription
// connection plus the pausable microphone feeding it.
type Controller struct {
	transcriber Transcriber
	mic         *audioio.Pausable
	config      ControllerConfig
	logger      *slog.Logger

	mu    sync.Mutex
	state State

	done chan bool
}

// NewController creates a Controller in StateIdle.
func NewController(t Transcriber, mic *audioio.Pausable, opts ...ControllerOption) *Controller {
	cfg := ControllerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		transcriber: t,
		mic:         mic,
		config:      cfg,
		logger:      cfg.Logger.With("component", "transcribe.controller"),
		done:        make(chan bool, 1),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()
	if prev != s {
		c.logger.Debug("state", "from", prev, "to", s)
	}
}

// Done delivers the close decision for the utterance handed to an async
// OnData. It is the only way a paused async session resumes or closes.
func (c *Controller) Done(shouldClose bool) {
	select {
	case c.done <- shouldClose:
	default:
		c.logger.Warn("completion signal dropped: no utterance pending")
	}
}

// Run opens one session and processes utterances until OnData asks to
// close or ctx ends. The microphone and the connection are both closed
// on return.
func (c *Controller) Run(ctx context.Context, h Handlers) error {
	if err := c.begin(h); err != nil {
		return err
	}
	defer c.setState(StateClosed)

	if err := c.mic.Start(ctx); err != nil {
		return err
	}
	defer c.mic.Stop()

	_, err := c.session(ctx, h, false)
	return err
}

// Interact runs turns in a loop. Each turn opens a fresh connection, waits
// for one utterance, closes the connection, then calls OnData with capture
// paused. The microphone stays up between turns. It returns when OnData
// asks to close or ctx ends.
func (c *Controller) Interact(ctx context.Context, h Handlers) error {
	if err := c.begin(h); err != nil {
		return err
	}
	defer c.setState(StateClosed)

	if err := c.mic.Start(ctx); err != nil {
		return err
	}
	defer c.mic.Stop()

	for {
		text, err := c.session(ctx, h, true)
		if err != nil {
			return err
		}
		if text == "" {
			return nil
		}

		c.mic.Pause()
		c.setState(StatePaused)
		c.observe("utterance")
		if c.handle(ctx, h, text) {
			return nil
		}
		c.mic.Resume()
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Controller) begin(h Handlers) error {
	if h.OnData == nil {
		return ErrNoHandler
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle && c.state != StateClosed {
		return ErrSessionActive
	}
	c.state = StateIdle
	select {
	case <-c.done:
	default:
	}
	return nil
}

// session opens a connection and pumps audio into it. With single set it
// returns the first utterance without calling OnData; otherwise it runs
// OnData for every utterance until a close decision.
func (c *Controller) session(ctx context.Context, h Handlers, single bool) (string, error) {
	if err := c.transcriber.Connect(ctx); err != nil {
		return "", err
	}
	defer c.transcriber.Close()

	c.setState(StateSessionOpen)
	if h.OnOpen != nil {
		h.OnOpen()
	}
	c.mic.Resume()
	c.setState(StateListening)

	pumpCtx, stopPump := context.WithCancel(ctx)
	defer stopPump()
	go c.pump(pumpCtx)

	events := c.transcriber.Events()
	var buf []string
	pending := false

	for {
		select {
		case <-ctx.Done():
			return "", nil

		case shouldClose := <-c.done:
			if !pending {
				continue
			}
			pending = false
			if shouldClose {
				c.logger.Info("session closing")
				return "", nil
			}
			c.mic.Resume()
			c.setState(StateListening)

		case ev, ok := <-events:
			if !ok {
				return "", c.closed(h, nil)
			}

			var text string
			switch ev.Kind {
			case EventPartial:
				c.observe("partial")
				if h.OnStream != nil && ev.Text != "" {
					h.OnStream(ev.Text)
				}
				continue

			case EventFinal:
				c.observe("final")
				if ev.Text != "" {
					buf = append(buf, ev.Text)
				}
				if c.config.Buffered && !ev.SpeechFinal {
					continue
				}
				text = strings.Join(buf, " ")
				buf = buf[:0]

			case EventUtteranceEnd:
				text = strings.Join(buf, " ")
				buf = buf[:0]

			case EventError:
				c.reportError(h, ev.Err)
				continue

			case EventClosed:
				return "", c.closed(h, ev.Err)
			}

			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			if pending {
				c.logger.Debug("utterance while paused, dropped", "text", text)
				continue
			}
			if single {
				return text, nil
			}

			c.mic.Pause()
			c.setState(StatePaused)
			c.observe("utterance")

			if c.config.Async {
				pending = true
				go func() { c.Done(h.OnData(ctx, text)) }()
				continue
			}
			if h.OnData(ctx, text) {
				c.logger.Info("session closing")
				return "", nil
			}
			c.mic.Resume()
			c.setState(StateListening)
		}
	}
}

// handle runs OnData for the Interact loop, honouring Async.
func (c *Controller) handle(ctx context.Context, h Handlers, text string) bool {
	if !c.config.Async {
		return h.OnData(ctx, text)
	}
	go func() { c.Done(h.OnData(ctx, text)) }()
	select {
	case shouldClose := <-c.done:
		return shouldClose
	case <-ctx.Done():
		return true
	}
}

func (c *Controller) closed(h Handlers, err error) error {
	if err == nil {
		err = ErrConnectionClosed
	}
	c.reportError(h, err)
	return err
}

func (c *Controller) reportError(h Handlers, err error) {
	if err == nil {
		return
	}
	c.logger.Warn("transcription error", "error", err)
	if h.OnError != nil {
		h.OnError(err)
	}
}

// pump streams microphone chunks to the connection until ctx ends.
func (c *Controller) pump(ctx context.Context) {
	for {
		chunk, err := c.mic.Read(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				c.logger.Debug("capture ended", "error", err)
			}
			return
		}
		if err := c.transcriber.SendAudio(chunk.Bytes()); err != nil {
			c.logger.Debug("send audio failed", "error", err)
		}
	}
}

func (c *Controller) observe(kind string) {
	if c.config.Observer != nil {
		c.config.Observer.TranscriptObserved(kind)
	}
}
