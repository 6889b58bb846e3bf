// Package kiosk ties the ordering core to its collaborators: it waits for
// a wake phrase, runs a transcription session against the agent, speaks
// replies, mirrors the order to the display and persists finished
// conversations.
package kiosk

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-kiosk/pkg/agent"
	"github.com/teslashibe/go-kiosk/pkg/cart"
	"github.com/teslashibe/go-kiosk/pkg/inference"
	"github.com/teslashibe/go-kiosk/pkg/menu"
	"github.com/teslashibe/go-kiosk/pkg/tools"
	"github.com/teslashibe/go-kiosk/pkg/transcribe"
	"github.com/teslashibe/go-kiosk/pkg/wake"
	"github.com/teslashibe/go-kiosk/pkg/web"
)

// Speaker plays the kiosk's voice. *audio.Voice implements it.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Greet(ctx context.Context)
	Filler(ctx context.Context, iteration int)
	Intermediate(ctx context.Context, category string)
	WaitUntilIdle(ctx context.Context) bool
}

// Display renders frames. *web.Server implements it.
type Display interface {
	Publish(frame web.Frame)
}

// Listener runs transcription sessions. *transcribe.Controller implements it.
type Listener interface {
	Run(ctx context.Context, h transcribe.Handlers) error
	Interact(ctx context.Context, h transcribe.Handlers) error
}

// Waker blocks until someone addresses the kiosk. *wake.Detector implements it.
type Waker interface {
	Wait(ctx context.Context) (wake.Match, error)
}

// Recorder persists a finished conversation. *store.Store implements it.
type Recorder interface {
	Save(sessionID string, messages []inference.Message) (string, error)
}

// SessionObserver is told when sessions start and end. *metrics.Metrics
// implements it.
type SessionObserver interface {
	SessionStarted()
	SessionEnded(outcome string, total float64)
}

// Config holds orchestration settings.
type Config struct {
	// Interact opens one transcription connection per turn instead of a
	// single connection for the whole session.
	Interact bool

	// Cooldown separates sessions when no wake detector is configured.
	Cooldown time.Duration

	// ErrorReply is spoken when the agent fails on an utterance.
	ErrorReply string

	Logger *slog.Logger
}

// DefaultConfig returns the default orchestration settings.
func DefaultConfig() Config {
	return Config{
		Cooldown:   time.Second,
		ErrorReply: "Sorry, I didn't catch that. Could you say it again?",
	}
}

// Deps are the collaborators of an App. Only Provider is required.
type Deps struct {
	Provider     inference.Provider
	Catalog      *menu.Catalog
	AgentOptions []agent.Option
	Hooks        []tools.Hook

	Voice    Speaker
	Display  Display
	Listener Listener
	Wake     Waker
	Store    Recorder
	Sessions SessionObserver
}

// App is the kiosk orchestrator. One App serves one customer at a time.
type App struct {
	config   Config
	catalog  *menu.Catalog
	cart     *cart.Cart
	table    *tools.Table
	agent    *agent.Agent
	voice    Speaker
	display  Display
	listener Listener
	waker    Waker
	recorder Recorder
	sessions SessionObserver
	logger   *slog.Logger

	mu        sync.Mutex
	sessionID string
	started   bool
	action    string
	lines     []cart.Line
	turns     []web.Turn
	confirmed bool
	total     menu.Price
}

// New builds the cart, tool table and agent around deps.Provider and
// wires them to the remaining collaborators.
func New(cfg Config, deps Deps) (*App, error) {
	if deps.Provider == nil {
		return nil, ErrNoProvider
	}
	defaults := DefaultConfig()
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaults.Cooldown
	}
	if cfg.ErrorReply == "" {
		cfg.ErrorReply = defaults.ErrorReply
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	catalog := deps.Catalog
	if catalog == nil {
		catalog = menu.Default()
	}

	a := &App{
		config:   cfg,
		catalog:  catalog,
		voice:    deps.Voice,
		display:  deps.Display,
		listener: deps.Listener,
		waker:    deps.Wake,
		recorder: deps.Store,
		sessions: deps.Sessions,
		logger:   cfg.Logger.With("component", "kiosk"),
	}
	if a.voice == nil {
		a.voice = silent{}
	}

	a.cart = cart.New(catalog, a)

	tableOpts := []tools.Option{tools.WithHook(a), tools.WithLogger(cfg.Logger)}
	for _, h := range deps.Hooks {
		tableOpts = append(tableOpts, tools.WithHook(h))
	}
	a.table = tools.New(a.cart, tableOpts...)

	agentOpts := []agent.Option{agent.WithFiller(a.voice.Filler), agent.WithLogger(cfg.Logger)}
	agentOpts = append(agentOpts, deps.AgentOptions...)
	ag, err := agent.New(deps.Provider, a.table, catalog, agentOpts...)
	if err != nil {
		return nil, err
	}
	a.agent = ag

	return a, nil
}

// Cart returns the order cart.
func (a *App) Cart() *cart.Cart { return a.cart }

// Agent returns the conversational agent.
func (a *App) Agent() *agent.Agent { return a.agent }

// Catalog returns the menu.
func (a *App) Catalog() *menu.Catalog { return a.catalog }

// silent is the Speaker used when no audio is configured.
type silent struct{}

func (silent) Speak(context.Context, string) error { return nil }
func (silent) Greet(context.Context) {}
func (silent) Filler(context.Context, int) {}
func (silent) Intermediate(context.Context, string) {}
func (silent) WaitUntilIdle(context.Context) bool { return true }
