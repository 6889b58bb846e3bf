// Package web serves the kiosk display: the latest Frame over HTTP, a
// websocket stream of frames, the menu, and Prometheus metrics.
package web

import (
	"encoding/json"
	"log/slog"
	"net"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/go-kiosk/pkg/hub"
	"github.com/teslashibe/go-kiosk/pkg/menu"
)

// Config configures the display server.
type Config struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string

	// StaticDir, when set, is served at "/".
	StaticDir string

	// Gatherer, when set, is exposed at /metrics.
	Gatherer prometheus.Gatherer

	Logger *slog.Logger
}

// Server is the display server.
type Server struct {
	app     *fiber.App
	config  Config
	catalog *menu.Catalog
	logger  *slog.Logger

	frameMu sync.RWMutex
	frame   Frame

	frames *hub.Hub
}

// NewServer creates a display server for catalog.
func NewServer(catalog *menu.Catalog, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		config:  cfg,
		catalog: catalog,
		logger:  cfg.Logger.With("component", "web.server"),
		frames:  hub.New("frames", cfg.Logger),
		frame: Frame{
			Menu:       MenuSections(catalog),
			Cart:       []FrameLine{},
			TotalPrice: "$0.00",
			Messages:   []Turn{},
		},
	}
	s.frames.OnConnect = s.snapshot

	app := fiber.New(fiber.Config{
		AppName:               "Kiosk Display",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/frame", s.handleFrame)
	api.Get("/menu", s.handleMenu)

	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	s.app = app
	return s
}

// Start runs the hub and listens. It blocks until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("display server listening", "addr", s.config.Addr)
	go s.frames.Run()
	return s.app.Listen(s.config.Addr)
}

// Serve runs the hub and serves on ln. It blocks until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("display server listening", "addr", ln.Addr().String())
	go s.frames.Run()
	return s.app.Listener(ln)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("display server stopped", "error", err)
		}
	}()
}

// Shutdown stops the server and disconnects displays.
func (s *Server) Shutdown() error {
	s.frames.Stop()
	return s.app.Shutdown()
}

// Publish stores frame as the latest and pushes it to connected displays.
// It never blocks: a full broadcast queue drops the push, and the frame is
// still served by /api/frame.
func (s *Server) Publish(frame Frame) {
	if frame.Menu == nil {
		frame.Menu = MenuSections(s.catalog)
	}
	if frame.Cart == nil {
		frame.Cart = []FrameLine{}
	}
	if frame.Messages == nil {
		frame.Messages = []Turn{}
	}

	s.frameMu.Lock()
	s.frame = frame
	s.frameMu.Unlock()

	if err := s.frames.BroadcastJSON(frame); err != nil {
		s.logger.Warn("frame not broadcast", "error", err)
	}
}

// Frame returns the latest published frame.
func (s *Server) Frame() Frame {
	s.frameMu.RLock()
	defer s.frameMu.RUnlock()
	return s.frame
}

// Displays returns the number of connected displays.
func (s *Server) Displays() int {
	return s.frames.ClientCount()
}

func (s *Server) snapshot() []hub.Message {
	data, err := json.Marshal(s.Frame())
	if err != nil {
		return nil
	}
	return []hub.Message{hub.NewJSONMessage(data)}
}
