package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-kiosk/internal/config"
	"github.com/teslashibe/go-kiosk/pkg/agent"
	"github.com/teslashibe/go-kiosk/pkg/audio"
	"github.com/teslashibe/go-kiosk/pkg/audioio"
	"github.com/teslashibe/go-kiosk/pkg/inference"
	"github.com/teslashibe/go-kiosk/pkg/kiosk"
	"github.com/teslashibe/go-kiosk/pkg/menu"
	"github.com/teslashibe/go-kiosk/pkg/metrics"
	"github.com/teslashibe/go-kiosk/pkg/store"
	"github.com/teslashibe/go-kiosk/pkg/tools"
	"github.com/teslashibe/go-kiosk/pkg/tts"
	"github.com/teslashibe/go-kiosk/pkg/web"
)

func loadCatalog(cfg *config.Config) (*menu.Catalog, error) {
	if cfg.Menu.Path == "" {
		return menu.Default(), nil
	}
	return menu.Load(cfg.Menu.Path)
}

// newProvider builds the completion client. With key rotation the agent
// supplies a key per request, so the client carries none.
func newProvider(cfg *config.Config, logger *slog.Logger) (inference.Provider, []agent.Option, error) {
	opts := []inference.Option{
		inference.WithBaseURL(cfg.LLM.BaseURLOrDefault()),
		inference.WithModel(cfg.LLM.Model),
		inference.WithMaxTokens(cfg.LLM.MaxTokens),
		inference.WithTemperature(cfg.LLM.Temperature),
		inference.WithLogger(logger),
	}
	agentOpts := []agent.Option{
		agent.WithModel(cfg.LLM.Model),
		agent.WithSampling(cfg.LLM.MaxTokens, cfg.LLM.Temperature),
		agent.WithMaxIterations(cfg.LLM.MaxIterations),
	}
	if cfg.LLM.RotateKeys {
		agentOpts = append(agentOpts, agent.WithKeyRotation(cfg.LLM.Keys))
	} else if len(cfg.LLM.Keys) > 0 {
		opts = append(opts, inference.WithAPIKey(cfg.LLM.Keys[0]))
	}

	client, err := inference.NewClient(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("completion client: %w", err)
	}
	return client, agentOpts, nil
}

func newSynthesizer(cfg *config.Config, logger *slog.Logger) (tts.Provider, error) {
	opts := []tts.Option{
		tts.WithAPIKey(cfg.TTS.APIKey),
		tts.WithSampleRate(cfg.TTS.SampleRate),
		tts.WithLogger(logger),
	}
	switch cfg.TTS.Provider {
	case config.TTSOpenAI:
		return tts.NewOpenAI(append(opts, tts.WithVoice(cfg.TTS.Voice))...)
	default:
		return tts.NewDeepgram(append(opts, tts.WithModel(cfg.TTS.Model))...)
	}
}

// voiceStack is the playback side: speaker sink, queue and phrase library.
type voiceStack struct {
	sink  audioio.Sink
	coord *audio.Coordinator
	voice *audio.Voice
}

func newVoice(ctx context.Context, cfg *config.Config, synth tts.Provider, m *metrics.Metrics, logger *slog.Logger) (*voiceStack, error) {
	sinkCfg := audioio.SpeakerConfig()
	sinkCfg.Backend = audioio.Backend(cfg.Audio.Backend)
	sinkCfg.SampleRate = cfg.TTS.SampleRate

	sink, err := audioio.NewSink(sinkCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("speaker: %w", err)
	}
	if err := sink.Start(ctx); err != nil {
		sink.Close()
		return nil, fmt.Errorf("speaker: %w", err)
	}

	speaker := audio.NewSpeaker(sink)
	coordOpts := []audio.Option{audio.WithLogger(logger)}
	if m != nil {
		coordOpts = append(coordOpts, audio.WithDepthObserver(m))
	}
	coord := audio.NewCoordinator(speaker, coordOpts...)

	library := audio.NewLibrary(audio.DefaultPhrases(),
		audio.WithPhraseDir(cfg.Audio.PhraseDir),
		audio.WithSynthesizer(synth),
		audio.WithLibraryLogger(logger),
	)
	if err := library.Preload(ctx); err != nil {
		logger.Warn("phrase preload incomplete", "error", err)
	}

	voice := audio.NewVoice(coord, library, synth,
		audio.WithFillerDelay(cfg.Audio.FillerDelay),
		audio.WithVoiceLogger(logger),
	)
	return &voiceStack{sink: sink, coord: coord, voice: voice}, nil
}

func (v *voiceStack) Close() {
	v.coord.Close()
	v.sink.Close()
}

// newDisplay starts the display server when enabled.
func newDisplay(cfg *config.Config, catalog *menu.Catalog, m *metrics.Metrics, logger *slog.Logger) *web.Server {
	if !cfg.Display.Enabled {
		return nil
	}
	webCfg := web.Config{
		Addr:      cfg.Display.Addr,
		StaticDir: cfg.Display.Static,
		Logger:    logger,
	}
	if m != nil {
		webCfg.Gatherer = m.Gatherer()
	}
	srv := web.NewServer(catalog, webCfg)
	srv.StartAsync()
	return srv
}

// newApp assembles the orchestrator from the pieces every mode shares.
func newApp(cfg *config.Config, catalog *menu.Catalog, provider inference.Provider, agentOpts []agent.Option, deps kiosk.Deps, kcfg kiosk.Config, m *metrics.Metrics) (*kiosk.App, error) {
	deps.Provider = provider
	deps.Catalog = catalog
	deps.AgentOptions = agentOpts

	if m != nil {
		deps.AgentOptions = append(deps.AgentOptions, agent.WithObserver(m))
		deps.Hooks = append(deps.Hooks, tools.Hook(m))
		deps.Sessions = m
	}

	if cfg.Store.Dir != "" {
		st, err := store.New(cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		deps.Store = st
	}

	return kiosk.New(kcfg, deps)
}
