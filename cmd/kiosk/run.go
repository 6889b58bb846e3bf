package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-kiosk/internal/log"
	"github.com/teslashibe/go-kiosk/pkg/audioio"
	"github.com/teslashibe/go-kiosk/pkg/kiosk"
	"github.com/teslashibe/go-kiosk/pkg/metrics"
	"github.com/teslashibe/go-kiosk/pkg/transcribe"
	"github.com/teslashibe/go-kiosk/pkg/wake"
)

type runFlags struct {
	noWake   bool
	interact bool
	async    bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the voice kiosk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVoice(cmd.Context(), root, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.noWake, "no-wake", false, "start sessions without waiting for the wake phrase")
	cmd.Flags().BoolVar(&flags.interact, "interact", false, "open one transcription connection per turn")
	cmd.Flags().BoolVar(&flags.async, "async", false, "handle utterances on a worker and resume on completion")
	return cmd
}

func runVoice(ctx context.Context, root *rootFlags, flags *runFlags) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateVoice(); err != nil {
		return err
	}
	logger := log.L()

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(metrics.DefaultNamespace)
	}

	provider, agentOpts, err := newProvider(cfg, logger)
	if err != nil {
		return err
	}
	defer provider.Close()

	synth, err := newSynthesizer(cfg, logger)
	if err != nil {
		return fmt.Errorf("speech synthesis: %w", err)
	}
	defer synth.Close()

	voice, err := newVoice(ctx, cfg, synth, m, logger)
	if err != nil {
		return err
	}
	defer voice.Close()

	micCfg := audioio.DefaultConfig()
	micCfg.Backend = audioio.Backend(cfg.Audio.Backend)
	micCfg.SampleRate = cfg.STT.SampleRate
	micCfg.Channels = cfg.STT.Channels
	src, err := audioio.NewSource(micCfg, logger)
	if err != nil {
		return fmt.Errorf("microphone: %w", err)
	}
	defer src.Close()
	mic := audioio.NewPausable(src)

	transcriber, err := transcribe.NewDeepgram(
		transcribe.WithAPIKey(cfg.STT.APIKey),
		transcribe.WithModel(cfg.STT.Model, cfg.STT.Language),
		transcribe.WithAudio(cfg.STT.SampleRate, cfg.STT.Channels),
		transcribe.WithEndpointing(cfg.STT.Endpointing),
		transcribe.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("transcription: %w", err)
	}

	ctrlOpts := []transcribe.ControllerOption{transcribe.WithControllerLogger(logger)}
	if cfg.STT.Buffered {
		ctrlOpts = append(ctrlOpts, transcribe.WithBuffering())
	}
	if flags.async {
		ctrlOpts = append(ctrlOpts, transcribe.WithAsyncHandler())
	}
	if m != nil {
		ctrlOpts = append(ctrlOpts, transcribe.WithObserver(m))
	}
	controller := transcribe.NewController(transcriber, mic, ctrlOpts...)

	deps := kiosk.Deps{
		Voice:    voice.voice,
		Listener: controller,
	}

	if cfg.Wake.Enabled && !flags.noWake {
		detector, err := wake.New(src, wake.NewDeepgram(cfg.STT.APIKey, cfg.STT.Model), wake.Config{
			Phrases: cfg.Wake.Phrases,
			Window:  cfg.Wake.Window,
			MinRMS:  wake.DefaultConfig().MinRMS,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		deps.Wake = &micWaker{detector: detector, source: src, logger: log.Component("wake.mic")}
	}

	display := newDisplay(cfg, catalog, m, logger)
	if display != nil {
		deps.Display = display
		defer display.Shutdown()
	}

	app, err := newApp(cfg, catalog, provider, agentOpts, deps, kiosk.Config{
		Interact: flags.interact,
		Logger:   logger,
	}, m)
	if err != nil {
		return err
	}

	logger.Info("kiosk ready",
		"llm", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"tts", cfg.TTS.Provider,
		"wake", deps.Wake != nil,
		"display", cfg.Display.Addr,
	)
	return app.Run(ctx)
}

// micWaker runs the wake detector with the microphone started. The
// transcription controller starts and stops the microphone on its own for
// each session.
type micWaker struct {
	detector *wake.Detector
	source   audioio.Source
	logger   *slog.Logger
}

func (w *micWaker) Wait(ctx context.Context) (wake.Match, error) {
	if err := w.source.Start(ctx); err != nil {
		return wake.Match{}, err
	}
	defer func() {
		if err := w.source.Stop(); err != nil {
			w.logger.Debug("microphone stop", "error", err)
		}
	}()
	return w.detector.Wait(ctx)
}
