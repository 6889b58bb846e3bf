package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-kiosk/internal/log"
	"github.com/teslashibe/go-kiosk/pkg/kiosk"
	"github.com/teslashibe/go-kiosk/pkg/metrics"
)

func newConsoleCmd(root *rootFlags) *cobra.Command {
	var speak bool
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Take orders typed on stdin",
		Long:  "Runs the ordering agent against typed lines instead of the microphone. Replies are printed and, with --speak, also played.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
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

			deps := kiosk.Deps{}
			if speak {
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
				deps.Voice = voice.voice
			}

			display := newDisplay(cfg, catalog, m, logger)
			if display != nil {
				deps.Display = display
				defer display.Shutdown()
			}

			app, err := newApp(cfg, catalog, provider, agentOpts, deps, kiosk.Config{Logger: logger}, m)
			if err != nil {
				return err
			}
			return app.Console(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&speak, "speak", false, "also synthesize and play replies")
	return cmd
}
