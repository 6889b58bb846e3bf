// Kiosk - voice ordering assistant for a quick-service counter.
// Listens for a wake phrase, takes the order by voice and mirrors the cart
// to a display.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-kiosk/internal/config"
	"github.com/teslashibe/go-kiosk/internal/log"
)

// version is set at build time.
var version = "dev"

type rootFlags struct {
	configPath string
	logLevel   string
}

func main() {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "kiosk",
		Short:         "Voice ordering kiosk",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: ./kiosk.yaml or $HOME/.config/kiosk/kiosk.yaml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newRunCmd(flags),
		newConsoleCmd(flags),
		newMenuCmd(flags),
		newHistoryCmd(flags),
		newVersionCmd(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// load reads the configuration and initializes the global logger.
func (f *rootFlags) load() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	log.Init(log.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
