package main

import (
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/rscan/internal/engine"
	"github.com/kk-code-lab/rscan/internal/metrics"
	"github.com/kk-code-lab/rscan/internal/server"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over HTTP with Server-Sent Events",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}

	observer := metrics.NewEngineObserver()
	events := engine.NewBroadcaster(0, observer)
	eng := engine.New(cfg, events,
		engine.WithLogger(logger),
		engine.WithObserver(observer),
	)

	return server.New(eng, events, logger).Run(cmd.Context(), addr)
}
