package main

import (
	"os/signal"
	"syscall"

	"github.com/LouYuanbo1/jobcrawler/internal/httpapi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the job search HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if a.store != nil {
		if err := a.store.EnsureIndex(ctx); err != nil {
			logger.Warn("ensure index failed, stored routes may fail", zap.Error(err))
		}
	}

	srv := httpapi.NewServer(&cfg.Server, &cfg.Sources, a.aggregator, a.store, a.indexer, logger)
	return srv.Run(ctx)
}
