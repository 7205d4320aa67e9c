package main

import (
	"os/signal"
	"syscall"

	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
	"github.com/LouYuanbo1/jobcrawler/internal/service/aggregator"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var sourceCmd = &cobra.Command{
	Use:   "source <wanted|jumpit> <keyword>",
	Short: "Fetch postings from a single source",
	Args:  cobra.ExactArgs(2),
	RunE:  runSource,
}

func init() {
	sourceCmd.Flags().Int("limit", 0, "maximum number of postings (0=use config source_limit)")
	rootCmd.AddCommand(sourceCmd)
}

func runSource(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, ok := model.ParseSource(args[0])
	if !ok {
		return eris.Errorf("unknown source %q, use wanted or jumpit", args[0])
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Aggregator.SourceLimit
	}
	adapters, err := newAdapters(cfg, logger)
	if err != nil {
		return err
	}
	svc := aggregator.InitService(adapters, &cfg.Aggregator, logger)

	return writeJSON(cmd.OutOrStdout(), svc.FetchFromSource(ctx, string(source), args[1], limit))
}
