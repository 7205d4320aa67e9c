package main

import (
	"os/signal"
	"syscall"

	"github.com/LouYuanbo1/jobcrawler/internal/service/aggregator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <keyword>",
	Short: "Fetch postings from every enabled source and print them as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runCrawl,
}

func init() {
	crawlCmd.Flags().Int("limit", 0, "maximum number of postings (0=use config default)")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Aggregator.DefaultLimit
	}
	adapters, err := newAdapters(cfg, logger)
	if err != nil {
		return err
	}
	svc := aggregator.InitService(adapters, &cfg.Aggregator, logger)

	records := svc.FetchAll(ctx, args[0], limit)
	logger.Info("crawl finished", zap.String("keyword", args[0]), zap.Int("count", len(records)))
	return writeJSON(cmd.OutOrStdout(), records)
}
