package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var indexCmd = &cobra.Command{
	Use:   "index <keyword>",
	Short: "Fetch postings and write them to Elasticsearch",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndex,
}

func init() {
	f := indexCmd.Flags()
	f.Int("limit", 0, "maximum number of postings (0=use server.crawl_limit)")
	f.Bool("clear", false, "delete every stored posting before indexing")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cfg.Elasticsearch.Enabled {
		return eris.New("elasticsearch is not enabled")
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if reset, _ := f.GetBool("clear"); reset {
		deleted, err := a.store.Clear(ctx)
		if err != nil {
			return err
		}
		logger.Info("stored postings cleared", zap.Int64("deleted", deleted))
	}
	limit, _ := f.GetInt("limit")
	if limit <= 0 {
		limit = cfg.Server.CrawlLimit
	}

	count, err := a.indexer.CrawlAndIndex(ctx, args[0], limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d postings for %q\n", count, args[0])
	return nil
}
