package main

import (
	"os/signal"
	"syscall"

	"github.com/LouYuanbo1/jobcrawler/internal/service/aggregator"
	"github.com/LouYuanbo1/jobcrawler/param"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Fetch postings and filter them by category and location",
	Long: `Fetches twice the requested number of postings from every enabled source,
then keeps those whose category matches exactly and whose location contains
the given text. "전체" and "전국" disable the respective filter.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.String("category", param.AllCategories, "exact category to keep")
	f.String("location", param.AllLocations, "location substring to keep")
	f.Int("limit", 0, "maximum number of postings (0=use config default)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f := cmd.Flags()
	category, _ := f.GetString("category")
	location, _ := f.GetString("location")
	limit, _ := f.GetInt("limit")
	if limit <= 0 {
		limit = cfg.Aggregator.DefaultLimit
	}
	adapters, err := newAdapters(cfg, logger)
	if err != nil {
		return err
	}
	svc := aggregator.InitService(adapters, &cfg.Aggregator, logger)

	return writeJSON(cmd.OutOrStdout(), svc.Search(ctx, &param.Search{
		Keyword:  args[0],
		Category: category,
		Location: location,
		Limit:    limit,
	}))
}
