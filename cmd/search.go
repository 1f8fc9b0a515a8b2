package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search the catalog once and print matching vacancies",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		searchOnce(strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func searchOnce(query string) {
	ctx := context.Background()

	logger := newLogger()
	config := mustConfig(logger)

	c, err := buildIndex(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the catalog index", zap.Error(err))
	}
	defer c.close(logger)

	results, err := c.index.Search(ctx, query)
	if err != nil {
		logger.Fatal("searching", zap.Error(err))
	}

	logger.Info("search finished",
		zap.String("query", query),
		zap.Int("count", results.Len()),
		zap.Strings("titles", results.Titles()),
	)
}
