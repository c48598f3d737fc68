// Command newsctl prints the combined news feed as a table.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"newsiq/internal/aggregate"
	"newsiq/internal/config"
	"newsiq/internal/custom"
	"newsiq/internal/database"
	"newsiq/internal/feed"
)

var (
	categoryFlag = flag.String("category", "All News", "Category to list")
	limitFlag    = flag.Int("limit", 20, "Maximum number of articles")
	searchFlag   = flag.String("search", "", "Search the external feed instead of aggregating")
	sourcesFlag  = flag.String("sources", "toi,custom", "Comma separated sources (toi, custom)")
	dbFlag       = flag.String("db", "", "Path to database file (default: NEWSIQ_DB_PATH)")
	timeoutFlag  = flag.Duration("timeout", 20*time.Second, "Overall timeout")
	verboseFlag  = flag.Bool("v", false, "Log fetch activity to stderr")
)

func main() {
	flag.Parse()

	logger := log.New(io.Discard, "", 0)
	if *verboseFlag {
		logger = log.New(os.Stderr, "newsctl: ", log.LstdFlags)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "newsctl: %v\n", err)
		os.Exit(1)
	}
	if *dbFlag != "" {
		cfg.DBPath = *dbFlag
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	registry := feed.DefaultRegistry()
	if cfg.FeedsFile != "" {
		overrides, err := config.LoadFeedOverrides(cfg.FeedsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "newsctl: %v\n", err)
			os.Exit(1)
		}
		registry.Override(overrides.Feeds, overrides.Cities)
	}
	fetcher := feed.NewFetcher(logger, registry, feed.NewNormalizer(feed.TimesOfIndia, time.Now))

	if *searchFlag != "" {
		printTable(os.Stdout, fetcher.Search(ctx, *searchFlag, *limitFlag))
		return
	}

	var internal aggregate.Source
	if cfg.RemoteInternalSource() {
		internal = custom.NewClient(cfg.InternalSource, logger)
	} else {
		db, err := database.NewDB(cfg.DBPath, database.DefaultConfig())
		if err != nil {
			fmt.Fprintf(os.Stderr, "newsctl: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		internal = db
	}

	agg := aggregate.New(logger, aggregate.ExternalFeed(fetcher), internal)
	result := agg.Aggregate(ctx, *categoryFlag, *limitFlag, aggregate.ParseSelectors(strings.Split(*sourcesFlag, ",")))

	for _, b := range result.Branches {
		if b.Err != nil {
			fmt.Fprintf(os.Stderr, "newsctl: %s failed: %v\n", b.Source, b.Err)
		}
	}
	printTable(os.Stdout, result.Articles)
	if result.Outcome() == aggregate.Failed && len(result.Branches) > 0 {
		os.Exit(2)
	}
}
