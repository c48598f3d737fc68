package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"newsiq/internal/aggregate"
	"newsiq/internal/config"
	"newsiq/internal/custom"
	"newsiq/internal/database"
	"newsiq/internal/feed"
	"newsiq/internal/server"
)

var (
	// Version will be set during build
	Version = "dev"

	port    = flag.Int("port", 0, "Port to run the server on (default: 8080 or NEWSIQ_PORT)")
	dbPath  = flag.String("db", "", "Path to database file (default: data/newsiq.db or NEWSIQ_DB_PATH)")
	source  = flag.String("internal-source", "", "\"sqlite\" or base URL of a remote news service (default: NEWSIQ_INTERNAL_SOURCE)")
	feeds   = flag.String("feeds", "", "YAML file overriding feed locations (default: NEWSIQ_FEEDS_FILE)")
	version = flag.Bool("version", false, "Print version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("NewsIQ version %s\n", Version)
		return
	}

	logger := log.New(os.Stdout, "newsiq: ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	if *port > 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *source != "" {
		cfg.InternalSource = *source
	}
	if *feeds != "" {
		cfg.FeedsFile = *feeds
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	logger.Printf("Starting NewsIQ v%s", Version)
	logger.Printf("Port: %d", cfg.Port)
	logger.Printf("Internal source: %s", cfg.InternalSource)

	registry := feed.DefaultRegistry()
	if cfg.FeedsFile != "" {
		overrides, err := config.LoadFeedOverrides(cfg.FeedsFile)
		if err != nil {
			logger.Fatalf("Failed to load feed overrides: %v", err)
		}
		registry.Override(overrides.Feeds, overrides.Cities)
		logger.Printf("Loaded %d feed and %d city overrides from %s", len(overrides.Feeds), len(overrides.Cities), cfg.FeedsFile)
	}

	fetcher := feed.NewFetcher(logger, registry, feed.NewNormalizer(feed.TimesOfIndia, time.Now))

	var store server.ArticleStore
	var internal aggregate.Source
	if cfg.RemoteInternalSource() {
		client := custom.NewClient(cfg.InternalSource, logger)
		store, internal = client, client
	} else {
		logger.Printf("Database: %s", cfg.DBPath)
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			logger.Fatalf("Failed to create database directory: %v", err)
		}
		db, err := database.NewDB(cfg.DBPath, database.DefaultConfig())
		if err != nil {
			logger.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		store, internal = db, db
	}

	aggregator := aggregate.New(logger, aggregate.ExternalFeed(fetcher), internal)

	srv := server.NewServer(logger, fetcher, aggregator, store, server.Config{
		AllowedOrigin:  cfg.AllowedOrigin,
		RequestTimeout: cfg.RequestTimeout,
		DefaultLimit:   cfg.DefaultLimit,
		Version:        Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx, cfg.GetAddress()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("Server error: %v", err)
		stop()
		os.Exit(1)
	}
}
