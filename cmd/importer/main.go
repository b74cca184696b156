package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/importer"
	"trade-journal-go/internal/logger"
	"trade-journal-go/internal/store"

	"go.uber.org/zap"
)

func main() {
	var (
		file    = flag.String("file", "", "path to a CSV export to import")
		url     = flag.String("url", "", "URL of a CSV export to download and import")
		account = flag.String("account", "", "account label for rows without an account column")
	)
	flag.Parse()

	if (*file == "") == (*url == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -file or -url is required")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	trades := store.NewStore(db, cfg.Journal.StartEquity, log)

	var raw importer.RawTable
	if *file != "" {
		raw, err = importer.ReadCSVFile(*file)
		if err != nil {
			log.Fatal("Failed to read export", zap.String("file", *file), zap.Error(err))
		}
	} else {
		fetcher := importer.NewFetcher(&cfg.Fetch, log)
		raw, err = fetcher.FetchCSV(context.Background(), *url)
		if err != nil {
			log.Fatal("Failed to download export", zap.String("url", *url), zap.Error(err))
		}
	}

	label := *account
	if label == "" {
		label = cfg.Journal.DefaultAccount
	}

	rows, issues := importer.Normalize(raw, label)
	for _, issue := range issues {
		log.Warn("Import issue", zap.String("issue", issue))
	}
	if len(rows) == 0 {
		log.Warn("No usable rows in export; nothing imported")
		return
	}

	inserted, err := trades.InsertBatch(rows)
	if err != nil {
		log.Fatal("Failed to persist imported trades", zap.Error(err))
	}
	log.Info("Import complete",
		zap.Int("accepted", len(rows)),
		zap.Int("inserted", inserted),
		zap.Int("updated", len(rows)-inserted),
		zap.Int("issues", len(issues)),
	)
}
