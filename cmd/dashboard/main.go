package main

import (
	"fmt"
	"net/http"
	"os"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/logger"
	"trade-journal-go/internal/store"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the journal database
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	trades := store.NewStore(db, cfg.Journal.StartEquity, log)

	// Setup HTTP server
	mux := http.NewServeMux()

	apiHandler := NewAPIHandler(log, trades, &cfg)

	// API endpoints
	mux.HandleFunc("/api/trades", apiHandler.TradesHandler)
	mux.HandleFunc("/api/summary", apiHandler.SummaryHandler)
	mux.HandleFunc("/api/equity", apiHandler.EquityHandler)
	mux.HandleFunc("/api/drawdown", apiHandler.DrawdownHandler)
	mux.HandleFunc("/api/streaks", apiHandler.StreaksHandler)
	mux.HandleFunc("/api/bars", apiHandler.BarsHandler)
	mux.HandleFunc("/api/calendar", apiHandler.CalendarHandler)
	mux.HandleFunc("/api/monthly", apiHandler.MonthlyHandler)
	mux.HandleFunc("/api/performance", apiHandler.PerformanceHandler)
	mux.HandleFunc("/api/symbols", apiHandler.SymbolsHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting dashboard server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("Dashboard server failed", zap.Error(err))
	}
}
