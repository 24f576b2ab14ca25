package main

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"trading-journal/internal/config"
	"trading-journal/internal/logger"
	"trading-journal/internal/tasks"
	"trading-journal/internal/workbook"
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

	// Open the journal workbook
	wb, err := workbook.Open(cfg.Journal.WorkbookPath, log)
	if err != nil {
		log.Fatal("Failed to open workbook", zap.Error(err))
	}
	defer wb.Close()

	runner := tasks.NewRunner(log, &cfg, wb, wb)

	// Setup HTTP server
	mux := http.NewServeMux()

	// Create a handler that has access to the logger, store and runner
	apiHandler := NewAPIHandler(log, wb, runner)

	// API endpoints
	mux.HandleFunc("/api/status", apiHandler.StatusHandler)
	mux.HandleFunc("/api/retros", apiHandler.RetrosHandler)
	mux.HandleFunc("/api/tasks/", apiHandler.TaskHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting web server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("Web server failed", zap.Error(err))
	}
}
