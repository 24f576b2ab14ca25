package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"trading-journal/internal/config"
	"trading-journal/internal/logger"
	"trading-journal/internal/tasks"
	"trading-journal/internal/workbook"
)

const usage = "usage: journal <import|digest|reminders|watch>"

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	task := os.Args[1]

	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Open the journal workbook
	wb, err := workbook.Open(cfg.Journal.WorkbookPath, log)
	if err != nil {
		log.Fatal("Failed to open workbook", zap.Error(err))
	}
	defer wb.Close()
	log.Info("Workbook opened", zap.String("path", cfg.Journal.WorkbookPath))

	runner := tasks.NewRunner(log, &cfg, wb, wb)

	if task == "watch" {
		// Setup context for graceful shutdown
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			sigchan := make(chan os.Signal, 1)
			signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
			<-sigchan
			log.Info("Shutdown signal received, gracefully shutting down...")
			cancel()
		}()

		if err := runner.Watch(ctx); err != nil {
			log.Fatal("Watch mode failed", zap.Error(err))
		}
		log.Info("Watcher has been shut down.")
		return
	}

	if err := runner.Run(task); err != nil {
		log.Fatal("Task failed", zap.String("task", task), zap.Error(err))
	}
	log.Info("Task finished", zap.String("task", task))
}
