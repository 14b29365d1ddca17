// Package main - Entry point for the cnc-quote API server
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"cnc-quote/adapters/ratebook"
	"cnc-quote/api"
	"cnc-quote/core/factors"
	"cnc-quote/internal/config"
	"cnc-quote/internal/logging"
)

const version = "1.0.0"

func main() {
	addr := flag.String("addr", ":8080", "Server address")
	cfgPath := flag.String("config", "", "Config file path")
	rateBookPath := flag.String("ratebook", "", "HCL rate book path")
	flag.Parse()

	cfg := config.Get()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(loaded)
		cfg = loaded
	}
	if *rateBookPath != "" {
		book, err := ratebook.Load(*rateBookPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading rate book: %v\n", err)
			os.Exit(1)
		}
		book.Apply(cfg)
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	defer logging.Sync()

	orchestrator, err := factors.DefaultOrchestrator(cfg)
	if err != nil {
		logging.Fatal("building pricing pipeline", zap.Error(err))
	}

	server := api.NewServer(version, orchestrator)

	logging.Info("cnc-quote server listening",
		zap.String("addr", *addr),
		zap.String("version", version))

	if err := server.ListenAndServe(*addr); err != nil {
		logging.Fatal("server stopped", zap.Error(err))
	}
}
