package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/observability/log"
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/server"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		httpAddr   = flag.String("http", "", "HTTP listen address (overrides config)")
		quicAddr   = flag.String("quic", "", "QUIC feed address (overrides config, \"off\" disables)")
		seed       = flag.Int64("seed", 0, "simulation seed, 0 picks one from the clock")
		traceNodes = flag.Bool("trace-nodes", false, "emit per-node status events")
	)
	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *quicAddr != "" {
		cfg.QUICAddr = *quicAddr
		if *quicAddr == "off" {
			cfg.QUICAddr = ""
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *traceNodes {
		cfg.TraceNodes = true
	}

	logger := log.New(log.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error creating server:", err)
		os.Exit(1)
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start the server
	if err := srv.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error starting server:", err)
		os.Exit(1)
	}

	<-stopCh
	cancel()
	if err := srv.Stop(); err != nil {
		fmt.Fprintln(os.Stderr, "Error stopping server:", err)
	}
}
