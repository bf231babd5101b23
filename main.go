package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wx-shi/rosetta-utxo/internal/config"
	"github.com/wx-shi/rosetta-utxo/internal/construction"
	"github.com/wx-shi/rosetta-utxo/internal/network"
	"github.com/wx-shi/rosetta-utxo/internal/node"
	"github.com/wx-shi/rosetta-utxo/internal/query"
	"github.com/wx-shi/rosetta-utxo/internal/server"
	"github.com/wx-shi/rosetta-utxo/pkg"
	"go.uber.org/zap"
)

var (
	flagconf string
)

func init() {
	flag.StringVar(&flagconf, "conf", "./config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := pkg.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Offline instances never call the node, the client is still built so
	// every service has the same dependencies.
	client := node.NewHTTPClient(cfg.Node, logger)
	logger.Info("starting",
		zap.String("blockchain", cfg.Network.Blockchain),
		zap.String("network", cfg.Network.Network),
		zap.String("mode", string(cfg.Network.Mode)),
		zap.String("node", cfg.Node.URL))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	httpServer := server.NewServer(cfg.Server, logger,
		construction.NewService(cfg, client, logger),
		query.NewService(cfg, client, logger),
		network.NewService(cfg, client, logger))
	httpServer.Run()

	// Wait for signal
	<-sigCh
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down HTTP server", zap.Error(err))
	}
}
