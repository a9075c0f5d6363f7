// File path: cmd/migrator/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/legacyforge/migrator/internal/api"
	"github.com/legacyforge/migrator/internal/catalog"
	"github.com/legacyforge/migrator/internal/common"
	"github.com/legacyforge/migrator/internal/config"
	"github.com/legacyforge/migrator/internal/pipeline"
)

func main() {
	addr := flag.String("addr", ":8081", "listen address")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		common.Logger().Debug("main: no .env file loaded", "error", err)
	}
	logger := common.Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("main: configuration load failed", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("main: configuration invalid", "error", err)
		os.Exit(1)
	}
	for _, dir := range []string{cfg.DataDir, cfg.ReposDir, cfg.ArtifactsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("main: directory create failed", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		logger.Error("main: catalog open failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	manager := pipeline.NewManager(cfg, store)
	server := &http.Server{
		Addr:              *addr,
		Handler:           api.NewServer(manager).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("main: listening", "addr", *addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("main: server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("main: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: shutdown failed", "error", err)
	}
}
