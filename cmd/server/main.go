package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/chain"
	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/config"
	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/server"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Environment.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	source := buildSource(cfg, logger)

	srv := server.NewServer(server.Config{
		Port:           cfg.Server.Port,
		AuthToken:      cfg.Server.AuthToken,
		RequestTimeout: cfg.GetRequestTimeout(),
		ScanDefaults:   cfg.Scan,
	}, source, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("Server error")
	}

	logger.Info("Server stopped successfully")
}

func buildSource(cfg *config.Config, logger *logrus.Logger) chain.Source {
	if cfg.Chain.URL != "" {
		retryCfg := chain.DefaultRetryConfig
		retryCfg.MaxRetries = cfg.Chain.MaxRetries
		retryCfg.Timeout = cfg.GetFetchTimeout()
		return chain.NewRemoteSource(cfg.Chain.URL, log.New(logger.Writer(), "", 0), retryCfg)
	}
	return chain.NewCSVSource(cfg.Chain.Path)
}
