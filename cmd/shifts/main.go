// Package main запускает HTTP-сервер сервиса учёта рабочих смен.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/studio-shifts/internal/config"
	"github.com/mmeshcher/studio-shifts/internal/exchange"
	"github.com/mmeshcher/studio-shifts/internal/handler"
	"github.com/mmeshcher/studio-shifts/internal/repository"
	"github.com/mmeshcher/studio-shifts/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		sugar.Fatalw("load location error", "location", cfg.Location, "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	var rates *exchange.Client
	if cfg.ExchangeRateAddress != "" {
		rates = exchange.NewClient(cfg.ExchangeRateAddress)
	} else {
		sugar.Warn("exchange rate address is not set, sessions cannot be completed")
	}

	svc := service.NewService(repo, rates, logger,
		service.WithLocation(loc),
		service.WithReportWorkers(cfg.ReportWorkers),
	)
	defer svc.Close()

	h := handler.NewHandler(svc, logger, loc, cfg.AllowedOrigins)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting studio shifts server", "addr", cfg.RunAddress, "location", loc.String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
