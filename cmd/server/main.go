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

	"jo3qma.com/pac12_vod/internal/app"
	"jo3qma.com/pac12_vod/internal/config"
	"jo3qma.com/pac12_vod/internal/handler"
	"jo3qma.com/pac12_vod/internal/infrastructure/pac12"
	xlog "jo3qma.com/pac12_vod/internal/log"
	"jo3qma.com/pac12_vod/internal/render"
	"jo3qma.com/pac12_vod/internal/telemetry"
)

var version = "dev"

func main() {
	configPath := flag.String("config", os.Getenv("PAC12_VOD_CONFIG"), "path to the settings file (YAML)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		base := xlog.Base()
		base.Fatal().Err(err).Msg("failed to load configuration")
	}
	xlog.Configure(xlog.Config{Level: cfg.Log.Level})
	logger := xlog.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "pac12-vod",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	// 依存関係の組み立て（依存性注入）
	client := pac12.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	widget := app.New(client, render.NewPage(), app.SettingsFrom(cfg))
	if err := widget.Boot(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial render interrupted")
	}

	// 設定ファイルの変更で描き直します
	holder := config.NewHolder(cfg, *configPath)
	reloads := make(chan config.Config, 1)
	holder.RegisterListener(reloads)
	if err := holder.StartWatcher(ctx); err != nil {
		logger.Error().Err(err).Msg("config watcher unavailable")
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case next := <-reloads:
				if err := widget.ApplySettings(ctx, app.SettingsFrom(next)); err != nil {
					logger.Warn().Err(err).Msg("re-render interrupted")
				}
			}
		}
	}()

	router := handler.NewRouter(handler.NewVodHandler(widget), handler.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateWindow:     cfg.Server.RateWindow,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンの設定
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	holder.Stop()
	widget.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to flush traces")
	}

	logger.Info().Msg("server exited")
}
