package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lesion-bot/config"
	telegram "lesion-bot/internal/api"
	"lesion-bot/internal/container"
	"lesion-bot/internal/infrastructure/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder()

	// Собираем сервисы приложения
	appContainer, err := container.FromConfig(cfg, recorder, logger)
	if err != nil {
		log.Fatalf("Failed to build services: %v", err)
	}

	if cfg.MetricsAddr != "" {
		srv := newHTTPServer(cfg, recorder)
		go func() {
			logger.Info("http server listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, logger.With("component", "telegram"))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	logger.Info("bot is running", "model_server", cfg.ModelServerURL, "explain_layer", cfg.ExplainLayer)
	if err := bot.Run(ctx); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
	logger.Info("bot stopped")
}

// newHTTPServer отдаёт метрики и сохранённые тепловые карты.
func newHTTPServer(cfg *config.Config, recorder *metrics.Recorder) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())

	prefix := "/" + strings.Trim(cfg.HeatmapURLPrefix, "/") + "/"
	mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.HeatmapDir))))

	return &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
