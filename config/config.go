package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string

	// Сервер модели
	ModelServerURL string
	ModelTimeout   time.Duration
	ExplainLayer   string

	// Наложения Grad-CAM
	HeatmapDir       string
	HeatmapURLPrefix string
	OverlayAlpha     float64

	// Анализ
	PixelsPerMM        float64
	RiskRulesPath      string
	MaxUploadSize      int64
	ConcurrentFeatures bool

	MetricsAddr string
	LogLevel    slog.Level
}

// Load читает .env (если он есть) и переменные окружения.
// Все некорректные значения возвращаются одной ошибкой.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	var errs []error

	cfg := &Config{
		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
		ModelServerURL:   envString("MODEL_SERVER_URL", "http://localhost:8080"),
		ExplainLayer:     envString("EXPLAIN_LAYER", "layer4"),
		HeatmapDir:       envString("HEATMAP_DIR", "./heatmaps"),
		HeatmapURLPrefix: envString("HEATMAP_URL_PREFIX", "/heatmaps"),
		RiskRulesPath:    os.Getenv("RISK_RULES_PATH"),
		MetricsAddr:      ":9090",
	}
	// Пустое значение отключает сервер метрик
	if v, ok := os.LookupEnv("METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}

	cfg.ModelTimeout = parse(&errs, "MODEL_TIMEOUT", 30*time.Second, time.ParseDuration)
	cfg.OverlayAlpha = parse(&errs, "OVERLAY_ALPHA", 0.4, parseFloat)
	cfg.PixelsPerMM = parse(&errs, "PIXELS_PER_MM", 10.0, parseFloat)
	cfg.MaxUploadSize = parse(&errs, "MAX_UPLOAD_SIZE", int64(10<<20), parseInt64)
	cfg.ConcurrentFeatures = parse(&errs, "CONCURRENT_FEATURES", false, strconv.ParseBool)
	cfg.LogLevel = parse(&errs, "LOG_LEVEL", slog.LevelInfo, parseLevel)

	if cfg.ModelTimeout <= 0 {
		errs = append(errs, fmt.Errorf("MODEL_TIMEOUT must be positive, got %s", cfg.ModelTimeout))
	}
	if cfg.OverlayAlpha <= 0 || cfg.OverlayAlpha > 1 {
		errs = append(errs, fmt.Errorf("OVERLAY_ALPHA must be in (0, 1], got %v", cfg.OverlayAlpha))
	}
	if cfg.PixelsPerMM <= 0 {
		errs = append(errs, fmt.Errorf("PIXELS_PER_MM must be positive, got %v", cfg.PixelsPerMM))
	}
	if cfg.MaxUploadSize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", cfg.MaxUploadSize))
	}
	if cfg.ExplainLayer == "" {
		errs = append(errs, errors.New("EXPLAIN_LAYER must not be empty"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parse[T any](errs *[]error, key string, def T, fn func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := fn(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}
