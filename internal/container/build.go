package container

import (
	"fmt"
	"log/slog"

	"lesion-bot/config"
	"lesion-bot/internal/domain/port"
	"lesion-bot/internal/domain/service"
	"lesion-bot/internal/infrastructure/imageio"
	"lesion-bot/internal/infrastructure/inference"
	"lesion-bot/internal/infrastructure/storage"
	"lesion-bot/internal/infrastructure/vision"
)

// FromConfig собирает реализации портов по конфигурации.
func FromConfig(cfg *config.Config, recorder port.AnalysisRecorder, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rules := service.DefaultRiskRules()
	if cfg.RiskRulesPath != "" {
		loaded, err := service.LoadRiskRules(cfg.RiskRulesPath)
		if err != nil {
			return nil, fmt.Errorf("load risk rules: %w", err)
		}
		rules = loaded
	}

	store, err := storage.NewFileOverlayStore(cfg.HeatmapDir, cfg.HeatmapURLPrefix)
	if err != nil {
		return nil, err
	}

	model := inference.NewClient(cfg.ModelServerURL, cfg.ModelTimeout, logger.With("component", "model"))

	return New(Deps{
		UserRepo:   storage.NewMemoryUserRepository(),
		Decoder:    imageio.NewDecoder(cfg.MaxUploadSize),
		Classifier: model,
		Explainer:  model,
		Segmenter:  vision.NewGoCVSegmenter(),
		Renderer:   vision.NewGoCVOverlayRenderer(),
		Store:      store,
		Recorder:   recorder,
		Logger:     logger,
	}, Options{
		ExplainLayer:       cfg.ExplainLayer,
		OverlayAlpha:       cfg.OverlayAlpha,
		PixelsPerMM:        cfg.PixelsPerMM,
		RiskRules:          rules,
		ConcurrentFeatures: cfg.ConcurrentFeatures,
	}), nil
}
