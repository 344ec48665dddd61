package app

import (
	"context"
	"fmt"
	"log/slog"

	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/domain/port"
	"lesion-bot/internal/domain/service"
)

// DefaultOverlayAlpha доля тепловой карты при смешивании с оригиналом.
const DefaultOverlayAlpha = 0.4

// SaliencyService строит объяснение Grad-CAM++ и сохраняет наложение.
type SaliencyService struct {
	explainer port.Explainer
	renderer  port.OverlayRenderer
	store     port.OverlayStore
	layer     string
	alpha     float64
	logger    *slog.Logger
}

// NewSaliencyService создаёт генератор карт важности для слоя layer.
func NewSaliencyService(explainer port.Explainer, renderer port.OverlayRenderer, store port.OverlayStore, layer string, alpha float64, logger *slog.Logger) *SaliencyService {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultOverlayAlpha
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SaliencyService{
		explainer: explainer,
		renderer:  renderer,
		store:     store,
		layer:     layer,
		alpha:     alpha,
		logger:    logger,
	}
}

// Generate объясняет класс class на изображении и возвращает путь к сохранённому
// наложению и его байты. Любая ошибка цепочки оборачивается в ErrSaliencyGeneration.
func (s *SaliencyService) Generate(ctx context.Context, img entity.LesionImage, class entity.SkinClass, id string) (path string, overlay []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			path, overlay = "", nil
			err = fmt.Errorf("%w: panic: %v", entity.ErrSaliencyGeneration, r)
		}
	}()

	if s.explainer == nil || s.renderer == nil || s.store == nil {
		return "", nil, fmt.Errorf("%w: explainer is not configured", entity.ErrSaliencyGeneration)
	}

	classIndex := class.Index()
	if classIndex < 0 {
		return "", nil, fmt.Errorf("%w: unknown class %q", entity.ErrSaliencyGeneration, class)
	}

	input, err := s.explainer.PrepareForExplanation(ctx, img)
	if err != nil {
		return "", nil, fmt.Errorf("%w: prepare input: %w", entity.ErrSaliencyGeneration, err)
	}

	capture, err := s.explainer.Instrument(ctx, input, s.layer, classIndex)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", entity.ErrSaliencyGeneration, err)
	}

	saliency, err := service.GradCAMPlusPlus(capture)
	if err != nil {
		return "", nil, err
	}

	overlay, err = s.renderer.Render(img, saliency, s.alpha)
	if err != nil {
		return "", nil, fmt.Errorf("%w: render overlay: %w", entity.ErrSaliencyGeneration, err)
	}

	path, err = s.store.Save(ctx, id, overlay)
	if err != nil {
		return "", nil, fmt.Errorf("%w: store overlay: %w", entity.ErrSaliencyGeneration, err)
	}

	s.logger.Debug("saliency overlay stored", "path", path, "layer", s.layer, "class", class)
	return path, overlay, nil
}
