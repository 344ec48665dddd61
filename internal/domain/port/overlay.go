package port

import (
	"context"

	"lesion-bot/internal/domain/entity"
)

// OverlayRenderer накладывает карту важности на исходное изображение
type OverlayRenderer interface {
	// Render масштабирует карту до размера изображения, раскрашивает её
	// и смешивает с оригиналом с коэффициентом alpha. Возвращает JPEG.
	Render(img entity.LesionImage, saliency *entity.SaliencyMap, alpha float64) ([]byte, error)
}

// OverlayStore сохраняет готовые наложения
type OverlayStore interface {
	// Save записывает изображение и возвращает относительный путь к нему
	Save(ctx context.Context, id string, data []byte) (string, error)
}
